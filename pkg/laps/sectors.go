package laps

import (
	"math"

	"github.com/mpapenbr/tyre-strategy/pkg/model"
)

type SectorTime struct {
	Driver    string  `json:"Driver"`
	LapNumber int     `json:"LapNumber"`
	Sector    string  `json:"Sector"`
	Time      float64 `json:"SectorTime_s"`
}

// SectorAnalysis returns one row per available sector time. Missing values
// are skipped.
func SectorAnalysis(laps []model.LapRecord) []SectorTime {
	ret := make([]SectorTime, 0)
	for i := range laps {
		for s, val := range laps[i].Sectors {
			v, ok := val.Get()
			if !ok || math.IsNaN(v) {
				continue
			}
			ret = append(ret, SectorTime{
				Driver:    laps[i].Driver,
				LapNumber: laps[i].LapNumber,
				Sector:    model.SectorNames[s],
				Time:      v,
			})
		}
	}
	return ret
}
