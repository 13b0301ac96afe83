package model

import (
	"slices"
	"strings"
)

type (
	// CurvePoint is the mean lap time of all stints at a given lap into the stint.
	CurvePoint struct {
		LapIndex int     `json:"LapIndex"`
		LapTime  float64 `json:"LapTime_s"`
	}
	// DegradationCurve maps a compound to its points ordered by LapIndex.
	DegradationCurve map[Compound][]CurvePoint

	// DegradationRow is the tabular form of a curve point.
	DegradationRow struct {
		Compound Compound `json:"Compound"`
		LapIndex int      `json:"LapIndex"`
		LapTime  float64  `json:"LapTime_s"`
	}
)

// Compounds returns the compounds with data, sorted by name.
func (d DegradationCurve) Compounds() []Compound {
	ret := make([]Compound, 0, len(d))
	for c, points := range d {
		if len(points) > 0 {
			ret = append(ret, c)
		}
	}
	slices.SortFunc(ret, func(a, b Compound) int { return strings.Compare(string(a), string(b)) })
	return ret
}

func (d DegradationCurve) IsEmpty() bool {
	return len(d.Compounds()) == 0
}

// LapTimes returns the mean lap times of a compound in LapIndex order.
func (d DegradationCurve) LapTimes(c Compound) []float64 {
	points := d[c]
	ret := make([]float64, len(points))
	for i := range points {
		ret[i] = points[i].LapTime
	}
	return ret
}

// MaxLapIndex returns the highest LapIndex of a single compound.
func (d DegradationCurve) MaxLapIndex(c Compound) int {
	points := d[c]
	if len(points) == 0 {
		return 0
	}
	return points[len(points)-1].LapIndex
}

// MaxLapIndexAll returns the highest LapIndex across all compounds.
func (d DegradationCurve) MaxLapIndexAll() int {
	ret := 0
	for c := range d {
		ret = max(ret, d.MaxLapIndex(c))
	}
	return ret
}

// Table flattens the curve ordered by compound and LapIndex.
func (d DegradationCurve) Table() []DegradationRow {
	ret := make([]DegradationRow, 0)
	for _, c := range d.Compounds() {
		for _, p := range d[c] {
			ret = append(ret, DegradationRow{Compound: c, LapIndex: p.LapIndex, LapTime: p.LapTime})
		}
	}
	return ret
}

// CurveFromTable builds a curve from rows. Rows are sorted by LapIndex per
// compound, duplicate indexes keep the last row.
func CurveFromTable(rows []DegradationRow) DegradationCurve {
	ret := DegradationCurve{}
	for _, r := range rows {
		points := ret[r.Compound]
		idx := slices.IndexFunc(points, func(p CurvePoint) bool { return p.LapIndex == r.LapIndex })
		if idx >= 0 {
			points[idx].LapTime = r.LapTime
			continue
		}
		ret[r.Compound] = append(points, CurvePoint{LapIndex: r.LapIndex, LapTime: r.LapTime})
	}
	for c := range ret {
		slices.SortFunc(ret[c], func(a, b CurvePoint) int { return a.LapIndex - b.LapIndex })
	}
	return ret
}
