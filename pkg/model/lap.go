package model

import "github.com/aarondl/opt/omit"

// LapRecord is one row of the lap table delivered by a session provider.
// All durations are float seconds, optional values are resolved once
// during ingestion.
type LapRecord struct {
	Driver     string               `json:"Driver"`
	LapNumber  int                  `json:"LapNumber"`
	Compound   Compound             `json:"Compound"`
	Stint      int                  `json:"Stint"`
	LapTime    omit.Val[float64]    `json:"LapTime_s"`
	Time       omit.Val[float64]    `json:"Time_s"` // session time at the end of the lap
	PitInTime  omit.Val[float64]    `json:"PitInTime_s"`
	PitOutTime omit.Val[float64]    `json:"PitOutTime_s"`
	Sectors    [3]omit.Val[float64] `json:"Sectors_s"`
	Position   omit.Val[int]        `json:"Position"`
}

// StintLap is a cleaned lap: the lap time is present and RaceTime holds the
// running sum of the driver's lap times up to and including this lap.
type StintLap struct {
	Driver    string        `json:"Driver"`
	LapNumber int           `json:"LapNumber"`
	Compound  Compound      `json:"Compound"`
	Stint     int           `json:"Stint"`
	LapTime   float64       `json:"LapTime_s"`
	RaceTime  float64       `json:"RaceTime_s"`
	Position  omit.Val[int] `json:"Position"`
}

// SectorNames are the labels used for Sectors[0..2]
var SectorNames = [3]string{"S1", "S2", "S3"}
