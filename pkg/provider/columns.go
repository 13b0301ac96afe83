package provider

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aarondl/opt/omit"

	"github.com/mpapenbr/tyre-strategy/pkg/model"
)

type column int

const (
	colDriver column = iota
	colLapNumber
	colCompound
	colStint
	colLapTime
	colTime
	colPitInTime
	colPitOutTime
	colSector1
	colSector2
	colSector3
	colPosition
	numColumns
)

// accepted header names per column, the first one is the canonical name
var columnNames = [numColumns][]string{
	colDriver:     {"Driver", "Abbreviation"},
	colLapNumber:  {"LapNumber", "Lap"},
	colCompound:   {"Compound"},
	colStint:      {"Stint"},
	colLapTime:    {"LapTime", "LapTime_s", "LapTime(s)"},
	colTime:       {"Time", "Time_s"},
	colPitInTime:  {"PitInTime", "PitInTime_s"},
	colPitOutTime: {"PitOutTime", "PitOutTime_s"},
	colSector1:    {"Sector1Time", "Sector1Time_s", "S1"},
	colSector2:    {"Sector2Time", "Sector2Time_s", "S2"},
	colSector3:    {"Sector3Time", "Sector3Time_s", "S3"},
	colPosition:   {"Position"},
}

var requiredColumns = []column{colDriver, colLapNumber, colCompound, colStint, colLapTime}

func (c column) String() string {
	return columnNames[c][0]
}

// resolveColumns maps each column to the key present in the input.
// Missing optional columns map to "".
func resolveColumns(keys []string) ([numColumns]string, error) {
	var ret [numColumns]string
	present := make(map[string]string, len(keys))
	for _, k := range keys {
		present[strings.ToLower(strings.TrimSpace(k))] = k
	}
	for c := range numColumns {
		for _, name := range columnNames[c] {
			if k, ok := present[strings.ToLower(name)]; ok {
				ret[c] = k
				break
			}
		}
	}
	for _, c := range requiredColumns {
		if ret[c] == "" {
			return ret, model.ValidationError("missing column %s", c)
		}
	}
	return ret, nil
}

// valueFunc returns the raw value of a column. ok is false for absent columns.
type valueFunc func(c column) (v any, ok bool)

// scaleFunc returns the seconds per unit of numeric values in a column
type scaleFunc func(c column) float64

func unitScale(column) float64 { return 1 }

// columnScales applies numericScale to every column except those whose
// resolved name states seconds (LapTime_s, LapTime(s)).
func columnScales(cols [numColumns]string, numericScale float64) scaleFunc {
	return func(c column) float64 {
		name := strings.ToLower(cols[c])
		if strings.HasSuffix(name, "_s") || strings.HasSuffix(name, "(s)") {
			return 1
		}
		return numericScale
	}
}

//nolint:cyclop,funlen // one branch per column
func buildRecord(get valueFunc, scale scaleFunc) (model.LapRecord, error) {
	var (
		ret model.LapRecord
		err error
	)
	if ret.Driver, err = stringValue(get, colDriver); err != nil {
		return ret, err
	}
	if ret.Driver == "" {
		return ret, model.ValidationError("empty %s", colDriver)
	}
	lapNo, err := intValue(get, colLapNumber)
	if err != nil {
		return ret, err
	}
	if !lapNo.IsValue() {
		return ret, model.ValidationError("missing %s for driver %s", colLapNumber, ret.Driver)
	}
	ret.LapNumber = lapNo.GetOrZero()
	compound, err := stringValue(get, colCompound)
	if err != nil {
		return ret, err
	}
	ret.Compound = model.ParseCompound(compound)
	stint, err := intValue(get, colStint)
	if err != nil {
		return ret, err
	}
	ret.Stint = stint.GetOrZero()
	if ret.LapTime, err = durationValue(get, colLapTime, scale); err != nil {
		return ret, err
	}
	if ret.Time, err = durationValue(get, colTime, scale); err != nil {
		return ret, err
	}
	if ret.PitInTime, err = durationValue(get, colPitInTime, scale); err != nil {
		return ret, err
	}
	if ret.PitOutTime, err = durationValue(get, colPitOutTime, scale); err != nil {
		return ret, err
	}
	for i, c := range []column{colSector1, colSector2, colSector3} {
		if ret.Sectors[i], err = durationValue(get, c, scale); err != nil {
			return ret, err
		}
	}
	if ret.Position, err = intValue(get, colPosition); err != nil {
		return ret, err
	}
	return ret, nil
}

func stringValue(get valueFunc, c column) (string, error) {
	v, ok := get(c)
	if !ok || v == nil {
		return "", nil
	}
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	}
	return "", model.ValidationError("%s: unsupported value %v", c, v)
}

func intValue(get valueFunc, c column) (omit.Val[int], error) {
	f, err := floatValue(get, c, 1)
	if err != nil {
		return omit.Val[int]{}, err
	}
	if v, ok := f.Get(); ok {
		return omit.From(int(v)), nil
	}
	return omit.Val[int]{}, nil
}

func durationValue(get valueFunc, c column, scale scaleFunc) (omit.Val[float64], error) {
	return floatValue(get, c, scale(c))
}

// floatValue parses strings as durations (plain numbers are seconds) and
// scales native numbers.
func floatValue(get valueFunc, c column, numericScale float64) (omit.Val[float64], error) {
	v, ok := get(c)
	if !ok || v == nil {
		return omit.Val[float64]{}, nil
	}
	var f float64
	switch x := v.(type) {
	case string:
		secs, present, err := model.ParseDuration(x)
		if err != nil {
			return omit.Val[float64]{}, fmt.Errorf("%w: %s: %w", model.ErrValidation, c, err)
		}
		if !present {
			return omit.Val[float64]{}, nil
		}
		f = secs
	case int64:
		f = float64(x) * numericScale
	case float64:
		f = x * numericScale
	default:
		return omit.Val[float64]{}, model.ValidationError("%s: unsupported value %v", c, v)
	}
	if math.IsNaN(f) {
		return omit.Val[float64]{}, nil
	}
	return omit.From(f), nil
}
