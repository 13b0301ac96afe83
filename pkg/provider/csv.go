package provider

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/mpapenbr/tyre-strategy/pkg/model"
)

// ReadCSV reads a lap table with a header row. Columns are resolved by name
// once, durations may be pandas timedeltas, clock strings or seconds.
func ReadCSV(r io.Reader) ([]model.LapRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []model.LapRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read csv header: %w", err)
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[h] = i
	}

	ret := make([]model.LapRecord, 0)
	for row := 2; ; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not read csv row %d: %w", row, err)
		}
		get := func(c column) (any, bool) {
			if cols[c] == "" {
				return nil, false
			}
			idx := index[cols[c]]
			if idx >= len(fields) {
				return nil, true
			}
			return fields[idx], true
		}
		rec, err := buildRecord(get, unitScale)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		ret = append(ret, rec)
	}
	return ret, nil
}
