package provider

import (
	"fmt"
	"io"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/samber/lo"

	"github.com/mpapenbr/tyre-strategy/pkg/model"
)

const DefaultJSONPath = "$[*]"

type JSONOptions struct {
	// selects the lap records, default $[*]
	Path string
	// seconds per numeric duration unit (0.001 for milliseconds)
	NumericScale float64
}

// DurationScale converts a unit name into seconds per unit.
func DurationScale(unit string) (float64, error) {
	switch unit {
	case "ms", "":
		return 0.001, nil
	case "s":
		return 1, nil
	case "us":
		return 1e-6, nil
	case "ns":
		return 1e-9, nil
	}
	return 0, model.ValidationError("unsupported duration unit %q", unit)
}

// ReadJSON reads records as exported by pandas (orient=records).
// Numeric durations are scaled by opts.NumericScale unless the column name
// states seconds.
func ReadJSON(r io.Reader, opts JSONOptions) ([]model.LapRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if opts.Path == "" {
		opts.Path = DefaultJSONPath
	}
	if opts.NumericScale == 0 {
		opts.NumericScale = 0.001
	}
	obj, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid json: %w", model.ErrValidation, err)
	}
	path, err := jp.ParseString(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid json path %q: %w", model.ErrValidation, opts.Path, err)
	}
	items := path.Get(obj)
	records := make([]map[string]any, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, model.ValidationError("record %d is not an object", i)
		}
		records = append(records, m)
	}
	ret := make([]model.LapRecord, 0, len(records))
	if len(records) == 0 {
		return ret, nil
	}
	keys := lo.Uniq(lo.FlatMap(records, func(m map[string]any, _ int) []string { return lo.Keys(m) }))
	cols, err := resolveColumns(keys)
	if err != nil {
		return nil, err
	}
	scale := columnScales(cols, opts.NumericScale)
	for i, m := range records {
		get := func(c column) (any, bool) {
			if cols[c] == "" {
				return nil, false
			}
			v, ok := m[cols[c]]
			return v, ok
		}
		rec, err := buildRecord(get, scale)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		ret = append(ret, rec)
	}
	return ret, nil
}
