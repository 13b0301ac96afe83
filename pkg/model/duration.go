package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// matches pandas timedelta strings like "0 days 00:01:32.456000"
var pandasDelta = regexp.MustCompile(`^(-?\d+) days? (\d+:\d{2}:\d{2}(?:\.\d+)?)$`)

// ParseDuration converts the duration representations found in lap exports
// into float seconds. The second return value is false for missing values
// (empty, NaT, NaN, null).
func ParseDuration(s string) (float64, bool, error) {
	v := strings.TrimSpace(s)
	switch strings.ToLower(v) {
	case "", "nat", "nan", "none", "null", "<na>":
		return 0, false, nil
	}
	if m := pandasDelta.FindStringSubmatch(v); m != nil {
		days, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false, err
		}
		secs, err := parseClock(m[2])
		if err != nil {
			return 0, false, err
		}
		return float64(days)*86400 + secs, true, nil
	}
	if strings.Contains(v, ":") {
		secs, err := parseClock(v)
		if err != nil {
			return 0, false, err
		}
		return secs, true, nil
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f, true, nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d.Seconds(), true, nil
	}
	return 0, false, fmt.Errorf("unsupported duration %q", s)
}

// parseClock parses [[HH:]MM:]SS[.fff]
func parseClock(s string) (float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	ret := 0.0
	for _, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid clock value %q: %w", s, err)
		}
		ret = ret*60 + f
	}
	return ret, nil
}
