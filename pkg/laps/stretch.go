package laps

import (
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// Stretch resizes a per-lap time series to n laps. Longer series are
// truncated, shorter ones are linearly interpolated over n evenly spaced
// points between the first and the last value. A single value is held flat.
func Stretch(values []float64, n int) []float64 {
	switch {
	case n <= 0 || len(values) == 0:
		return []float64{}
	case len(values) >= n:
		return slices.Clone(values[:n])
	case len(values) == 1:
		return Flat(values[0], n)
	}
	xs := make([]float64, len(values))
	floats.Span(xs, 0, float64(len(values)-1))
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, values); err != nil {
		// xs is strictly increasing, Fit can't fail here
		return Flat(values[0], n)
	}
	at := make([]float64, n)
	floats.Span(at, 0, float64(len(values)-1))
	ret := make([]float64, n)
	for i, x := range at {
		ret[i] = pl.Predict(x)
	}
	return ret
}

// Ramp returns n evenly spaced values from start to end (both included).
func Ramp(start, end float64, n int) []float64 {
	switch {
	case n <= 0:
		return []float64{}
	case n == 1:
		return []float64{start}
	}
	return floats.Span(make([]float64, n), start, end)
}

func Flat(v float64, n int) []float64 {
	ret := make([]float64, max(n, 0))
	for i := range ret {
		ret[i] = v
	}
	return ret
}
