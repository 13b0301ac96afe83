// Package undercut models the gap between two single-stop strategies
// around the pit stop of the undercutting car.
package undercut

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"github.com/mpapenbr/tyre-strategy/pkg/config"
	"github.com/mpapenbr/tyre-strategy/pkg/laps"
	"github.com/mpapenbr/tyre-strategy/pkg/model"
)

type (
	Params struct {
		CompoundA   model.Compound // the car that pits on UndercutLap
		CompoundB   model.Compound
		UndercutLap int
		TotalLaps   int
		PitLoss     float64 // seconds
	}
	PayoffRow struct {
		Lap         int     `json:"Lap"`
		Delta       float64 `json:"Delta_s"`
		GapToLeader float64 `json:"Gap_to_Leader_s"`
	}
	Summary struct {
		BestLap   int            `json:"BestLap"`
		MinGap    float64        `json:"MinGap_s"`
		CompoundA model.Compound `json:"Compound_A"`
		CompoundB model.Compound `json:"Compound_B"`
		// false if UndercutLap lies beyond the simulated laps
		PitInWindow bool `json:"PitInWindow"`
	}
	Payoff struct {
		Rows      []PayoffRow `json:"rows"`
		Summary   Summary     `json:"summary"`
		TotalLaps int         `json:"total_laps"`
		CurveA    []float64   `json:"curve_a"`
		CurveB    []float64   `json:"curve_b"`
	}
)

// SimulateUndercutVsOvercut computes the per lap delta between compound B
// and compound A. Before the undercut lap both cars run their first stint, on
// the undercut lap A loses the pit loss, afterwards A runs on fresh tyres
// fading linearly from its first-lap time.
//
// totalLaps is reduced to the highest LapIndex of the curve.
//
//nolint:funlen // readability
func SimulateUndercutVsOvercut(
	curve model.DegradationCurve,
	p Params,
	h *config.Heuristics,
) (*Payoff, error) {
	if h == nil {
		h = config.DefaultHeuristics()
	}
	if curve.IsEmpty() {
		return nil, model.ValidationError(
			"degradation data is empty, need mean lap times per compound and lap index")
	}
	for c, points := range curve {
		for _, pt := range points {
			if math.IsNaN(pt.LapTime) || math.IsInf(pt.LapTime, 0) {
				return nil, model.ValidationError("degradation data for %s has no usable lap time at index %d",
					c, pt.LapIndex)
			}
		}
	}
	if p.UndercutLap < 1 {
		return nil, model.ValidationError("undercut lap must be >= 1, got %d", p.UndercutLap)
	}
	totalLaps := p.TotalLaps
	if maxIdx := curve.MaxLapIndexAll(); totalLaps > maxIdx {
		totalLaps = maxIdx
	}
	if totalLaps <= 0 {
		return nil, model.ValidationError("total laps must be > 0")
	}
	lapsA, err := lapTimeCurve(curve, p.CompoundA, totalLaps)
	if err != nil {
		return nil, err
	}
	lapsB, err := lapTimeCurve(curve, p.CompoundB, totalLaps)
	if err != nil {
		return nil, err
	}

	rows := make([]PayoffRow, totalLaps)
	freshBase := lapsA[0]
	gap := 0.0
	for i := range totalLaps {
		lapNum := i + 1
		var delta float64
		switch {
		case lapNum < p.UndercutLap:
			delta = lapsB[i] - lapsA[i]
		case lapNum == p.UndercutLap:
			delta = -p.PitLoss
		default:
			tyreAge := float64(lapNum - p.UndercutLap)
			delta = lapsB[i] - freshBase*(1+h.FreshTyreFadeRate*tyreAge)
		}
		gap += delta
		rows[i] = PayoffRow{Lap: lapNum, Delta: delta, GapToLeader: gap}
	}

	gaps := lo.Map(rows, func(r PayoffRow, _ int) float64 { return r.GapToLeader })
	best := floats.MinIdx(gaps)
	return &Payoff{
		Rows:      rows,
		TotalLaps: totalLaps,
		CurveA:    lapsA,
		CurveB:    lapsB,
		Summary: Summary{
			BestLap:     rows[best].Lap,
			MinGap:      rows[best].GapToLeader,
			CompoundA:   p.CompoundA,
			CompoundB:   p.CompoundB,
			PitInWindow: p.UndercutLap <= totalLaps,
		},
	}, nil
}

// lapTimeCurve interpolates the compound's curve at lap index 1..totalLaps.
// Indexes outside the observed range take the nearest value, a single
// point is held flat.
func lapTimeCurve(curve model.DegradationCurve, c model.Compound, totalLaps int) ([]float64, error) {
	points := curve[c]
	if len(points) == 0 {
		return nil, model.ValidationError("no degradation data for compound %s, available: %v",
			c, curve.Compounds())
	}
	if len(points) == 1 {
		return laps.Flat(points[0].LapTime, totalLaps), nil
	}
	xs := lo.Map(points, func(p model.CurvePoint, _ int) float64 { return float64(p.LapIndex) })
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, curve.LapTimes(c)); err != nil {
		return nil, fmt.Errorf("%w: curve for %s: %w", model.ErrValidation, c, err)
	}
	ret := make([]float64, totalLaps)
	for i := range ret {
		ret[i] = pl.Predict(float64(i + 1))
	}
	return ret, nil
}
