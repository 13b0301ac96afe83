package racestints

import (
	"gonum.org/v1/gonum/floats"

	"github.com/mpapenbr/tyre-strategy/pkg/config"
	"github.com/mpapenbr/tyre-strategy/pkg/laps"
	"github.com/mpapenbr/tyre-strategy/pkg/model"
)

type (
	StrategyCalcParams struct {
		TotalLaps int
		Sequence  []model.Compound
		Curve     model.DegradationCurve
		PitLoss   float64 // seconds
		TyreLife  TyreLife
	}
	strategyCalc struct {
		param *StrategyCalcParams
		h     *config.Heuristics
		parts []Part
	}
)

func NewStrategyCalc(param *StrategyCalcParams, h *config.Heuristics) CalcStints {
	return &strategyCalc{param: param, h: orDefault(h)}
}

// SimulateStrategy runs the compound sequence over totalLaps laps.
// Every stint but the last is limited by the tyre life of its compound, the
// last compound runs to the flag. The pit loss is added between consecutive
// stints only.
func SimulateStrategy(
	totalLaps int,
	sequence []model.Compound,
	curve model.DegradationCurve,
	pitLoss float64,
	tyreLife TyreLife,
	h *config.Heuristics,
) *Result {
	//nolint:errcheck // Calc doesn't fail
	res, _ := NewStrategyCalc(&StrategyCalcParams{
		TotalLaps: totalLaps,
		Sequence:  sequence,
		Curve:     curve,
		PitLoss:   pitLoss,
		TyreLife:  tyreLife,
	}, h).Calc()
	return res
}

func (c *strategyCalc) Calc() (*Result, error) {
	c.parts = make([]Part, 0)
	remain := c.param.TotalLaps
	curLap := 1
	total := 0.0
	last := len(c.param.Sequence) - 1
	for i, compound := range c.param.Sequence {
		if remain <= 0 {
			break
		}
		stintLaps := min(c.life(compound), remain)
		if i == last {
			stintLaps = remain
		}
		lapTimes := c.stintLapTimes(compound, stintLaps)
		sp := &stintPart{
			compound:  compound,
			laps:      stintLaps,
			lapStart:  curLap,
			lapEnd:    curLap + stintLaps - 1,
			stintTime: floats.Sum(lapTimes),
		}
		c.parts = append(c.parts, sp)
		total += sp.stintTime
		remain -= stintLaps
		curLap += stintLaps
		if remain > 0 && i < last {
			c.parts = append(c.parts, &pitPart{pitTime: c.param.PitLoss})
			total += c.param.PitLoss
		}
	}
	return &Result{
		Sequence:  c.param.Sequence,
		Parts:     c.parts,
		TotalTime: total,
	}, nil
}

func (c *strategyCalc) life(compound model.Compound) int {
	if life, ok := c.param.TyreLife[compound]; ok && life > 0 {
		return life
	}
	return c.h.DefaultTyreLife
}

// stintLapTimes returns the lap times of a stint. Compounds without curve
// data use the fallback ramp.
func (c *strategyCalc) stintLapTimes(compound model.Compound, stintLaps int) []float64 {
	values := c.param.Curve.LapTimes(compound)
	if len(values) == 0 {
		values = laps.Ramp(c.h.FallbackLapTimeStart, c.h.FallbackLapTimeEnd, stintLaps)
	}
	return laps.Stretch(values, stintLaps)
}
