package racestints

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/mpapenbr/tyre-strategy/pkg/model"
)

type (
	PartType   int
	CalcStints interface {
		Calc() (*Result, error)
	}
	Part interface {
		Type() PartType
		Output() string
	}
	StintPart interface {
		Part
		Compound() model.Compound
		Laps() int
		LapStart() int
		LapEnd() int
		StintTime() float64 // seconds
	}
	PitPart interface {
		Part
		PitTime() float64 // seconds
	}
	// Result is the simulated race of one compound sequence.
	Result struct {
		Sequence  []model.Compound
		Parts     []Part
		TotalTime float64 // stint times plus pit losses in seconds
	}
	// TyreLife is the usable number of laps per compound
	TyreLife map[model.Compound]int
)

const (
	PartTypeStint PartType = iota
	PartTypePit
)

// SequenceSeparator joins the compounds in strategy labels.
const SequenceSeparator = " → "

func SequenceLabel(seq []model.Compound) string {
	return strings.Join(lo.Map(seq, func(c model.Compound, _ int) string {
		return string(c)
	}), SequenceSeparator)
}

func (r *Result) Stints() []StintPart {
	ret := make([]StintPart, 0, len(r.Parts))
	for _, p := range r.Parts {
		if s, ok := p.(StintPart); ok {
			ret = append(ret, s)
		}
	}
	return ret
}

func (r *Result) Pits() int {
	return lo.CountBy(r.Parts, func(p Part) bool { return p.Type() == PartTypePit })
}

// Laps returns the sum of all stint lengths.
func (r *Result) Laps() int {
	return lo.SumBy(r.Stints(), func(s StintPart) int { return s.Laps() })
}

func (r *Result) Label() string {
	return SequenceLabel(r.Sequence)
}

func (r *Result) Output() string {
	return strings.Join(lo.Map(r.Parts, func(p Part, _ int) string {
		return p.Output()
	}), ", ")
}

// Scaled applies a factor to every life. A life never drops below one lap.
func (t TyreLife) Scaled(factor float64) TyreLife {
	ret := make(TyreLife, len(t))
	for c, life := range t {
		ret[c] = max(1, int(float64(life)*factor))
	}
	return ret
}

type (
	stintPart struct {
		compound  model.Compound
		laps      int
		lapStart  int
		lapEnd    int
		stintTime float64
	}
	pitPart struct {
		pitTime float64
	}
)

func (s stintPart) Type() PartType {
	return PartTypeStint
}

func (s stintPart) Compound() model.Compound {
	return s.compound
}

func (s stintPart) Laps() int {
	return s.laps
}

func (s stintPart) LapStart() int {
	return s.lapStart
}

func (s stintPart) LapEnd() int {
	return s.lapEnd
}

func (s stintPart) StintTime() float64 {
	return s.stintTime
}

func (s stintPart) Output() string {
	return fmt.Sprintf("%s %d-%d (%d): %.3fs", s.compound, s.lapStart, s.lapEnd, s.laps, s.stintTime)
}

func (p pitPart) Type() PartType {
	return PartTypePit
}

func (p pitPart) PitTime() float64 {
	return p.pitTime
}

func (p pitPart) Output() string {
	return fmt.Sprintf("Pit %.3fs", p.pitTime)
}
