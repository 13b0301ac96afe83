package racestints

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"github.com/mpapenbr/tyre-strategy/log"
	"github.com/mpapenbr/tyre-strategy/pkg/config"
	"github.com/mpapenbr/tyre-strategy/pkg/model"
)

type (
	Params struct {
		TotalLaps          int
		PitLoss            float64 // seconds
		CircuitType        model.CircuitType
		Weather            model.Weather
		QualifyingPosition int // 0 if unknown
	}
	RankedStrategy struct {
		Strategy  string  `json:"Strategy"`
		TotalTime float64 `json:"TotalTime_s"`
	}
	Recommendation struct {
		Best             RankedStrategy   `json:"best"`
		Ranking          []RankedStrategy `json:"ranking"`
		TyreLife         TyreLife         `json:"tyre_life"`
		EffectivePitLoss float64          `json:"effective_pit_loss_s"`
		StintCounts      []int            `json:"stint_counts"`
		// simulated races in ranking order
		Results []*Result `json:"-"`
	}
	Option      func(*recommender)
	recommender struct {
		h      *config.Heuristics
		logger *log.Logger
	}
)

func WithHeuristics(h *config.Heuristics) Option {
	return func(r *recommender) {
		r.h = h
	}
}

func WithLogger(l *log.Logger) Option {
	return func(r *recommender) {
		r.logger = l
	}
}

// RecommendOptimalStrategy simulates every legal compound sequence for the
// stint counts allowed by circuit type and grid position and ranks them by
// total race time.
//
//nolint:funlen // readability
func RecommendOptimalStrategy(
	p Params,
	curve model.DegradationCurve,
	opts ...Option,
) model.Outcome[Recommendation] {
	r := &recommender{h: config.DefaultHeuristics(), logger: log.Default().Named("strategy")}
	for _, opt := range opts {
		opt(r)
	}
	if p.TotalLaps <= 0 {
		return model.Failed[Recommendation](model.ValidationError("total laps must be > 0, got %d", p.TotalLaps))
	}
	if p.PitLoss < 0 {
		return model.Failed[Recommendation](model.ValidationError("pit loss must be >= 0, got %v", p.PitLoss))
	}
	weather := p.Weather
	if weather == "" {
		weather = model.WeatherDry
	}

	tyreLife := EstimateTyreLife(curve, r.h).Scaled(r.h.TyreLifeFactor(weather))
	pitLoss := p.PitLoss * r.h.PitLossFactor(weather)
	stintCounts := r.h.CircuitStints(p.CircuitType)
	if counts, factor, ok := r.h.QualifyingOverride(p.QualifyingPosition); ok {
		stintCounts = counts
		pitLoss *= factor
	}
	r.logger.Debug("strategy search",
		log.Int("totalLaps", p.TotalLaps),
		log.Float64("pitLoss", pitLoss),
		log.Any("stintCounts", stintCounts),
		log.Any("tyreLife", tyreLife))

	compounds := curve.Compounds()
	results := make([]*Result, 0)
	for _, n := range stintCounts {
		for _, seq := range CompoundSequences(compounds, n, weather) {
			results = append(results,
				SimulateStrategy(p.TotalLaps, seq, curve, pitLoss, tyreLife, r.h))
		}
	}
	if len(results) == 0 {
		return model.Empty[Recommendation]("no legal compound sequence")
	}
	slices.SortStableFunc(results, func(a, b *Result) int {
		return cmp.Compare(a.TotalTime, b.TotalTime)
	})
	ranking := lo.Map(results, func(res *Result, _ int) RankedStrategy {
		return RankedStrategy{Strategy: res.Label(), TotalTime: res.TotalTime}
	})
	r.logger.Debug("strategy ranked",
		log.Int("candidates", len(ranking)),
		log.String("best", ranking[0].Strategy))
	return model.OK(Recommendation{
		Best:             ranking[0],
		Ranking:          ranking,
		TyreLife:         tyreLife,
		EffectivePitLoss: pitLoss,
		StintCounts:      stintCounts,
		Results:          results,
	})
}

// CompoundSequences returns every ordered sequence of n compounds. In dry
// conditions a sequence must use at least two distinct compounds.
func CompoundSequences(compounds []model.Compound, n int, weather model.Weather) [][]model.Compound {
	ret := make([][]model.Compound, 0)
	if n <= 0 || len(compounds) == 0 {
		return ret
	}
	var walk func(prefix []model.Compound)
	walk = func(prefix []model.Compound) {
		if len(prefix) == n {
			if !weather.IsDry() || len(lo.Uniq(prefix)) >= 2 {
				ret = append(ret, slices.Clone(prefix))
			}
			return
		}
		for _, c := range compounds {
			walk(append(prefix, c))
		}
	}
	walk(make([]model.Compound, 0, n))
	return ret
}
