//nolint:whitespace //can't make both the linter and editor happy :(
package service

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/mpapenbr/tyre-strategy/log"
	"github.com/mpapenbr/tyre-strategy/pkg/circuit"
	"github.com/mpapenbr/tyre-strategy/pkg/config"
	"github.com/mpapenbr/tyre-strategy/pkg/insights"
	"github.com/mpapenbr/tyre-strategy/pkg/laps"
	"github.com/mpapenbr/tyre-strategy/pkg/model"
	"github.com/mpapenbr/tyre-strategy/pkg/provider"
	"github.com/mpapenbr/tyre-strategy/pkg/racegap"
	"github.com/mpapenbr/tyre-strategy/pkg/racestints"
	"github.com/mpapenbr/tyre-strategy/pkg/undercut"
)

var (
	meter  = otel.Meter("analyzer")
	tracer = otel.Tracer("analyzer")
)

const reasonNoLaps = "lap data empty"

type (
	// HeuristicsSource returns the heuristics to use for the next request.
	HeuristicsSource func() *config.Heuristics
	AnalyzerOption   func(*Analyzer)

	// Analyzer loads sessions from a provider and runs the strategy engines
	// on them. Safe for concurrent use.
	Analyzer struct {
		provider   provider.SessionDataProvider
		heuristics HeuristicsSource
		logger     *log.Logger
		duration   metric.Float64Histogram
	}

	DuelParams struct {
		Driver          string
		Rival           string
		CandidatePitLap int
		PitDelta        float64 // seconds
	}

	// sessionData is the prepared lap data of one request
	sessionData struct {
		laps   []model.LapRecord
		stints []model.StintLap
	}
)

func WithHeuristicsSource(src HeuristicsSource) AnalyzerOption {
	return func(a *Analyzer) {
		a.heuristics = src
	}
}

func WithHeuristics(h *config.Heuristics) AnalyzerOption {
	return WithHeuristicsSource(func() *config.Heuristics { return h })
}

func WithLogger(l *log.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		a.logger = l
	}
}

func NewAnalyzer(p provider.SessionDataProvider, opts ...AnalyzerOption) *Analyzer {
	ret := &Analyzer{
		provider:   p,
		heuristics: config.DefaultHeuristics,
		logger:     log.Default().Named("analyzer"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.duration, _ = meter.Float64Histogram("analysis_duration",
		metric.WithDescription("duration of an analysis request"),
		metric.WithUnit("s"))
	return ret
}

func (a *Analyzer) Heuristics() *config.Heuristics {
	if h := a.heuristics(); h != nil {
		return h
	}
	return config.DefaultHeuristics()
}

// Degradation returns the mean degradation table of the session
func (a *Analyzer) Degradation(ctx context.Context, key provider.SessionKey) model.Outcome[[]model.DegradationRow] {
	return run(ctx, a, "degradation", key,
		func(s *sessionData) model.Outcome[[]model.DegradationRow] {
			curve := laps.AverageDegradation(s.stints)
			if curve.IsEmpty() {
				return model.Empty[[]model.DegradationRow]("no degradation data")
			}
			return model.OK(curve.Table())
		})
}

// TyreLife estimates the usable laps per compound, scaled for weather
func (a *Analyzer) TyreLife(
	ctx context.Context,
	key provider.SessionKey,
	weather model.Weather,
) model.Outcome[racestints.TyreLife] {
	h := a.Heuristics()
	return run(ctx, a, "tyre-life", key,
		func(s *sessionData) model.Outcome[racestints.TyreLife] {
			curve := laps.AverageDegradation(s.stints)
			if curve.IsEmpty() {
				return model.Empty[racestints.TyreLife]("no degradation data")
			}
			return model.OK(racestints.EstimateTyreLife(curve, h).
				Scaled(h.TyreLifeFactor(weather)))
		})
}

// Strategy ranks the legal compound sequences. If p.TotalLaps is 0 the
// race distance of the session is used. A session without laps is empty.
func (a *Analyzer) Strategy(
	ctx context.Context,
	key provider.SessionKey,
	p racestints.Params,
) model.Outcome[racestints.Recommendation] {
	h := a.Heuristics()
	return run(ctx, a, "strategy", key,
		func(s *sessionData) model.Outcome[racestints.Recommendation] {
			if len(s.stints) == 0 {
				return model.Empty[racestints.Recommendation](reasonNoLaps)
			}
			if p.TotalLaps == 0 {
				p.TotalLaps = s.raceLaps()
			}
			return racestints.RecommendOptimalStrategy(p,
				laps.AverageDegradation(s.stints),
				racestints.WithHeuristics(h),
				racestints.WithLogger(a.logger.Named("strategy")))
		})
}

func (a *Analyzer) Gap(ctx context.Context, key provider.SessionKey) model.Outcome[[]racegap.GapRow] {
	return run(ctx, a, "gap", key,
		func(s *sessionData) model.Outcome[[]racegap.GapRow] {
			if len(s.stints) == 0 {
				return model.Empty[[]racegap.GapRow](reasonNoLaps)
			}
			return model.FromResult(racegap.ComputeGapToLeader(s.stints))
		})
}

func (a *Analyzer) PitStops(ctx context.Context, key provider.SessionKey) model.Outcome[[]racegap.PitEvent] {
	return run(ctx, a, "pitstops", key,
		func(s *sessionData) model.Outcome[[]racegap.PitEvent] {
			if len(s.stints) == 0 {
				return model.Empty[[]racegap.PitEvent](reasonNoLaps)
			}
			return model.OK(racegap.DetectPitStops(s.stints))
		})
}

func (a *Analyzer) Duel(
	ctx context.Context,
	key provider.SessionKey,
	p DuelParams,
) model.Outcome[racegap.DuelResult] {
	return run(ctx, a, "duel", key,
		func(s *sessionData) model.Outcome[racegap.DuelResult] {
			return racegap.SimulateUndercutOvertake(s.stints,
				p.Driver, p.Rival, p.CandidatePitLap, p.PitDelta)
		})
}

// Payoff simulates undercut against overcut. If p.TotalLaps is 0 the race
// distance of the session is used.
func (a *Analyzer) Payoff(
	ctx context.Context,
	key provider.SessionKey,
	p undercut.Params,
) model.Outcome[*undercut.Payoff] {
	h := a.Heuristics()
	return run(ctx, a, "payoff", key,
		func(s *sessionData) model.Outcome[*undercut.Payoff] {
			if p.TotalLaps == 0 {
				p.TotalLaps = s.raceLaps()
			}
			return model.FromResult(undercut.SimulateUndercutVsOvercut(
				laps.AverageDegradation(s.stints), p, h))
		})
}

// Insights always succeeds for a loaded session, an empty one yields the
// no-data message.
func (a *Analyzer) Insights(ctx context.Context, key provider.SessionKey) model.Outcome[[]string] {
	h := a.Heuristics()
	return run(ctx, a, "insights", key,
		func(s *sessionData) model.Outcome[[]string] {
			return model.OK(insights.LapTimeInsights(s.stints, h))
		})
}

func (a *Analyzer) Consistency(ctx context.Context, key provider.SessionKey) model.Outcome[[]laps.StintStats] {
	return run(ctx, a, "consistency", key,
		func(s *sessionData) model.Outcome[[]laps.StintStats] {
			if len(s.stints) == 0 {
				return model.Empty[[]laps.StintStats](reasonNoLaps)
			}
			return model.OK(laps.StintConsistency(s.stints))
		})
}

func (a *Analyzer) Sectors(ctx context.Context, key provider.SessionKey) model.Outcome[[]laps.SectorTime] {
	return run(ctx, a, "sectors", key,
		func(s *sessionData) model.Outcome[[]laps.SectorTime] {
			ret := laps.SectorAnalysis(s.laps)
			if len(ret) == 0 {
				return model.Empty[[]laps.SectorTime]("no sector times")
			}
			return model.OK(ret)
		})
}

// Circuit returns the known or inferred profile for the event
func (a *Analyzer) Circuit(event string) circuit.Profile {
	return circuit.Infer(event)
}

func run[T any](
	ctx context.Context,
	a *Analyzer,
	op string,
	key provider.SessionKey,
	fn func(s *sessionData) model.Outcome[T],
) model.Outcome[T] {
	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(
		attribute.Int("session.year", key.Year),
		attribute.String("session.event", key.Event),
		attribute.String("session.type", key.Session))
	start := time.Now()

	ret := func() model.Outcome[T] {
		records, err := a.provider.Laps(ctx, key)
		if err != nil {
			return model.Failed[T](err)
		}
		s := &sessionData{laps: records, stints: laps.ComputeStintData(records)}
		return fn(s)
	}()

	a.duration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(
			attribute.String("op", op),
			attribute.String("status", ret.Status.String())))
	switch {
	case ret.IsError():
		span.SetStatus(codes.Error, ret.Reason)
		level := log.WarnLevel
		if errors.Is(ret.Err, model.ErrValidation) || errors.Is(ret.Err, provider.ErrNotAvailable) {
			level = log.DebugLevel
		}
		a.logger.Log(level, "analysis failed",
			log.String("op", op),
			log.Stringer("session", key),
			log.ErrorField(ret.Err))
	case ret.IsEmpty():
		a.logger.Debug("analysis empty",
			log.String("op", op),
			log.Stringer("session", key),
			log.String("reason", ret.Reason))
	}
	return ret
}

// raceLaps is the highest lap number of the session
func (s *sessionData) raceLaps() int {
	if len(s.stints) == 0 {
		return lo.Max(lo.Map(s.laps, func(l model.LapRecord, _ int) int { return l.LapNumber }))
	}
	return lo.MaxBy(s.stints, func(a, b model.StintLap) bool {
		return a.LapNumber > b.LapNumber
	}).LapNumber
}
