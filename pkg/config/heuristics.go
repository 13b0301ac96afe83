package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/mpapenbr/tyre-strategy/pkg/model"
)

const HeuristicsVersion = "v1"

type (
	// Heuristics holds every tunable constant of the strategy, payoff and
	// insight engines. None of the values is derived from physics, they are a
	// replaceable policy.
	Heuristics struct {
		Version string `mapstructure:"version" yaml:"version" json:"version"`

		// tyre life ends when the mean lap time exceeds first lap * threshold
		DegradationThreshold float64 `mapstructure:"degradationThreshold" yaml:"degradationThreshold" json:"degradationThreshold"`
		// used when a compound has no tyre life estimate
		DefaultTyreLife int `mapstructure:"defaultTyreLife" yaml:"defaultTyreLife" json:"defaultTyreLife"`
		// baseline for compounds without degradation data (linear ramp)
		FallbackLapTimeStart float64 `mapstructure:"fallbackLapTimeStart" yaml:"fallbackLapTimeStart" json:"fallbackLapTimeStart"`
		FallbackLapTimeEnd   float64 `mapstructure:"fallbackLapTimeEnd" yaml:"fallbackLapTimeEnd" json:"fallbackLapTimeEnd"`

		// fraction per lap a fresh tyre loses after the undercut stop
		FreshTyreFadeRate float64 `mapstructure:"freshTyreFadeRate" yaml:"freshTyreFadeRate" json:"freshTyreFadeRate"`

		Weather    WeatherPolicy    `mapstructure:"weather" yaml:"weather" json:"weather"`
		Circuit    CircuitPolicy    `mapstructure:"circuit" yaml:"circuit" json:"circuit"`
		Qualifying QualifyingPolicy `mapstructure:"qualifying" yaml:"qualifying" json:"qualifying"`
		Insights   InsightPolicy    `mapstructure:"insights" yaml:"insights" json:"insights"`
	}

	WeatherPolicy struct {
		DryTyreLifeFactor float64 `mapstructure:"dryTyreLifeFactor" yaml:"dryTyreLifeFactor" json:"dryTyreLifeFactor"`
		WetTyreLifeFactor float64 `mapstructure:"wetTyreLifeFactor" yaml:"wetTyreLifeFactor" json:"wetTyreLifeFactor"`
		// optional per state override of WetTyreLifeFactor (light_rain, heavy_rain, ...)
		TyreLifeFactors map[string]float64 `mapstructure:"tyreLifeFactors" yaml:"tyreLifeFactors,omitempty" json:"tyreLifeFactors,omitempty"`
		// applies to the plain wet state only
		WetPitLossFactor float64 `mapstructure:"wetPitLossFactor" yaml:"wetPitLossFactor" json:"wetPitLossFactor"`
		// optional per state pit loss factor for the other wet variants (default 1.0)
		PitLossFactors map[string]float64 `mapstructure:"pitLossFactors" yaml:"pitLossFactors,omitempty" json:"pitLossFactors,omitempty"`
	}

	CircuitPolicy struct {
		HighDegStints  []int `mapstructure:"highDegStints" yaml:"highDegStints" json:"highDegStints"`
		LowDegStints   []int `mapstructure:"lowDegStints" yaml:"lowDegStints" json:"lowDegStints"`
		BalancedStints []int `mapstructure:"balancedStints" yaml:"balancedStints" json:"balancedStints"`
	}

	// QualifyingPolicy splits the grid into front (1..FrontMaxPosition),
	// midfield (..MidfieldMaxPosition) and back.
	QualifyingPolicy struct {
		FrontMaxPosition    int     `mapstructure:"frontMaxPosition" yaml:"frontMaxPosition" json:"frontMaxPosition"`
		MidfieldMaxPosition int     `mapstructure:"midfieldMaxPosition" yaml:"midfieldMaxPosition" json:"midfieldMaxPosition"`
		FrontStints         []int   `mapstructure:"frontStints" yaml:"frontStints" json:"frontStints"`
		MidfieldStints      []int   `mapstructure:"midfieldStints" yaml:"midfieldStints" json:"midfieldStints"`
		BackStints          []int   `mapstructure:"backStints" yaml:"backStints" json:"backStints"`
		FrontPitLossFactor  float64 `mapstructure:"frontPitLossFactor" yaml:"frontPitLossFactor" json:"frontPitLossFactor"`
		BackPitLossFactor   float64 `mapstructure:"backPitLossFactor" yaml:"backPitLossFactor" json:"backPitLossFactor"`
	}

	InsightPolicy struct {
		TopCompounds int     `mapstructure:"topCompounds" yaml:"topCompounds" json:"topCompounds"`
		SpikeSigma   float64 `mapstructure:"spikeSigma" yaml:"spikeSigma" json:"spikeSigma"`
		MaxSpikes    int     `mapstructure:"maxSpikes" yaml:"maxSpikes" json:"maxSpikes"`
	}
)

func DefaultHeuristics() *Heuristics {
	return &Heuristics{
		Version:              HeuristicsVersion,
		DegradationThreshold: 1.05,
		DefaultTyreLife:      10,
		FallbackLapTimeStart: 90,
		FallbackLapTimeEnd:   95,
		FreshTyreFadeRate:    0.002,
		Weather: WeatherPolicy{
			DryTyreLifeFactor: 1.0,
			WetTyreLifeFactor: 0.7,
			WetPitLossFactor:  1.1,
		},
		Circuit: CircuitPolicy{
			HighDegStints:  []int{2, 3},
			LowDegStints:   []int{1, 2},
			BalancedStints: []int{1, 2},
		},
		Qualifying: QualifyingPolicy{
			FrontMaxPosition:    3,
			MidfieldMaxPosition: 10,
			FrontStints:         []int{1, 2},
			MidfieldStints:      []int{2},
			BackStints:          []int{2, 3},
			FrontPitLossFactor:  1.05,
			BackPitLossFactor:   0.95,
		},
		Insights: InsightPolicy{
			TopCompounds: 3,
			SpikeSigma:   2.0,
			MaxSpikes:    3,
		},
	}
}

// LoadHeuristics reads the "heuristics" section of the viper config on top
// of the defaults.
func LoadHeuristics(v *viper.Viper) (*Heuristics, error) {
	h := DefaultHeuristics()
	if v != nil && v.IsSet("heuristics") {
		if err := v.UnmarshalKey("heuristics", h); err != nil {
			return nil, fmt.Errorf("could not read heuristics: %w", err)
		}
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

//nolint:cyclop // plain checks
func (h *Heuristics) Validate() error {
	var errs []error
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, errors.New(msg))
		}
	}
	check(h.DegradationThreshold > 1.0, "degradationThreshold must be > 1")
	check(h.DefaultTyreLife >= 1, "defaultTyreLife must be >= 1")
	check(h.FallbackLapTimeStart > 0 && h.FallbackLapTimeEnd >= h.FallbackLapTimeStart,
		"fallback lap times must be positive and ascending")
	check(h.FreshTyreFadeRate >= 0, "freshTyreFadeRate must be >= 0")
	check(h.Weather.DryTyreLifeFactor > 0 && h.Weather.WetTyreLifeFactor > 0,
		"tyre life factors must be > 0")
	for k, f := range h.Weather.TyreLifeFactors {
		check(f > 0, fmt.Sprintf("tyre life factor for %s must be > 0", k))
	}
	check(h.Weather.WetPitLossFactor > 0, "wetPitLossFactor must be > 0")
	for k, f := range h.Weather.PitLossFactors {
		check(f > 0, fmt.Sprintf("pit loss factor for %s must be > 0", k))
	}
	check(validStints(h.Circuit.HighDegStints) &&
		validStints(h.Circuit.LowDegStints) &&
		validStints(h.Circuit.BalancedStints), "circuit stint counts must be within 1..3")
	check(h.Qualifying.FrontMaxPosition >= 1 &&
		h.Qualifying.MidfieldMaxPosition >= h.Qualifying.FrontMaxPosition,
		"qualifying bands must be ascending")
	check(validStints(h.Qualifying.FrontStints) &&
		validStints(h.Qualifying.MidfieldStints) &&
		validStints(h.Qualifying.BackStints), "qualifying stint counts must be within 1..3")
	check(h.Qualifying.FrontPitLossFactor > 0 && h.Qualifying.BackPitLossFactor > 0,
		"qualifying pit loss factors must be > 0")
	check(h.Insights.TopCompounds >= 1, "insights.topCompounds must be >= 1")
	check(h.Insights.SpikeSigma >= 0, "insights.spikeSigma must be >= 0")
	check(h.Insights.MaxSpikes >= 1, "insights.maxSpikes must be >= 1")
	if len(errs) > 0 {
		return fmt.Errorf("%w: invalid heuristics: %w", model.ErrValidation, errors.Join(errs...))
	}
	return nil
}

func validStints(counts []int) bool {
	if len(counts) == 0 {
		return false
	}
	for _, c := range counts {
		if c < 1 || c > 3 {
			return false
		}
	}
	return true
}

// TyreLifeFactor returns the multiplier applied to tyre life estimates.
func (h *Heuristics) TyreLifeFactor(w model.Weather) float64 {
	if w.IsDry() {
		return h.Weather.DryTyreLifeFactor
	}
	if f, ok := h.Weather.TyreLifeFactors[string(w)]; ok {
		return f
	}
	return h.Weather.WetTyreLifeFactor
}

// PitLossFactor returns the multiplier applied to the pit loss for the weather.
// Only the plain wet state is inflated unless a per state factor is configured.
func (h *Heuristics) PitLossFactor(w model.Weather) float64 {
	if f, ok := h.Weather.PitLossFactors[string(w)]; ok {
		return f
	}
	if w == model.WeatherWet {
		return h.Weather.WetPitLossFactor
	}
	return 1.0
}

func (h *Heuristics) CircuitStints(c model.CircuitType) []int {
	switch c {
	case model.CircuitHighDeg:
		return h.Circuit.HighDegStints
	case model.CircuitLowDeg:
		return h.Circuit.LowDegStints
	default:
		return h.Circuit.BalancedStints
	}
}

// QualifyingOverride returns the stint counts and pit loss factor for a grid
// position. ok is false when the position is unknown (<= 0).
func (h *Heuristics) QualifyingOverride(position int) (stints []int, pitLossFactor float64, ok bool) {
	switch {
	case position <= 0:
		return nil, 1.0, false
	case position <= h.Qualifying.FrontMaxPosition:
		return h.Qualifying.FrontStints, h.Qualifying.FrontPitLossFactor, true
	case position <= h.Qualifying.MidfieldMaxPosition:
		return h.Qualifying.MidfieldStints, 1.0, true
	default:
		return h.Qualifying.BackStints, h.Qualifying.BackPitLossFactor, true
	}
}
