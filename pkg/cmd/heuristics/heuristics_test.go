package heuristics

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"gotest.tools/v3/assert"

	"github.com/mpapenbr/tyre-strategy/pkg/config"
)

func TestMergeForecasts(t *testing.T) {
	h := config.DefaultHeuristics()
	h.Weather.TyreLifeFactors = map[string]float64{"light_rain": 0.95}
	mergeForecasts(h)

	assert.Equal(t, h.Weather.TyreLifeFactors["light_rain"], 0.95)
	assert.Equal(t, h.Weather.TyreLifeFactors["heavy_rain"], 0.75)
	assert.Equal(t, h.Weather.TyreLifeFactors["variable"], 0.85)
	_, ok := h.Weather.TyreLifeFactors["dry"]
	assert.Assert(t, !ok)
}

// the printed document must be readable as config file again
func TestWriteRoundTripsThroughViper(t *testing.T) {
	h := config.DefaultHeuristics()
	h.DegradationThreshold = 1.07
	mergeForecasts(h)

	var buf bytes.Buffer
	assert.NilError(t, write(&buf, h))

	v := viper.New()
	v.SetConfigType("yaml")
	assert.NilError(t, v.ReadConfig(&buf))
	got, err := config.LoadHeuristics(v)
	assert.NilError(t, err)
	assert.DeepEqual(t, got, h)
}
