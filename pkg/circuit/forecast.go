package circuit

import "github.com/mpapenbr/tyre-strategy/pkg/model"

type Forecast struct {
	Label   string        `json:"label"`
	Weather model.Weather `json:"weather"`
	// tyre life bias for this forecast
	Bias float64 `json:"bias"`
}

var forecasts = []Forecast{
	{"Dry", model.WeatherDry, 1.0},
	{"Light Rain", model.WeatherLightRain, 0.9},
	{"Heavy Rain", model.WeatherHeavyRain, 0.75},
	{"Variable", model.WeatherVariable, 0.85},
}

func Forecasts() []Forecast {
	return append([]Forecast(nil), forecasts...)
}

// ForecastTyreLifeFactors returns the forecast biases of the non-dry states,
// suitable for Heuristics.Weather.TyreLifeFactors.
func ForecastTyreLifeFactors() map[string]float64 {
	ret := make(map[string]float64)
	for _, f := range forecasts {
		if !f.Weather.IsDry() {
			ret[string(f.Weather)] = f.Bias
		}
	}
	return ret
}
