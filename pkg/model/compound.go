package model

import "strings"

// Compound is the tyre compound category as reported by the timing data.
type Compound string

const (
	CompoundSoft         Compound = "SOFT"
	CompoundMedium       Compound = "MEDIUM"
	CompoundHard         Compound = "HARD"
	CompoundIntermediate Compound = "INTERMEDIATE"
	CompoundWet          Compound = "WET"
	CompoundUnknown      Compound = "UNKNOWN"
)

// ParseCompound normalizes the spelling used by the different exports.
// Unknown names are kept (uppercased) so that test compounds survive.
func ParseCompound(s string) Compound {
	v := strings.ToUpper(strings.TrimSpace(s))
	switch v {
	case "":
		return CompoundUnknown
	case "S":
		return CompoundSoft
	case "M":
		return CompoundMedium
	case "H":
		return CompoundHard
	case "I", "INTER":
		return CompoundIntermediate
	case "W", "FULL_WET", "FULLWET":
		return CompoundWet
	}
	return Compound(v)
}

func (c Compound) String() string { return string(c) }

type CircuitType string

const (
	CircuitHighDeg  CircuitType = "high_deg"
	CircuitLowDeg   CircuitType = "low_deg"
	CircuitBalanced CircuitType = "balanced"
)

// ParseCircuitType maps unknown values to CircuitBalanced.
func ParseCircuitType(s string) CircuitType {
	switch CircuitType(strings.ToLower(strings.TrimSpace(s))) {
	case CircuitHighDeg:
		return CircuitHighDeg
	case CircuitLowDeg:
		return CircuitLowDeg
	default:
		return CircuitBalanced
	}
}

type Weather string

const (
	WeatherDry       Weather = "dry"
	WeatherWet       Weather = "wet"
	WeatherLightRain Weather = "light_rain"
	WeatherHeavyRain Weather = "heavy_rain"
	WeatherVariable  Weather = "variable"
)

// ParseWeather accepts the forecast labels ("Light Rain") as well as the
// snake case states. Anything not recognized as dry is treated as wet.
func ParseWeather(s string) Weather {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.ReplaceAll(v, " ", "_")
	v = strings.ReplaceAll(v, "-", "_")
	switch Weather(v) {
	case WeatherDry, "":
		return WeatherDry
	case WeatherLightRain, WeatherHeavyRain, WeatherVariable:
		return Weather(v)
	default:
		return WeatherWet
	}
}

func (w Weather) IsDry() bool { return w == WeatherDry }
