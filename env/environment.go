// Package env implements the world's environment: the day/season clock with
// its latitude-dependent weather model, and the food field organisms graze.
package env

import (
	"math"

	"github.com/tetch/pond/config"
)

// Environment tracks simulation time and derives weather from it. All
// outputs are pure functions of the clock and position, so two environments
// advanced identically report identical weather.
type Environment struct {
	cfg    config.EnvironmentConfig
	height float64 // world height, for the latitude mapping
	time   float64 // seconds since start
}

// New creates an environment from config. worldHeight sets the pole-to-pole
// extent of the latitude model.
func New(cfg config.EnvironmentConfig, worldHeight float64) *Environment {
	return &Environment{cfg: cfg, height: worldHeight}
}

// Advance moves the clock forward by dt seconds.
func (e *Environment) Advance(dt float64) {
	e.time += dt
}

// Time returns seconds since start.
func (e *Environment) Time() float64 { return e.time }

// Reset rewinds the clock to zero.
func (e *Environment) Reset() { e.time = 0 }

// DayPhase returns the position within the current day in [0, 1).
func (e *Environment) DayPhase() float64 {
	return math.Mod(e.time/e.cfg.DayLength, 1.0)
}

// YearPhase returns the position within the current year in [0, 1).
func (e *Environment) YearPhase() float64 {
	return math.Mod(e.time/e.cfg.YearLength, 1.0)
}

// DayNightFactor returns daylight intensity in [0, 1]: 0 at midnight,
// 1 at noon.
func (e *Environment) DayNightFactor() float64 {
	return 0.5 * (1 - math.Cos(2*math.Pi*e.DayPhase()))
}

// Latitude maps a y coordinate to |latitude| in [0, 1], with the equator at
// mid-height and poles at the top and bottom edges.
func (e *Environment) Latitude(y float64) float64 {
	lat := math.Abs(y/e.height-0.5) * 2
	if lat > 1 {
		lat = 1
	}
	return lat
}

// TemperatureAt returns the temperature in Celsius at latitude of y. Base
// temperature interpolates equator to pole; the seasonal swing has a larger
// amplitude near the poles.
func (e *Environment) TemperatureAt(y float64) float64 {
	lat := e.Latitude(y)
	base := e.cfg.BaseTempEquator + (e.cfg.BaseTempPole-e.cfg.BaseTempEquator)*lat
	amp := e.cfg.SeasonalVarEquator + (e.cfg.SeasonalVarPole-e.cfg.SeasonalVarEquator)*lat
	return base + amp*math.Sin(2*math.Pi*e.YearPhase())
}

// Precipitation returns the current precipitation level in [0, 1].
func (e *Environment) Precipitation() float64 {
	p := e.cfg.BasePrecipitation + e.cfg.PrecipVariation*math.Sin(2*math.Pi*(e.YearPhase()+e.cfg.PrecipPhase))
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// GrowthRate returns the food regrowth rate (units per second) at latitude
// of y: peaked at the optimal temperature with quadratic falloff, scaled by
// precipitation and daylight.
func (e *Environment) GrowthRate(y float64) float64 {
	d := (e.TemperatureAt(y) - e.cfg.OptimalGrowthTemp) / e.cfg.TempTolerance
	tempFactor := 1 - d*d
	if tempFactor < 0 {
		tempFactor = 0
	}
	precipFactor := 0.3 + 0.7*e.Precipitation()
	dayFactor := 0.3 + 0.7*e.DayNightFactor()
	return e.cfg.BaseRegrowth * tempFactor * precipFactor * dayFactor
}
