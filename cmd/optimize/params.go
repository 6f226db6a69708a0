// Package main provides CMA-ES optimization for finding simulation
// parameters that produce long-lived, stable pond ecosystems.
package main

import (
	"github.com/tetch/pond/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Energy
			{Name: "metabolism_base", Path: "energy.metabolism_base", Min: 0.2, Max: 1.5, Default: 0.6},
			{Name: "eat_rate", Path: "energy.eat_rate", Min: 5.0, Max: 30.0, Default: 14.0},
			{Name: "sleep_regen", Path: "energy.sleep_regen", Min: 0.3, Max: 3.0, Default: 1.2},
			// Reproduction
			{Name: "parent_keep", Path: "reproduction.parent_keep", Min: 0.6, Max: 0.95, Default: 0.8},
			{Name: "child_take", Path: "reproduction.child_take", Min: 0.4, Max: 1.0, Default: 0.75},
			{Name: "mate_cooldown", Path: "reproduction.cooldown", Min: 5.0, Max: 60.0, Default: 25.0},
			{Name: "gestation", Path: "reproduction.gestation", Min: 0.0, Max: 30.0, Default: 12.0},
			// Mutation
			{Name: "mutation_rate", Path: "mutation.rate", Min: 0.01, Max: 0.3, Default: 0.08},
			// Nurture
			{Name: "feed_share", Path: "nurture.feed_share", Min: 0.005, Max: 0.1, Default: 0.04},
			// Food supply
			{Name: "base_regrowth", Path: "environment.base_regrowth", Min: 0.5, Max: 8.0, Default: 2.5},
			{Name: "site_capacity", Path: "food.site_capacity", Min: 10.0, Max: 120.0, Default: 40.0},
			// Sleep
			{Name: "sleep_pressure_rate", Path: "sleep.pressure_rate", Min: 0.002, Max: 0.05, Default: 0.01},
			// Population
			{Name: "target_pop", Path: "population.target_pop", Min: 50, Max: 400, Default: 150},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	i := 0

	cfg.Energy.MetabolismBase = clamped[i]
	i++
	cfg.Energy.EatRate = clamped[i]
	i++
	cfg.Energy.SleepRegen = clamped[i]
	i++

	cfg.Reproduction.ParentKeep = clamped[i]
	i++
	cfg.Reproduction.ChildTake = clamped[i]
	i++
	cfg.Reproduction.Cooldown = clamped[i]
	i++
	cfg.Reproduction.Gestation = clamped[i]
	i++

	cfg.Mutation.Rate = clamped[i]
	i++

	cfg.Nurture.FeedShare = clamped[i]
	i++

	cfg.Environment.BaseRegrowth = clamped[i]
	i++
	cfg.Food.SiteCapacity = clamped[i]
	i++

	cfg.Sleep.PressureRate = clamped[i]
	i++

	cfg.Population.TargetPop = int(clamped[i])
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Energy.MetabolismBase,
		cfg.Energy.EatRate,
		cfg.Energy.SleepRegen,
		cfg.Reproduction.ParentKeep,
		cfg.Reproduction.ChildTake,
		cfg.Reproduction.Cooldown,
		cfg.Reproduction.Gestation,
		cfg.Mutation.Rate,
		cfg.Nurture.FeedShare,
		cfg.Environment.BaseRegrowth,
		cfg.Food.SiteCapacity,
		cfg.Sleep.PressureRate,
		float64(cfg.Population.TargetPop),
	}
}
