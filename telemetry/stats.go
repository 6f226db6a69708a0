package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowEndTick int64   `csv:"window_end"`
	SimTimeSec    float64 `csv:"sim_time"`

	// Population at window end
	Population    int `csv:"population"`
	Asleep        int `csv:"asleep"`
	MaxGeneration int `csv:"max_generation"`

	// Events during window
	Births   int `csv:"births"`
	Deaths   int `csv:"deaths"`
	Matings  int `csv:"matings"`
	Discards int `csv:"discarded_events"`

	// Energy flows during window
	FoodConsumed float64 `csv:"food_consumed"`
	Nurtured     float64 `csv:"nurtured"`

	// Distributions sampled at window end
	EnergyMean float64 `csv:"energy_mean"`
	EnergyStd  float64 `csv:"energy_std"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`
	AgeMean    float64 `csv:"age_mean"`
	AgeP50     float64 `csv:"age_p50"`

	FoodAvailable float64 `csv:"food_available"`
}

// distribution computes mean, stddev and the 10/50/90 quantiles of values.
// Empty input yields all zeros.
func distribution(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)
	if n > 1 {
		std = stat.StdDev(values, nil)
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)

	return mean, std, p10, p50, p90
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"population", s.Population,
		"asleep", s.Asleep,
		"max_generation", s.MaxGeneration,
		"births", s.Births,
		"deaths", s.Deaths,
		"matings", s.Matings,
		"discarded_events", s.Discards,
		"food_consumed", s.FoodConsumed,
		"nurtured", s.Nurtured,
		"energy_mean", s.EnergyMean,
		"energy_std", s.EnergyStd,
		"energy_p10", s.EnergyP10,
		"energy_p50", s.EnergyP50,
		"energy_p90", s.EnergyP90,
		"age_mean", s.AgeMean,
		"age_p50", s.AgeP50,
		"food_available", s.FoodAvailable,
	)
}
