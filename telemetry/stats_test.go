package telemetry

import (
	"math"
	"testing"
)

func TestDistribution(t *testing.T) {
	values := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	mean, std, p10, p50, p90 := distribution(values)

	if math.Abs(mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", mean)
	}
	if std <= 0 {
		t.Errorf("std = %v, want positive", std)
	}
	if p10 > p50 || p50 > p90 {
		t.Errorf("quantiles not ordered: p10=%v p50=%v p90=%v", p10, p50, p90)
	}
	if p10 < 0.1 || p90 > 1.0 {
		t.Errorf("quantiles outside data range: p10=%v p90=%v", p10, p90)
	}
}

func TestDistributionEmpty(t *testing.T) {
	mean, std, p10, p50, p90 := distribution(nil)
	if mean != 0 || std != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty input should return all zeros")
	}
}

func TestDistributionSingle(t *testing.T) {
	mean, std, p10, p50, p90 := distribution([]float64{5})
	if mean != 5 || std != 0 {
		t.Errorf("mean/std = %v/%v, want 5/0", mean, std)
	}
	if p10 != 5 || p50 != 5 || p90 != 5 {
		t.Errorf("quantiles = %v/%v/%v, want all 5", p10, p50, p90)
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(10)

	c.RecordBirth()
	c.RecordBirth()
	c.RecordDeath()
	c.RecordMating()
	c.RecordDiscard()
	c.RecordFeed(3.5)
	c.RecordNurture(1.5)

	if c.ShouldFlush(5) {
		t.Error("ShouldFlush(5) = true before the window elapsed")
	}
	if !c.ShouldFlush(10) {
		t.Error("ShouldFlush(10) = false at the window boundary")
	}

	snap := &Snapshot{
		Organisms: []OrganismState{
			{ID: 1, Energy: 40, Age: 10, State: "active"},
			{ID: 2, Energy: 60, Age: 30, State: "sleeping"},
		},
		FoodSites:     []FoodSiteState{{Quantity: 12}, {Quantity: 8}},
		MaxGeneration: 3,
	}
	stats := c.Flush(200, 10, snap)

	if stats.Births != 2 || stats.Deaths != 1 || stats.Matings != 1 || stats.Discards != 1 {
		t.Errorf("counters = %+v, want births=2 deaths=1 matings=1 discards=1", stats)
	}
	if math.Abs(stats.FoodConsumed-3.5) > 1e-9 || math.Abs(stats.Nurtured-1.5) > 1e-9 {
		t.Errorf("flows = %v/%v, want 3.5/1.5", stats.FoodConsumed, stats.Nurtured)
	}
	if stats.Population != 2 || stats.Asleep != 1 {
		t.Errorf("population/asleep = %d/%d, want 2/1", stats.Population, stats.Asleep)
	}
	if math.Abs(stats.EnergyMean-50) > 1e-9 {
		t.Errorf("energy mean = %v, want 50", stats.EnergyMean)
	}
	if math.Abs(stats.FoodAvailable-20) > 1e-9 {
		t.Errorf("food available = %v, want 20", stats.FoodAvailable)
	}
	if stats.MaxGeneration != 3 {
		t.Errorf("max generation = %d, want 3", stats.MaxGeneration)
	}

	// Counters reset after flush
	empty := c.Flush(400, 20, &Snapshot{})
	if empty.Births != 0 || empty.FoodConsumed != 0 {
		t.Error("counters not reset by Flush")
	}
}
