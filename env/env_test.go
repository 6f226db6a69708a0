package env

import (
	"math"
	"testing"

	"github.com/tetch/pond/config"
)

func testEnvConfig() config.EnvironmentConfig {
	return config.EnvironmentConfig{
		DayLength:          100,
		YearLength:         1000,
		BaseTempEquator:    28,
		BaseTempPole:       -4,
		SeasonalVarEquator: 4,
		SeasonalVarPole:    16,
		BasePrecipitation:  0.5,
		PrecipVariation:    0.3,
		PrecipPhase:        0.25,
		OptimalGrowthTemp:  22,
		TempTolerance:      14,
		BaseRegrowth:       2.0,
		GrowthNoise:        0,
	}
}

func testFoodConfig() config.FoodConfig {
	return config.FoodConfig{SiteCount: 30, SiteCapacity: 40, NoiseScale: 0.01, RichnessMin: 0.2}
}

func TestDayNightFactor(t *testing.T) {
	e := New(testEnvConfig(), 1000)

	tests := []struct {
		name string
		time float64
		want float64
	}{
		{"midnight", 0, 0},
		{"noon", 50, 1},
		{"next midnight", 100, 0},
		{"quarter day", 25, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.Reset()
			e.Advance(tt.time)
			if got := e.DayNightFactor(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("DayNightFactor at t=%v = %v, want %v", tt.time, got, tt.want)
			}
		})
	}
}

func TestTemperatureLatitude(t *testing.T) {
	cfg := testEnvConfig()
	e := New(cfg, 1000)

	// At year phase 0 the seasonal term vanishes
	equator := e.TemperatureAt(500)
	pole := e.TemperatureAt(0)
	bottomPole := e.TemperatureAt(1000)

	if math.Abs(equator-cfg.BaseTempEquator) > 1e-9 {
		t.Errorf("equator temp = %v, want %v", equator, cfg.BaseTempEquator)
	}
	if math.Abs(pole-cfg.BaseTempPole) > 1e-9 {
		t.Errorf("pole temp = %v, want %v", pole, cfg.BaseTempPole)
	}
	if math.Abs(pole-bottomPole) > 1e-9 {
		t.Errorf("top and bottom poles differ: %v vs %v", pole, bottomPole)
	}
}

func TestWeatherDeterminism(t *testing.T) {
	a := New(testEnvConfig(), 1000)
	b := New(testEnvConfig(), 1000)
	for i := 0; i < 100; i++ {
		a.Advance(0.37)
		b.Advance(0.37)
	}

	if a.TemperatureAt(333) != b.TemperatureAt(333) {
		t.Error("identical clocks yield different temperatures")
	}
	if a.Precipitation() != b.Precipitation() {
		t.Error("identical clocks yield different precipitation")
	}
}

func TestGrowthRateNonNegative(t *testing.T) {
	e := New(testEnvConfig(), 1000)
	for _, tm := range []float64{0, 137, 555, 999} {
		e.Reset()
		e.Advance(tm)
		for _, y := range []float64{0, 250, 500, 750, 1000} {
			if g := e.GrowthRate(y); g < 0 {
				t.Errorf("GrowthRate(y=%v) at t=%v = %v, want >= 0", y, tm, g)
			}
		}
	}
}

func TestFoodFieldDeterministic(t *testing.T) {
	a := NewFoodField(testFoodConfig(), testEnvConfig(), 800, 600, 7)
	b := NewFoodField(testFoodConfig(), testEnvConfig(), 800, 600, 7)

	for i := range a.Sites() {
		if a.Sites()[i] != b.Sites()[i] {
			t.Fatalf("site %d differs between identically-seeded fields", i)
		}
	}
}

func TestConsume(t *testing.T) {
	f := NewFoodField(testFoodConfig(), testEnvConfig(), 800, 600, 7)
	q := f.Sites()[0].Quantity

	got := f.Consume(0, q/2)
	if math.Abs(float64(got-q/2)) > 1e-6 {
		t.Errorf("Consume = %v, want %v", got, q/2)
	}

	// Over-consumption returns what remains
	got = f.Consume(0, q)
	if math.Abs(float64(got-q/2)) > 1e-5 {
		t.Errorf("over-consume = %v, want remaining %v", got, q/2)
	}
	if f.Sites()[0].Quantity != 0 {
		t.Errorf("quantity = %v after draining, want 0", f.Sites()[0].Quantity)
	}

	// Misses yield zero, never an error
	if f.Consume(-1, 5) != 0 || f.Consume(len(f.Sites()), 5) != 0 {
		t.Error("out-of-range consume should return 0")
	}
}

func TestRegrowBounds(t *testing.T) {
	f := NewFoodField(testFoodConfig(), testEnvConfig(), 800, 600, 7)
	e := New(testEnvConfig(), 600)
	e.Advance(50) // noon, maximum growth

	f.Consume(0, f.Sites()[0].Quantity)
	for i := 0; i < 10000; i++ {
		f.Regrow(1.0, e, 1.0)
	}
	for i, s := range f.Sites() {
		if s.Quantity < 0 || s.Quantity > s.Capacity {
			t.Errorf("site %d quantity %v outside [0, %v]", i, s.Quantity, s.Capacity)
		}
	}
	if f.Sites()[0].Quantity == 0 {
		t.Error("drained site never regrew under maximum growth")
	}
}

func TestNearestWithin(t *testing.T) {
	f := NewFoodField(testFoodConfig(), testEnvConfig(), 800, 600, 7)
	s := f.Sites()[0]

	idx, ok := f.NearestWithin(s.X+1, s.Y, 5)
	if !ok {
		t.Fatal("expected a site within radius")
	}
	got := f.Sites()[idx]
	dx := float64(got.X - (s.X + 1))
	dy := float64(got.Y - s.Y)
	if math.Sqrt(dx*dx+dy*dy) > 5 {
		t.Error("returned site outside the requested radius")
	}

	// Empty sites are skipped: drain everything and the query misses
	for i := range f.Sites() {
		f.Consume(i, f.Sites()[i].Quantity)
	}
	if _, ok := f.NearestWithin(s.X, s.Y, 1e9); ok {
		t.Error("query over drained field should miss")
	}
}

func TestTorusDelta(t *testing.T) {
	tests := []struct {
		name string
		d    float32
		span float32
		want float32
	}{
		{"no wrap", 10, 100, 10},
		{"wrap positive", 80, 100, -20},
		{"wrap negative", -80, 100, 20},
		{"half span", 50, 100, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := torusDelta(tt.d, tt.span); got != tt.want {
				t.Errorf("torusDelta(%v, %v) = %v, want %v", tt.d, tt.span, got, tt.want)
			}
		})
	}
}
