package env

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/tetch/pond/config"
)

// Site is one food source: a fixed position with a current quantity that
// regrows toward a fixed capacity.
type Site struct {
	X, Y     float32
	Quantity float32
	Capacity float32
}

// FoodField holds all food sites on the torus.
type FoodField struct {
	cfg    config.FoodConfig
	sites  []Site
	w, h   float32
	growth float64 // noise amplitude on regrowth, from environment config
	rng    *rand.Rand
}

// NewFoodField scatters sites uniformly and assigns each a capacity from a
// seeded simplex noise field, so nearby sites have correlated richness. The
// same seed always produces the same field.
func NewFoodField(cfg config.FoodConfig, envCfg config.EnvironmentConfig, w, h float64, seed int64) *FoodField {
	rng := rand.New(rand.NewSource(seed))
	noise := opensimplex.New(seed)

	f := &FoodField{
		cfg:    cfg,
		sites:  make([]Site, cfg.SiteCount),
		w:      float32(w),
		h:      float32(h),
		growth: envCfg.GrowthNoise,
		rng:    rng,
	}
	for i := range f.sites {
		x := rng.Float64() * w
		y := rng.Float64() * h
		// Noise in [-1,1] -> richness in [richness_min, 1]
		n := (noise.Eval2(x*cfg.NoiseScale, y*cfg.NoiseScale) + 1) * 0.5
		richness := cfg.RichnessMin + (1-cfg.RichnessMin)*n
		cap32 := float32(cfg.SiteCapacity * richness)
		f.sites[i] = Site{
			X:        float32(x),
			Y:        float32(y),
			Quantity: cap32,
			Capacity: cap32,
		}
	}
	return f
}

// Sites exposes the site slice for read-only iteration (sensing, telemetry).
// Mutation goes through Consume and Regrow.
func (f *FoodField) Sites() []Site { return f.sites }

// Regrow advances every site by dt seconds using the environment's growth
// rate at the site's latitude. popFactor in [0, 1] damps regrowth as the
// population approaches carrying capacity. Quantities stay in [0, Capacity].
func (f *FoodField) Regrow(dt float64, e *Environment, popFactor float64) {
	for i := range f.sites {
		s := &f.sites[i]
		rate := e.GrowthRate(float64(s.Y)) * popFactor
		if f.growth > 0 {
			rate *= 1 + (f.rng.Float64()*2-1)*f.growth
		}
		q := s.Quantity + float32(rate*dt)
		if q < 0 {
			q = 0
		}
		if q > s.Capacity {
			q = s.Capacity
		}
		s.Quantity = q
	}
}

// Consume removes up to amount from site i and returns what was actually
// taken. An out-of-range index or empty site yields 0, never an error.
func (f *FoodField) Consume(i int, amount float32) float32 {
	if i < 0 || i >= len(f.sites) || amount <= 0 {
		return 0
	}
	s := &f.sites[i]
	if amount > s.Quantity {
		amount = s.Quantity
	}
	s.Quantity -= amount
	return amount
}

// NearestWithin returns the index of the closest non-empty site within
// radius of (x, y) on the torus, and whether one exists.
func (f *FoodField) NearestWithin(x, y, radius float32) (int, bool) {
	best := -1
	bestD2 := radius * radius
	for i := range f.sites {
		s := &f.sites[i]
		if s.Quantity <= 0 {
			continue
		}
		dx := torusDelta(s.X-x, f.w)
		dy := torusDelta(s.Y-y, f.h)
		d2 := dx*dx + dy*dy
		if d2 <= bestD2 {
			bestD2 = d2
			best = i
		}
	}
	return best, best >= 0
}

// GradientAt returns a unit-free vector pointing toward nearby food, each
// visible site weighted by quantity over squared distance.
func (f *FoodField) GradientAt(x, y, maxRange float32) (gx, gy float32) {
	r2 := maxRange * maxRange
	for i := range f.sites {
		s := &f.sites[i]
		if s.Quantity <= 0 {
			continue
		}
		dx := torusDelta(s.X-x, f.w)
		dy := torusDelta(s.Y-y, f.h)
		d2 := dx*dx + dy*dy
		if d2 > r2 || d2 < 1e-6 {
			continue
		}
		w := s.Quantity / d2
		gx += dx * w
		gy += dy * w
	}
	return gx, gy
}

// torusDelta wraps a coordinate difference to the shortest signed distance
// on an axis of the given span.
func torusDelta(d, span float32) float32 {
	half := span * 0.5
	if d > half {
		return d - span
	}
	if d < -half {
		return d + span
	}
	return d
}
