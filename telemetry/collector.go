package telemetry

// Collector accumulates events within time windows and produces WindowStats.
// The hot loop only increments counters here; aggregation happens at window
// boundaries.
type Collector struct {
	windowSec   float64
	windowStart float64

	births   int
	deaths   int
	matings  int
	discards int
	fed      float64
	nurtured float64
}

// NewCollector creates a collector with the given window length in
// simulation seconds.
func NewCollector(windowSec float64) *Collector {
	if windowSec <= 0 {
		windowSec = 1
	}
	return &Collector{windowSec: windowSec}
}

// RecordBirth records a birth event.
func (c *Collector) RecordBirth() { c.births++ }

// RecordDeath records a death event.
func (c *Collector) RecordDeath() { c.deaths++ }

// RecordMating records a resolved reproduction event.
func (c *Collector) RecordMating() { c.matings++ }

// RecordDiscard records an invalid reproduction event that was dropped.
func (c *Collector) RecordDiscard() { c.discards++ }

// RecordFeed records food energy consumed by grazing.
func (c *Collector) RecordFeed(amount float64) { c.fed += amount }

// RecordNurture records energy transferred from a caregiver to a child.
func (c *Collector) RecordNurture(amount float64) { c.nurtured += amount }

// ShouldFlush reports whether the current window has elapsed.
func (c *Collector) ShouldFlush(simTime float64) bool {
	return simTime-c.windowStart >= c.windowSec
}

// Flush produces a WindowStats from the window's counters and the given
// end-of-window snapshot, then resets for the next window.
func (c *Collector) Flush(tick int64, simTime float64, snap *Snapshot) WindowStats {
	stats := WindowStats{
		WindowEndTick: tick,
		SimTimeSec:    simTime,
		Population:    len(snap.Organisms),
		Births:        c.births,
		Deaths:        c.deaths,
		Matings:       c.matings,
		Discards:      c.discards,
		FoodConsumed:  c.fed,
		Nurtured:      c.nurtured,
		MaxGeneration: int(snap.MaxGeneration),
	}

	energies := make([]float64, 0, len(snap.Organisms))
	ages := make([]float64, 0, len(snap.Organisms))
	for i := range snap.Organisms {
		o := &snap.Organisms[i]
		energies = append(energies, float64(o.Energy))
		ages = append(ages, float64(o.Age))
		if o.State == "sleeping" || o.State == "dreaming" {
			stats.Asleep++
		}
	}
	stats.EnergyMean, stats.EnergyStd, stats.EnergyP10, stats.EnergyP50, stats.EnergyP90 = distribution(energies)
	stats.AgeMean, _, _, stats.AgeP50, _ = distribution(ages)

	for i := range snap.FoodSites {
		stats.FoodAvailable += float64(snap.FoodSites[i].Quantity)
	}

	c.windowStart = simTime
	c.births = 0
	c.deaths = 0
	c.matings = 0
	c.discards = 0
	c.fed = 0
	c.nurtured = 0

	return stats
}
