// Package telemetry provides the read-only per-tick snapshot, event
// collection over stats windows, and CSV output.
package telemetry

// OrganismState is the public view of one organism, published once per tick.
type OrganismState struct {
	ID              uint32
	X, Y            float32
	Heading         float32
	Energy          float32
	MaxEnergy       float32
	Age             float32
	State           string
	Sex             uint8
	Generation      uint16
	IsChild         bool
	VisionRange     float32
	VisionHalfAngle float32
	HomeID          int32
}

// FoodSiteState is the public view of one food site.
type FoodSiteState struct {
	X, Y     float32
	Quantity float32
	Capacity float32
}

// EnvironmentSummary condenses the environment for collaborators.
type EnvironmentSummary struct {
	Tick          int64
	Time          float64
	DayPhase      float64
	YearPhase     float64
	DayNight      float64
	TempEquator   float64 // temperature at latitude 0
	Precipitation float64
}

// Snapshot is the complete read-only view published at the end of each
// tick. Consumers (rendering, logging, persistence) must never mutate it;
// the next Step replaces it wholesale.
type Snapshot struct {
	Env       EnvironmentSummary
	Organisms []OrganismState // sorted by id
	FoodSites []FoodSiteState

	// Per-tick event counts
	Births int
	Deaths int

	MaxGeneration uint16
}
