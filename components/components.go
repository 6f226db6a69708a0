// Package components defines ECS components for the simulation.
package components

import (
	"github.com/tetch/pond/genetics"
)

// State is the lifecycle state of an organism.
type State uint8

const (
	StateActive    State = iota // Awake: sensing, deciding, acting
	StateSleeping               // Regenerating, pressure dropping
	StateDreaming               // Replaying memory through the policy
	StateGestating              // Carrying a child (mothers only)
	StateDead                   // Terminal; removed at end of tick
)

// String returns the state name for logs and snapshots.
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateSleeping:
		return "sleeping"
	case StateDreaming:
		return "dreaming"
	case StateGestating:
		return "gestating"
	case StateDead:
		return "dead"
	}
	return "unknown"
}

// Sex of an organism. Matters only in sexual reproduction mode.
type Sex uint8

const (
	SexFemale Sex = iota
	SexMale
)

// Position is an entity's world position on the torus.
type Position struct {
	X, Y float32
}

// Velocity is an entity's velocity.
type Velocity struct {
	X, Y float32
}

// Rotation holds heading and angular velocity.
type Rotation struct {
	Angle      float32 // Radians, 0 = +X axis
	AngularVel float32 // Radians per second
}

// Energy holds the metabolic state. Value stays within [0, Max]; hitting 0
// marks the organism dead at the end of the tick.
type Energy struct {
	Value float32
	Max   float32
	Age   float32 // Seconds since birth
}

// Phenotype wraps the expressed traits so they can live in the ECS.
type Phenotype struct {
	genetics.Phenotype
}

// Lifecycle holds the state machine and its timers.
type Lifecycle struct {
	State          State
	SleepPressure  float32 // [0, 1], accumulates awake, sheds asleep
	SleepTimer     float32 // Seconds in the current Sleeping state
	DreamTimer     float32 // Seconds remaining in the current Dreaming state
	GestationTimer float32 // Seconds until birth (mothers in Gestating)
	MateCooldown   float32 // Seconds until eligible to reproduce again
}

// Organism holds identity, kinship and the genome. Parent and home fields
// are id back-references resolved through the world, never pointers.
type Organism struct {
	ID         uint32
	Sex        Sex
	Generation uint16
	IsChild    bool   // Dependent on a caregiver until dependency age
	ParentA    uint32 // 0 = none
	ParentB    uint32 // 0 = none
	HomeID     int32  // -1 = none
	Genome     genetics.Genome
}
