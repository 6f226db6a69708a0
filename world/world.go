// Package world orchestrates the simulation: it owns the ECS population,
// the environment, per-tick stepping, reproduction resolution and snapshot
// publication.
package world

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/tetch/pond/brain"
	"github.com/tetch/pond/components"
	"github.com/tetch/pond/config"
	"github.com/tetch/pond/env"
	"github.com/tetch/pond/genetics"
	"github.com/tetch/pond/systems"
	"github.com/tetch/pond/telemetry"
)

// Home is a shelter built by an organism. Ownership is an id back-reference;
// dependents resolve it through the world each tick.
type Home struct {
	ID    int32
	X, Y  float32
	Owner uint32
}

// matingEvent is a queued reproduction claim. B is zero for asexual events.
type matingEvent struct {
	A, B uint32
}

// gestation holds a resolved child waiting for the mother's term to end.
// The genome and energy endowment are fixed at resolution time.
type gestation struct {
	Genome     genetics.Genome
	Father     uint32
	Energy     float32
	Generation uint16
}

// birth is a fully determined child pending registration.
type birth struct {
	Genome     genetics.Genome
	X, Y       float32
	Heading    float32
	Energy     float32
	Generation uint16
	ParentA    uint32
	ParentB    uint32
}

// World is the simulation core. It is stepped one tick at a time and is not
// safe for concurrent use; parallelism is internal to the sense/decide
// phases only.
type World struct {
	cfg *config.Config

	ecs          *ecs.World
	entityMapper *ecs.Map7[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.Energy,
		components.Phenotype,
		components.Lifecycle,
		components.Organism,
	]
	entityFilter *ecs.Filter7[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.Energy,
		components.Phenotype,
		components.Lifecycle,
		components.Organism,
	]
	posMap    *ecs.Map1[components.Position]
	velMap    *ecs.Map1[components.Velocity]
	rotMap    *ecs.Map1[components.Rotation]
	energyMap *ecs.Map1[components.Energy]
	phenMap   *ecs.Map1[components.Phenotype]
	lifeMap   *ecs.Map1[components.Lifecycle]
	orgMap    *ecs.Map1[components.Organism]

	environment *env.Environment
	food        *env.FoodField
	grid        *systems.SpatialGrid
	collector   *telemetry.Collector

	rng      *rand.Rand // all serial-phase randomness flows from here
	policies map[uint32]brain.Policy
	byID     map[uint32]ecs.Entity
	homes    map[int32]Home

	nextID     uint32
	nextHomeID int32
	tick       int64
	paused     bool
	timeScale  float64

	// Per-tick scratch, reused across steps
	bodies     []systems.Body
	entities   []ecs.Entity
	senses     []systems.Senses
	actions    []brain.Action
	mateQueue  []matingEvent
	births     []birth
	gestations map[uint32]gestation
	parallel   *parallelState

	tickBirths int
	tickDeaths int
	latest     telemetry.Snapshot
}

// New builds a world from a validated config. An invalid config fails
// construction outright; no partial world is ever returned.
func New(cfg *config.Config) (*World, error) {
	if cfg == nil {
		return nil, fmt.Errorf("world: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}
	if cfg.Sensors.Rays != brain.NumRays {
		return nil, fmt.Errorf("world: sensors.rays must be %d to match the policy input layout, got %d",
			brain.NumRays, cfg.Sensors.Rays)
	}

	w := &World{cfg: cfg, timeScale: 1}
	w.init(cfg.Seed)
	return w, nil
}

// init builds all run state from a seed. Reset calls this again with a new
// seed to discard everything.
func (w *World) init(seed int64) {
	world := ecs.NewWorld()
	w.ecs = world
	w.entityMapper = ecs.NewMap7[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.Energy,
		components.Phenotype,
		components.Lifecycle,
		components.Organism,
	](world)
	w.entityFilter = ecs.NewFilter7[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.Energy,
		components.Phenotype,
		components.Lifecycle,
		components.Organism,
	](world)
	w.posMap = ecs.NewMap1[components.Position](world)
	w.velMap = ecs.NewMap1[components.Velocity](world)
	w.rotMap = ecs.NewMap1[components.Rotation](world)
	w.energyMap = ecs.NewMap1[components.Energy](world)
	w.phenMap = ecs.NewMap1[components.Phenotype](world)
	w.lifeMap = ecs.NewMap1[components.Lifecycle](world)
	w.orgMap = ecs.NewMap1[components.Organism](world)

	w.rng = rand.New(rand.NewSource(seed))
	foodSeed := w.rng.Int63()

	w.environment = env.New(w.cfg.Environment, w.cfg.World.Height)
	w.food = env.NewFoodField(w.cfg.Food, w.cfg.Environment, w.cfg.World.Width, w.cfg.World.Height, foodSeed)
	w.grid = systems.NewSpatialGrid(w.cfg.Derived.WorldW32, w.cfg.Derived.WorldH32, float32(w.cfg.Physics.GridCellSize))
	w.collector = telemetry.NewCollector(w.cfg.Telemetry.WindowSec)

	w.policies = make(map[uint32]brain.Policy)
	w.byID = make(map[uint32]ecs.Entity)
	w.homes = make(map[int32]Home)
	w.gestations = make(map[uint32]gestation)
	w.nextID = 0
	w.nextHomeID = 0
	w.tick = 0
	w.tickBirths = 0
	w.tickDeaths = 0
	w.mateQueue = w.mateQueue[:0]
	w.births = w.births[:0]
	w.latest = telemetry.Snapshot{}

	if w.parallel != nil {
		w.parallel.stopWorkers()
	}
	w.parallel = newParallelState()

	w.spawnFounders()
	w.publishSnapshot()
}

// spawnFounders creates the initial population: either a single breeding
// pair at world center, or a random scatter.
func (w *World) spawnFounders() {
	if w.cfg.Population.AdamEve {
		cx := w.cfg.Derived.WorldW32 / 2
		cy := w.cfg.Derived.WorldH32 / 2
		eve := genetics.NewRandom(w.rng).WithGene(genetics.GeneSex, 0.25)
		adam := genetics.NewRandom(w.rng).WithGene(genetics.GeneSex, 0.75)
		w.spawnOrganism(eve, cx-10, cy, 0, float32(w.cfg.Energy.Start), 0, 0, 0, nil, nil)
		w.spawnOrganism(adam, cx+10, cy, math.Pi, float32(w.cfg.Energy.Start), 0, 0, 0, nil, nil)
		return
	}
	for i := 0; i < w.cfg.Population.Initial; i++ {
		// Alternate the sex gene so the founding population is balanced
		sexGene := float32(0.25)
		if i%2 == 1 {
			sexGene = 0.75
		}
		genome := genetics.NewRandom(w.rng).WithGene(genetics.GeneSex, sexGene)
		x := w.rng.Float32() * w.cfg.Derived.WorldW32
		y := w.rng.Float32() * w.cfg.Derived.WorldH32
		heading := w.rng.Float32() * 2 * math.Pi
		w.spawnOrganism(genome, x, y, heading, float32(w.cfg.Energy.Start), 0, 0, 0, nil, nil)
	}
}

// spawnOrganism registers a new organism and its policy. Sex is expressed
// by the genome's sex gene. A nil parent policy pair yields a fresh policy
// seeded by the genome; otherwise the policy is inherited per the
// configured blend.
func (w *World) spawnOrganism(genome genetics.Genome, x, y, heading, energy float32,
	generation uint16, parentA, parentB uint32, polA, polB brain.Policy) uint32 {

	w.nextID++
	id := w.nextID

	sex := components.SexFemale
	if !genome.Female() {
		sex = components.SexMale
	}

	params := w.policyParams()
	var policy brain.Policy
	if polA != nil && polB != nil {
		policy = brain.Inherit(polA, polB, float32(w.cfg.Policy.InheritanceWeight), genome.PolicySeed(), params)
	} else {
		policy = brain.NewRecurrent(genome.PolicySeed(), params)
	}

	pos := components.Position{X: systems.Wrap(x, w.cfg.Derived.WorldW32), Y: systems.Wrap(y, w.cfg.Derived.WorldH32)}
	vel := components.Velocity{}
	rot := components.Rotation{Angle: heading}
	en := components.Energy{Value: energy, Max: float32(w.cfg.Energy.Max)}
	phen := components.Phenotype{Phenotype: genetics.Derive(genome, w.cfg.Traits)}
	life := components.Lifecycle{State: components.StateActive}
	org := components.Organism{
		ID:         id,
		Sex:        sex,
		Generation: generation,
		IsChild:    parentA != 0,
		ParentA:    parentA,
		ParentB:    parentB,
		HomeID:     -1,
		Genome:     genome,
	}

	entity := w.entityMapper.NewEntity(&pos, &vel, &rot, &en, &phen, &life, &org)
	w.byID[id] = entity
	w.policies[id] = policy
	return id
}

func (w *World) policyParams() brain.Params {
	return brain.Params{
		MemorySize:    w.cfg.Policy.MemorySize,
		LearningRate:  float32(w.cfg.Policy.LearningRate),
		LearningDecay: float32(w.cfg.Policy.LearningDecay),
	}
}

// Population returns the number of live organisms.
func (w *World) Population() int {
	return len(w.byID)
}

// Tick returns the number of completed steps.
func (w *World) Tick() int64 { return w.tick }

// Snapshot returns the read-only snapshot published at the end of the last
// step. Collaborators must not mutate it.
func (w *World) Snapshot() *telemetry.Snapshot { return &w.latest }

// Collector exposes the telemetry collector for window flushing by the
// driver.
func (w *World) Collector() *telemetry.Collector { return w.collector }

// Homes returns the current home registry keyed by id.
func (w *World) Homes() map[int32]Home { return w.homes }

// Pause stops Step from advancing until Resume. Takes effect at the next
// tick boundary; never interrupts a tick in progress.
func (w *World) Pause() { w.paused = true }

// Resume undoes Pause.
func (w *World) Resume() { w.paused = false }

// Paused reports whether stepping is suspended.
func (w *World) Paused() bool { return w.paused }

// SetTimeScale scales the dt of subsequent steps. The multiplier must be
// positive.
func (w *World) SetTimeScale(mult float64) error {
	if mult <= 0 || math.IsNaN(mult) || math.IsInf(mult, 0) {
		return fmt.Errorf("world: time scale must be positive and finite, got %g", mult)
	}
	w.timeScale = mult
	return nil
}

// Reset discards all organisms and environment state and restarts from the
// given seed. Only valid between ticks.
func (w *World) Reset(seed int64) {
	w.init(seed)
}

// Close releases the parallel worker pool.
func (w *World) Close() {
	if w.parallel != nil {
		w.parallel.stopWorkers()
	}
}
