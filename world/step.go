package world

import (
	"math"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/tetch/pond/brain"
	"github.com/tetch/pond/components"
	"github.com/tetch/pond/config"
	"github.com/tetch/pond/systems"
)

// Step advances the simulation by one tick of dt seconds (scaled by the
// current time scale). The phase order is fixed: environment, frozen
// snapshot, parallel sense/decide, serial act, nurture, lifecycle/metabolism,
// reproduction resolution, birth registration, dead removal, snapshot
// publication.
func (w *World) Step(dt float64) {
	if w.paused || dt <= 0 {
		return
	}
	dt *= w.timeScale
	dt32 := float32(dt)
	w.tick++
	w.tickBirths = 0
	w.tickDeaths = 0

	// Environment advances independently of organisms
	w.environment.Advance(dt)
	w.food.Regrow(dt, w.environment, w.popFactor())

	// Freeze the tick's view of the population, in id order
	w.buildBodies()
	w.rebuildGrid()

	// Sense + decide: read-only against the frozen snapshot, parallel
	w.senseDecide()

	// Everything below runs serially with exclusive access
	w.applyActions(dt32)
	w.updateNurture(dt32)
	w.updateLifecycles(dt32)
	w.resolveReproduction()
	w.applyBirths()
	w.removeDead()
	w.publishSnapshot()
}

// popFactor damps food regrowth as the population approaches the soft
// carrying capacity. 1 at zero population, 0.5 at the target.
func (w *World) popFactor() float64 {
	target := float64(w.cfg.Population.TargetPop)
	if target <= 0 {
		return 1
	}
	return target / (target + float64(len(w.byID)))
}

// buildBodies collects the frozen per-organism views, sorted by id so every
// later phase iterates the population in a stable order.
func (w *World) buildBodies() {
	w.bodies = w.bodies[:0]
	w.entities = w.entities[:0]

	query := w.entityFilter.Query()
	for query.Next() {
		pos, vel, rot, en, phen, life, org := query.Get()
		w.bodies = append(w.bodies, systems.Body{
			ID:              org.ID,
			X:               pos.X,
			Y:               pos.Y,
			Heading:         rot.Angle,
			Speed:           float32(math.Hypot(float64(vel.X), float64(vel.Y))),
			Energy:          en.Value,
			MaxEnergy:       en.Max,
			Age:             en.Age,
			Sex:             org.Sex,
			State:           life.State,
			IsChild:         org.IsChild,
			ParentA:         org.ParentA,
			ParentB:         org.ParentB,
			VisionRange:     phen.VisionRange,
			VisionHalfAngle: phen.VisionHalfAngle,
			MaxSpeed:        phen.MaxSpeed,
			Fertility:       phen.Fertility,
			SleepPressure:   life.SleepPressure,
		})
		w.entities = append(w.entities, query.Entity())
	}

	sort.Sort(byID{bodies: w.bodies, entities: w.entities})
	for i := range w.bodies {
		w.bodies[i].Idx = int32(i)
	}

	// Resize the per-tick result buffers
	n := len(w.bodies)
	if cap(w.senses) < n {
		w.senses = make([]systems.Senses, n)
	}
	w.senses = w.senses[:n]
	if cap(w.actions) < n {
		w.actions = make([]brain.Action, n)
	}
	w.actions = w.actions[:n]
}

// byID sorts the body and entity slices together by organism id.
type byID struct {
	bodies   []systems.Body
	entities []ecs.Entity
}

func (s byID) Len() int           { return len(s.bodies) }
func (s byID) Less(i, j int) bool { return s.bodies[i].ID < s.bodies[j].ID }
func (s byID) Swap(i, j int) {
	s.bodies[i], s.bodies[j] = s.bodies[j], s.bodies[i]
	s.entities[i], s.entities[j] = s.entities[j], s.entities[i]
}

// rebuildGrid re-buckets all bodies. Insertion in id order keeps query
// results deterministic.
func (w *World) rebuildGrid() {
	w.grid.Clear()
	for i := range w.bodies {
		w.grid.Insert(w.bodies[i].Idx, w.bodies[i].X, w.bodies[i].Y)
	}
}

// applyActions runs the act phase serially in id order: reflex-blended
// steering, physics integration, grazing, and the intent gates that queue
// mating events, build homes, and start sleep.
func (w *World) applyActions(dt float32) {
	w.mateQueue = w.mateQueue[:0]
	sexual := w.cfg.Reproduction.Mode == config.ModeSexual
	eatRadius := float32(w.cfg.Energy.EatRadius)
	eatRate := float32(w.cfg.Energy.EatRate)

	for i := range w.bodies {
		b := &w.bodies[i]
		entity := w.entities[i]
		life := w.lifeMap.Get(entity)
		pos := w.posMap.Get(entity)
		vel := w.velMap.Get(entity)
		rot := w.rotMap.Get(entity)
		en := w.energyMap.Get(entity)
		phen := w.phenMap.Get(entity)
		org := w.orgMap.Get(entity)

		awake := life.State == components.StateActive || life.State == components.StateGestating

		var act brain.Action
		if life.State == components.StateActive {
			act = w.actions[i]
			// Reflex assist pulls steering toward the food gradient
			blend := float32(w.cfg.Policy.ReflexBlend)
			reflex := systems.ReflexSteer(b, w.senses[i].FoodGX, w.senses[i].FoodGY)
			act.Turn = (1-blend)*act.Turn + blend*reflex
		}

		systems.Integrate(pos, vel, rot, act, &phen.Phenotype, w.cfg.Physics,
			w.cfg.Derived.WorldW32, w.cfg.Derived.WorldH32, dt)

		// Grazing is automatic for awake organisms near food
		if awake {
			if site, ok := w.food.NearestWithin(pos.X, pos.Y, eatRadius); ok {
				gained := w.food.Consume(site, eatRate*dt)
				en.Value += gained
				if en.Value > en.Max {
					en.Value = en.Max
				}
				w.collector.RecordFeed(float64(gained))
			}
		}

		if life.State != components.StateActive {
			continue
		}

		// Mating intent. The partner gate runs against the frozen bodies;
		// resolution re-validates against live state before any energy moves.
		if act.Mate > float32(w.cfg.Reproduction.IntentGate) &&
			life.MateCooldown <= 0 && !org.IsChild &&
			en.Value >= phen.Fertility*en.Max {
			if sexual {
				if mi := w.senses[i].MateIdx; mi >= 0 {
					p := &w.bodies[mi]
					dx, dy := systems.ToroidalDelta(b.X, b.Y, p.X, p.Y,
						w.cfg.Derived.WorldW32, w.cfg.Derived.WorldH32)
					r := float32(w.cfg.Reproduction.MatingRadius)
					if dx*dx+dy*dy <= r*r && p.Energy >= p.Fertility*p.MaxEnergy {
						w.mateQueue = append(w.mateQueue, matingEvent{A: b.ID, B: p.ID})
					}
				}
			} else {
				w.mateQueue = append(w.mateQueue, matingEvent{A: b.ID})
			}
		}

		// Home building
		if w.cfg.Homes.Enabled && org.HomeID < 0 && !org.IsChild &&
			act.Build > float32(w.cfg.Homes.IntentGate) &&
			en.Value > float32(w.cfg.Homes.BuildCost)*2 {
			w.nextHomeID++
			w.homes[w.nextHomeID] = Home{ID: w.nextHomeID, X: pos.X, Y: pos.Y, Owner: b.ID}
			org.HomeID = w.nextHomeID
			en.Value -= float32(w.cfg.Homes.BuildCost)
		}

		// Sleep decision: policy intent, or the combined pressure/circadian
		// drive crossing the threshold
		nw := w.cfg.Sleep.NightWeight
		drive := (1-nw)*float64(life.SleepPressure) + nw*(1-w.environment.DayNightFactor())
		if act.Sleep > float32(w.cfg.Sleep.IntentGate) || drive > w.cfg.Sleep.Threshold || life.SleepPressure >= 1 {
			life.State = components.StateSleeping
			life.SleepTimer = 0
		}
	}
}
