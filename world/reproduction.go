package world

import (
	"sort"

	"github.com/tetch/pond/components"
	"github.com/tetch/pond/genetics"
	"github.com/tetch/pond/systems"
)

// resolveReproduction settles the tick's queued mating events. Events are
// honored in organism-id-ascending order and each organism may appear in at
// most one resolved event per tick; later claims on a busy partner are
// discarded. Every event is re-validated against live state before any
// energy moves, since earlier events in the same tick may have changed it.
func (w *World) resolveReproduction() {
	if len(w.mateQueue) == 0 {
		return
	}

	sort.Slice(w.mateQueue, func(i, j int) bool {
		a, b := w.mateQueue[i], w.mateQueue[j]
		if a.A != b.A {
			return a.A < b.A
		}
		return a.B < b.B
	})

	claimed := make(map[uint32]bool, len(w.mateQueue)*2)
	for _, ev := range w.mateQueue {
		if claimed[ev.A] || (ev.B != 0 && claimed[ev.B]) {
			w.collector.RecordDiscard()
			continue
		}
		var ok bool
		if ev.B == 0 {
			ok = w.resolveAsexual(ev.A)
		} else {
			ok = w.resolveSexual(ev.A, ev.B)
		}
		if ok {
			claimed[ev.A] = true
			if ev.B != 0 {
				claimed[ev.B] = true
			}
		} else {
			w.collector.RecordDiscard()
		}
	}
}

// resolveSexual validates a pair and, if still eligible, fixes the child
// genome, deducts both parents' contributions, and starts the mother's
// gestation (zero gestation delivers immediately).
func (w *World) resolveSexual(aID, bID uint32) bool {
	ea, okA := w.byID[aID]
	eb, okB := w.byID[bID]
	if !okA || !okB {
		return false
	}
	lifeA := w.lifeMap.Get(ea)
	lifeB := w.lifeMap.Get(eb)
	if lifeA.State != components.StateActive || lifeB.State != components.StateActive {
		return false
	}
	if lifeA.MateCooldown > 0 || lifeB.MateCooldown > 0 {
		return false
	}
	orgA := w.orgMap.Get(ea)
	orgB := w.orgMap.Get(eb)
	if orgA.IsChild || orgB.IsChild || orgA.Sex == orgB.Sex {
		return false
	}
	enA := w.energyMap.Get(ea)
	enB := w.energyMap.Get(eb)
	phenA := w.phenMap.Get(ea)
	phenB := w.phenMap.Get(eb)
	if enA.Value < phenA.Fertility*enA.Max || enB.Value < phenB.Fertility*enB.Max {
		return false
	}
	posA := w.posMap.Get(ea)
	posB := w.posMap.Get(eb)
	dx, dy := systems.ToroidalDelta(posA.X, posA.Y, posB.X, posB.Y,
		w.cfg.Derived.WorldW32, w.cfg.Derived.WorldH32)
	r := float32(w.cfg.Reproduction.MatingRadius)
	if dx*dx+dy*dy > r*r {
		return false
	}

	// Both parents pay; the child's endowment comes out of the pooled
	// contribution
	keep := float32(w.cfg.Reproduction.ParentKeep)
	take := float32(w.cfg.Reproduction.ChildTake)
	contrib := enA.Value*(1-keep) + enB.Value*(1-keep)
	enA.Value *= keep
	enB.Value *= keep
	childEnergy := contrib * take
	if childEnergy > float32(w.cfg.Energy.Max) {
		childEnergy = float32(w.cfg.Energy.Max)
	}

	childGenome := genetics.Crossover(orgA.Genome, orgB.Genome, w.rng).
		Mutate(w.cfg.Mutation.Rate, w.cfg.Mutation.Magnitude, w.rng)

	gen := orgA.Generation
	if orgB.Generation > gen {
		gen = orgB.Generation
	}
	gen++

	cooldown := float32(w.cfg.Reproduction.Cooldown)
	lifeA.MateCooldown = cooldown
	lifeB.MateCooldown = cooldown

	// The female carries the child
	mother, father := orgA, orgB
	motherLife := lifeA
	if orgA.Sex == components.SexMale {
		mother, father = orgB, orgA
		motherLife = lifeB
	}
	w.gestations[mother.ID] = gestation{
		Genome:     childGenome,
		Father:     father.ID,
		Energy:     childEnergy,
		Generation: gen,
	}
	if w.cfg.Reproduction.Gestation > 0 {
		motherLife.State = components.StateGestating
		motherLife.GestationTimer = float32(w.cfg.Reproduction.Gestation)
	} else {
		motherEntity := w.byID[mother.ID]
		w.deliver(mother, w.posMap.Get(motherEntity))
	}
	w.collector.RecordMating()
	return true
}

// resolveAsexual validates a lone parent and buds off a mutated clone
// immediately.
func (w *World) resolveAsexual(id uint32) bool {
	e, ok := w.byID[id]
	if !ok {
		return false
	}
	life := w.lifeMap.Get(e)
	if life.State != components.StateActive || life.MateCooldown > 0 {
		return false
	}
	org := w.orgMap.Get(e)
	if org.IsChild {
		return false
	}
	en := w.energyMap.Get(e)
	phen := w.phenMap.Get(e)
	if en.Value < phen.Fertility*en.Max {
		return false
	}

	keep := float32(w.cfg.Reproduction.ParentKeep)
	take := float32(w.cfg.Reproduction.ChildTake)
	contrib := en.Value * (1 - keep)
	en.Value *= keep
	childEnergy := contrib * take

	childGenome := org.Genome.Mutate(w.cfg.Mutation.Rate, w.cfg.Mutation.Magnitude, w.rng)
	life.MateCooldown = float32(w.cfg.Reproduction.Cooldown)

	pos := w.posMap.Get(e)
	off := float32(w.cfg.Reproduction.SpawnOffset)
	rot := w.rotMap.Get(e)
	w.births = append(w.births, birth{
		Genome:     childGenome,
		X:          pos.X + (w.rng.Float32()*2-1)*off,
		Y:          pos.Y + (w.rng.Float32()*2-1)*off,
		Heading:    rot.Angle + (w.rng.Float32()*2-1)*float32(w.cfg.Reproduction.HeadingJitter),
		Energy:     childEnergy,
		Generation: org.Generation + 1,
		ParentA:    org.ID,
	})
	w.collector.RecordMating()
	return true
}

// applyBirths registers all pending children. Runs after reproduction
// resolution so ECS structure never changes mid-phase.
func (w *World) applyBirths() {
	for _, b := range w.births {
		polA := w.policies[b.ParentA]
		polB := w.policies[b.ParentB]
		// A budded child, or one whose other parent died during gestation,
		// inherits from the surviving parent alone
		if polB == nil {
			polB = polA
		}
		if polA == nil {
			polA = polB
		}
		w.spawnOrganism(b.Genome, b.X, b.Y, b.Heading, b.Energy,
			b.Generation, b.ParentA, b.ParentB, polA, polB)
		w.tickBirths++
		w.collector.RecordBirth()
	}
	w.births = w.births[:0]
}
