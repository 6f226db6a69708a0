package world

import (
	"math"

	"github.com/tetch/pond/components"
	"github.com/tetch/pond/systems"
)

// updateLifecycles runs the sleep/dream machine, gestation countdowns,
// aging, metabolism and death marking for every organism, in id order. It
// also pairs each awake decision with its reward once the tick's energy
// delta is known.
func (w *World) updateLifecycles(dt float32) {
	e := w.cfg.Energy
	s := w.cfg.Sleep

	for i := range w.bodies {
		b := &w.bodies[i]
		entity := w.entities[i]
		life := w.lifeMap.Get(entity)
		en := w.energyMap.Get(entity)
		phen := w.phenMap.Get(entity)
		org := w.orgMap.Get(entity)
		pos := w.posMap.Get(entity)
		policy := w.policies[org.ID]

		en.Age += dt
		if life.MateCooldown > 0 {
			life.MateCooldown -= dt
		}
		if org.IsChild && en.Age >= float32(w.cfg.Nurture.DependencyAge) {
			org.IsChild = false
		}

		var drain float32
		switch life.State {
		case components.StateActive:
			life.SleepPressure = systems.Clamp01(life.SleepPressure + float32(s.PressureRate)*dt)
			drain = (float32(e.MetabolismBase) + float32(e.MetabolismSpeedCoef)*b.Speed +
				float32(e.MetabolismBrainCoef)) * phen.Metabolism * dt

		case components.StateSleeping:
			life.SleepPressure = clampLow(life.SleepPressure-float32(s.RecoveryRate)*dt, 0)
			life.SleepTimer += dt
			en.Value += float32(e.SleepRegen) * w.homeBonus(org, pos) * dt
			drain = float32(e.MetabolismBase) * phen.Metabolism * float32(e.SleepFactor) * dt

			if life.SleepTimer >= float32(s.MinSleep) {
				if policy != nil && policy.MemoryLen() > 0 {
					life.State = components.StateDreaming
					life.DreamTimer = float32(s.DreamMin + w.rng.Float64()*(s.DreamMax-s.DreamMin))
				} else if life.SleepPressure <= 0 {
					life.State = components.StateActive
				}
			}

		case components.StateDreaming:
			life.SleepPressure = clampLow(life.SleepPressure-float32(s.RecoveryRate)*dt, 0)
			life.DreamTimer -= dt
			en.Value += float32(e.SleepRegen) * w.homeBonus(org, pos) * dt
			drain = float32(e.MetabolismBase) * phen.Metabolism * float32(e.SleepFactor) * dt

			if policy != nil {
				n := int(float64(w.cfg.Policy.DreamSteps) * float64(dt))
				if n < 1 {
					n = 1
				}
				policy.DreamUpdate(n, w.devScale(en.Age))
			}
			if life.DreamTimer <= 0 || policy == nil || policy.MemoryLen() == 0 {
				life.State = components.StateActive
			}

		case components.StateGestating:
			life.SleepPressure = systems.Clamp01(life.SleepPressure + float32(s.PressureRate)*dt)
			drain = float32(e.MetabolismBase) * phen.Metabolism * dt
			life.GestationTimer -= dt
			if life.GestationTimer <= 0 {
				w.deliver(org, pos)
				life.State = components.StateActive
			}
		}

		// Senescence ramps the drain past the configured age
		if over := en.Age - float32(e.SenescenceAge); over > 0 {
			drain += float32(e.SenescenceDrain) * over * dt
		}

		en.Value -= drain
		if en.Value > en.Max {
			en.Value = en.Max
		}
		if en.Value <= 0 || en.Age >= float32(e.MaxAge) {
			en.Value = 0
			life.State = components.StateDead
		}

		// Reward for the decision made this tick: the tick's energy delta
		if b.State == components.StateActive && policy != nil {
			policy.Record(en.Value - b.Energy)
		}
	}
}

// deliver turns a completed gestation into a pending birth next to the
// mother. A missing gestation record is an anomaly: counted and discarded.
func (w *World) deliver(mother *components.Organism, pos *components.Position) {
	g, ok := w.gestations[mother.ID]
	if !ok {
		w.collector.RecordDiscard()
		return
	}
	delete(w.gestations, mother.ID)

	off := float32(w.cfg.Reproduction.SpawnOffset)
	w.births = append(w.births, birth{
		Genome:     g.Genome,
		X:          pos.X + (w.rng.Float32()*2-1)*off,
		Y:          pos.Y + (w.rng.Float32()*2-1)*off,
		Heading:    w.rng.Float32() * 2 * math.Pi,
		Energy:     g.Energy,
		Generation: g.Generation,
		ParentA:    mother.ID,
		ParentB:    g.Father,
	})
}

// devScale is the developmental learning factor: large for the young,
// decaying toward a floor with age.
func (w *World) devScale(age float32) float32 {
	minS := float32(w.cfg.Policy.DevLearningMin)
	half := float32(w.cfg.Policy.DevAgeHalf)
	if half <= 0 {
		return 1
	}
	return minS + (1-minS)/(1+age/half)
}

// homeBonus returns the sleep regeneration multiplier: boosted when the
// organism rests inside its own home's radius.
func (w *World) homeBonus(org *components.Organism, pos *components.Position) float32 {
	if org.HomeID < 0 {
		return 1
	}
	home, ok := w.homes[org.HomeID]
	if !ok {
		return 1
	}
	dx, dy := systems.ToroidalDelta(pos.X, pos.Y, home.X, home.Y,
		w.cfg.Derived.WorldW32, w.cfg.Derived.WorldH32)
	r := float32(w.cfg.Homes.Radius)
	if dx*dx+dy*dy <= r*r {
		return float32(w.cfg.Energy.HomeRegenBonus)
	}
	return 1
}

func clampLow(v, lo float32) float32 {
	if v < lo {
		return lo
	}
	return v
}
