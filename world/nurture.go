package world

import (
	"github.com/tetch/pond/components"
	"github.com/tetch/pond/systems"
)

// updateNurture transfers energy from caregivers to their dependent
// children, and drains orphans with no live caregiver in range. Runs
// serially in id order.
func (w *World) updateNurture(dt float32) {
	radius := float32(w.cfg.Homes.Radius)
	share := float32(w.cfg.Nurture.FeedShare)

	for i := range w.bodies {
		entity := w.entities[i]
		org := w.orgMap.Get(entity)
		if !org.IsChild {
			continue
		}
		life := w.lifeMap.Get(entity)
		if life.State == components.StateDead {
			continue
		}
		pos := w.posMap.Get(entity)
		en := w.energyMap.Get(entity)

		caredFor := false
		for _, pid := range [2]uint32{org.ParentA, org.ParentB} {
			if pid == 0 {
				continue
			}
			pe, ok := w.byID[pid]
			if !ok {
				continue
			}
			if w.lifeMap.Get(pe).State == components.StateDead {
				continue
			}
			ppos := w.posMap.Get(pe)
			dx, dy := systems.ToroidalDelta(pos.X, pos.Y, ppos.X, ppos.Y,
				w.cfg.Derived.WorldW32, w.cfg.Derived.WorldH32)
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			caredFor = true

			// Caregivers with surplus share a fraction of it
			pen := w.energyMap.Get(pe)
			if pen.Value <= en.Value {
				continue
			}
			amount := pen.Value * share * dt
			// Never move more than half the gap in one step, so a scaled-up
			// dt cannot flip the surplus direction.
			if gap := (pen.Value - en.Value) / 2; amount > gap {
				amount = gap
			}
			if room := en.Max - en.Value; amount > room {
				amount = room
			}
			if amount <= 0 {
				continue
			}
			pen.Value -= amount
			en.Value += amount
			w.collector.RecordNurture(float64(amount))
		}

		if !caredFor {
			en.Value -= float32(w.cfg.Nurture.OrphanDrain) * dt
			if en.Value < 0 {
				en.Value = 0
			}
		}
	}
}
