package world

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/tetch/pond/components"
)

// removeDead removes organisms marked Dead this tick: their policies and id
// registrations go with them, and any home they owned passes to the oldest
// live dependent or is abandoned. Collection completes before any removal
// so no query iterates a changing world.
func (w *World) removeDead() {
	type deadInfo struct {
		entity ecs.Entity
		id     uint32
		homeID int32
	}
	var toRemove []deadInfo

	for i := range w.bodies {
		entity := w.entities[i]
		life := w.lifeMap.Get(entity)
		if life.State != components.StateDead {
			continue
		}
		org := w.orgMap.Get(entity)
		toRemove = append(toRemove, deadInfo{entity: entity, id: org.ID, homeID: org.HomeID})
	}

	// Homes pass first: passHome scans the full entity list, so no entity
	// may be removed until every dead owner has been handled.
	for _, dead := range toRemove {
		w.passHome(dead.id, dead.homeID)
	}

	for _, dead := range toRemove {
		delete(w.gestations, dead.id)
		w.entityMapper.Remove(dead.entity)
		delete(w.byID, dead.id)
		delete(w.policies, dead.id)
		w.tickDeaths++
		w.collector.RecordDeath()
	}
}

// passHome reassigns a dead owner's home to their oldest live dependent, or
// deletes it when no dependent survives. Dependents are scanned through the
// id-sorted body list so the choice is deterministic.
func (w *World) passHome(ownerID uint32, homeID int32) {
	if homeID < 0 {
		return
	}
	home, ok := w.homes[homeID]
	if !ok || home.Owner != ownerID {
		return
	}

	var heir uint32
	var heirAge float32 = -1
	for i := range w.bodies {
		entity := w.entities[i]
		org := w.orgMap.Get(entity)
		if !org.IsChild || (org.ParentA != ownerID && org.ParentB != ownerID) {
			continue
		}
		if w.lifeMap.Get(entity).State == components.StateDead {
			continue
		}
		if age := w.energyMap.Get(entity).Age; age > heirAge {
			heirAge = age
			heir = org.ID
		}
	}

	if heir == 0 {
		delete(w.homes, homeID)
		return
	}
	home.Owner = heir
	w.homes[homeID] = home
	w.orgMap.Get(w.byID[heir]).HomeID = homeID
}
