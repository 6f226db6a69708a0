package world

import (
	"sort"

	"github.com/tetch/pond/telemetry"
)

// publishSnapshot builds the tick's read-only snapshot. Collaborators
// (logging, persistence, any viewer) consume this and never touch live
// state.
func (w *World) publishSnapshot() {
	snap := telemetry.Snapshot{
		Env: telemetry.EnvironmentSummary{
			Tick:          w.tick,
			Time:          w.environment.Time(),
			DayPhase:      w.environment.DayPhase(),
			YearPhase:     w.environment.YearPhase(),
			DayNight:      w.environment.DayNightFactor(),
			TempEquator:   w.environment.TemperatureAt(w.cfg.World.Height / 2),
			Precipitation: w.environment.Precipitation(),
		},
		Organisms: make([]telemetry.OrganismState, 0, len(w.byID)),
		FoodSites: make([]telemetry.FoodSiteState, 0, len(w.food.Sites())),
		Births:    w.tickBirths,
		Deaths:    w.tickDeaths,
	}

	query := w.entityFilter.Query()
	for query.Next() {
		pos, _, rot, en, phen, life, org := query.Get()
		snap.Organisms = append(snap.Organisms, telemetry.OrganismState{
			ID:              org.ID,
			X:               pos.X,
			Y:               pos.Y,
			Heading:         rot.Angle,
			Energy:          en.Value,
			MaxEnergy:       en.Max,
			Age:             en.Age,
			State:           life.State.String(),
			Sex:             uint8(org.Sex),
			Generation:      org.Generation,
			IsChild:         org.IsChild,
			VisionRange:     phen.VisionRange,
			VisionHalfAngle: phen.VisionHalfAngle,
			HomeID:          org.HomeID,
		})
		if org.Generation > snap.MaxGeneration {
			snap.MaxGeneration = org.Generation
		}
	}
	sort.Slice(snap.Organisms, func(i, j int) bool { return snap.Organisms[i].ID < snap.Organisms[j].ID })

	for _, s := range w.food.Sites() {
		snap.FoodSites = append(snap.FoodSites, telemetry.FoodSiteState{
			X: s.X, Y: s.Y, Quantity: s.Quantity, Capacity: s.Capacity,
		})
	}

	w.latest = snap
}
