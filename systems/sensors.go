package systems

import (
	"math"

	"github.com/tetch/pond/brain"
	"github.com/tetch/pond/components"
	"github.com/tetch/pond/env"
)

// Senses is the outcome of one organism's sense phase: the input vector for
// the policy plus the resolved nearest-mate and nearest-threat references
// the act phase reuses. Missing targets are index -1, never an error.
type Senses struct {
	Inputs    [brain.NumInputs]float32
	MateIdx   int32 // body index of the nearest eligible mate, -1 = none
	ThreatIdx int32 // body index of the nearest threat, -1 = none
	FoodGX    float32
	FoodGY    float32
}

// Input vector layout. The first brain.NumRays entries are field-of-view
// proximity rays; scalar channels follow.
const (
	inEnergy = brain.NumRays + iota
	inSleepPressure
	inDayNight
	inSeason
	inTemperature
	inFoodDirX
	inFoodDirY
	inMate
	inThreat
	inSpeed
	inBias
)

// Sense builds the sensation vector for one body from the frozen tick
// snapshot. It reads only bodies, the grid-derived neighbor list, and the
// environment, so it is safe to call concurrently for different bodies.
func Sense(self *Body, bodies []Body, neighbors []Neighbor, food *env.FoodField,
	e *env.Environment, sexual bool, threatFactor float32) Senses {

	s := Senses{MateIdx: -1, ThreatIdx: -1}

	mateD2 := float32(math.MaxFloat32)
	threatD2 := float32(math.MaxFloat32)
	vr := self.VisionRange

	for _, n := range neighbors {
		o := &bodies[n.Idx]
		if o.State == components.StateDead {
			continue
		}

		// Field-of-view rays: proximity of the nearest body per ray sector
		rel := NormalizeAngle(float32(math.Atan2(float64(n.DY), float64(n.DX))) - self.Heading)
		if rel >= -self.VisionHalfAngle && rel <= self.VisionHalfAngle {
			span := 2 * self.VisionHalfAngle
			ray := int((rel + self.VisionHalfAngle) / span * brain.NumRays)
			if ray >= brain.NumRays {
				ray = brain.NumRays - 1
			}
			prox := 1 - float32(math.Sqrt(float64(n.DistSq)))/vr
			if prox > s.Inputs[ray] {
				s.Inputs[ray] = prox
			}
		}

		if o.IsChild || kin(self, o) {
			continue
		}

		if eligibleMate(self, o, sexual) {
			if n.DistSq < mateD2 {
				mateD2 = n.DistSq
				s.MateIdx = n.Idx
			}
			continue
		}

		if o.Energy > self.Energy*threatFactor && n.DistSq < threatD2 {
			threatD2 = n.DistSq
			s.ThreatIdx = n.Idx
		}
	}

	s.FoodGX, s.FoodGY = food.GradientAt(self.X, self.Y, vr)

	// Scalar channels
	s.Inputs[inEnergy] = self.Energy / self.MaxEnergy
	s.Inputs[inSleepPressure] = Clamp01(self.SleepPressure)
	s.Inputs[inDayNight] = float32(e.DayNightFactor())
	s.Inputs[inSeason] = float32(e.YearPhase())
	s.Inputs[inTemperature] = clampFloat(float32(e.TemperatureAt(float64(self.Y)))/40, -1, 1)

	if gm := velocityMagnitude(s.FoodGX, s.FoodGY); gm > 1e-6 {
		rel := NormalizeAngle(float32(math.Atan2(float64(s.FoodGY), float64(s.FoodGX))) - self.Heading)
		s.Inputs[inFoodDirX] = float32(math.Cos(float64(rel)))
		s.Inputs[inFoodDirY] = float32(math.Sin(float64(rel)))
	}
	if s.MateIdx >= 0 {
		s.Inputs[inMate] = 1 - float32(math.Sqrt(float64(mateD2)))/vr
	}
	if s.ThreatIdx >= 0 {
		s.Inputs[inThreat] = 1 - float32(math.Sqrt(float64(threatD2)))/vr
	}
	if self.MaxSpeed > 0 {
		s.Inputs[inSpeed] = Clamp01(self.Speed / self.MaxSpeed)
	}
	s.Inputs[inBias] = 1

	return s
}

// ReflexSteer returns a turn signal in [-1, 1] toward the food gradient,
// blended into the policy's turn output by the act phase. A negligible
// gradient steers nowhere.
func ReflexSteer(self *Body, gx, gy float32) float32 {
	if velocityMagnitude(gx, gy) < 1e-6 {
		return 0
	}
	rel := NormalizeAngle(float32(math.Atan2(float64(gy), float64(gx))) - self.Heading)
	return clampFloat(rel/math.Pi, -1, 1)
}

// eligibleMate reports whether o could mate with self: an awake, non-kin
// adult, of opposite sex when reproduction is sexual.
func eligibleMate(self, o *Body, sexual bool) bool {
	if o.IsChild || kin(self, o) {
		return false
	}
	if o.State != components.StateActive {
		return false
	}
	if sexual && o.Sex == self.Sex {
		return false
	}
	return true
}

// kin reports a direct parent/child relation in either direction.
func kin(a, b *Body) bool {
	return a.ParentA == b.ID || a.ParentB == b.ID || b.ParentA == a.ID || b.ParentB == a.ID
}
