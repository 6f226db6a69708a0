package systems

import (
	"math"

	"github.com/tetch/pond/brain"
	"github.com/tetch/pond/components"
	"github.com/tetch/pond/config"
	"github.com/tetch/pond/genetics"
)

// Integrate advances one organism's motion by dt seconds: turn torque and
// thrust from the action, drag, a phenotype speed clamp, and toroidal
// position wrap. Sleeping organisms pass a zero action and just coast to a
// stop under drag.
func Integrate(pos *components.Position, vel *components.Velocity, rot *components.Rotation,
	act brain.Action, phen *genetics.Phenotype, p config.PhysicsConfig, w, h, dt float32) {

	// Turn
	rot.AngularVel += clampFloat(act.Turn, -1, 1) * float32(p.MaxTurnTorque) * dt
	rot.AngularVel *= dragFactor(float32(p.AngularDrag), dt)
	rot.Angle = normalizeHeading(rot.Angle + rot.AngularVel*dt)

	// Thrust along heading
	thrust := Clamp01(act.Thrust) * float32(p.BaseThrust)
	vel.X += float32(math.Cos(float64(rot.Angle))) * thrust * dt
	vel.Y += float32(math.Sin(float64(rot.Angle))) * thrust * dt

	// Drag, then clamp to the phenotype's top speed
	f := dragFactor(float32(p.LinearDrag), dt)
	vel.X *= f
	vel.Y *= f
	speed := velocityMagnitude(vel.X, vel.Y)
	if speed > phen.MaxSpeed && speed > 0 {
		scale := phen.MaxSpeed / speed
		vel.X *= scale
		vel.Y *= scale
	}

	// Integrate and wrap onto the torus
	pos.X = Wrap(pos.X+vel.X*dt, w)
	pos.Y = Wrap(pos.Y+vel.Y*dt, h)
}

// dragFactor converts a per-second drag coefficient into a per-step velocity
// multiplier, floored at zero so huge dt never reverses motion.
func dragFactor(drag, dt float32) float32 {
	f := 1 - drag*dt
	if f < 0 {
		return 0
	}
	return f
}
