package systems

import (
	"math"
	"testing"

	"github.com/tetch/pond/brain"
	"github.com/tetch/pond/components"
	"github.com/tetch/pond/config"
	"github.com/tetch/pond/genetics"
)

func testPhysics() config.PhysicsConfig {
	return config.PhysicsConfig{
		DT:            0.05,
		GridCellSize:  32,
		BaseThrust:    100,
		LinearDrag:    2,
		AngularDrag:   4,
		MaxTurnTorque: 10,
	}
}

func TestIntegrateThrustMovesAlongHeading(t *testing.T) {
	pos := components.Position{X: 50, Y: 50}
	vel := components.Velocity{}
	rot := components.Rotation{Angle: 0}
	phen := genetics.Phenotype{MaxSpeed: 100}

	Integrate(&pos, &vel, &rot, brain.Action{Thrust: 1}, &phen, testPhysics(), 400, 400, 0.05)

	if vel.X <= 0 {
		t.Errorf("vel.X = %v, want positive (heading +X)", vel.X)
	}
	if math.Abs(float64(vel.Y)) > 1e-5 {
		t.Errorf("vel.Y = %v, want ~0", vel.Y)
	}
	if pos.X <= 50 {
		t.Errorf("pos.X = %v, did not advance", pos.X)
	}
}

func TestIntegrateSpeedClamped(t *testing.T) {
	pos := components.Position{X: 50, Y: 50}
	vel := components.Velocity{}
	rot := components.Rotation{}
	phen := genetics.Phenotype{MaxSpeed: 20}

	for i := 0; i < 1000; i++ {
		Integrate(&pos, &vel, &rot, brain.Action{Thrust: 1}, &phen, testPhysics(), 400, 400, 0.05)
	}

	speed := math.Sqrt(float64(vel.X*vel.X + vel.Y*vel.Y))
	if speed > 20.001 {
		t.Errorf("speed = %v, exceeds phenotype max 20", speed)
	}
}

func TestIntegrateWrapsPosition(t *testing.T) {
	pos := components.Position{X: 399, Y: 1}
	vel := components.Velocity{X: 40, Y: -40}
	rot := components.Rotation{}
	phen := genetics.Phenotype{MaxSpeed: 100}
	p := testPhysics()
	p.LinearDrag = 0

	Integrate(&pos, &vel, &rot, brain.Action{}, &phen, p, 400, 400, 0.1)

	if pos.X < 0 || pos.X >= 400 || pos.Y < 0 || pos.Y >= 400 {
		t.Errorf("position (%v, %v) left the torus", pos.X, pos.Y)
	}
	if pos.X > 100 {
		t.Errorf("pos.X = %v, expected wrap past the right edge", pos.X)
	}
	if pos.Y < 300 {
		t.Errorf("pos.Y = %v, expected wrap past the top edge", pos.Y)
	}
}

func TestIntegrateDragStopsCoasting(t *testing.T) {
	pos := components.Position{X: 50, Y: 50}
	vel := components.Velocity{X: 30}
	rot := components.Rotation{AngularVel: 5}
	phen := genetics.Phenotype{MaxSpeed: 100}

	for i := 0; i < 2000; i++ {
		Integrate(&pos, &vel, &rot, brain.Action{}, &phen, testPhysics(), 400, 400, 0.05)
	}

	if math.Abs(float64(vel.X)) > 0.01 {
		t.Errorf("vel.X = %v after long coast, want ~0", vel.X)
	}
	if math.Abs(float64(rot.AngularVel)) > 0.01 {
		t.Errorf("AngularVel = %v after long coast, want ~0", rot.AngularVel)
	}
}

func TestIntegrateTurn(t *testing.T) {
	pos := components.Position{X: 50, Y: 50}
	vel := components.Velocity{}
	rot := components.Rotation{Angle: 0}
	phen := genetics.Phenotype{MaxSpeed: 100}

	Integrate(&pos, &vel, &rot, brain.Action{Turn: 1}, &phen, testPhysics(), 400, 400, 0.05)

	if rot.Angle <= 0 {
		t.Errorf("Angle = %v, want positive after left turn", rot.Angle)
	}
	if rot.Angle >= 2*math.Pi {
		t.Errorf("Angle = %v, not normalized", rot.Angle)
	}
}
