package brain

import (
	"math"
	"testing"
)

var testParams = Params{MemorySize: 8, LearningRate: 0.05, LearningDecay: 0.001}

func testInputs() []float32 {
	in := make([]float32, NumInputs)
	for i := range in {
		in[i] = float32(i%3) * 0.3
	}
	return in
}

func TestNewRecurrentDeterministic(t *testing.T) {
	a := NewRecurrent(42, testParams)
	b := NewRecurrent(42, testParams)

	if a.Win != b.Win || a.Wrec != b.Wrec || a.Wout != b.Wout {
		t.Error("identical seeds produced different weights")
	}

	c := NewRecurrent(43, testParams)
	if a.Win == c.Win {
		t.Error("different seeds produced identical input weights")
	}
}

func TestDecideOutputRanges(t *testing.T) {
	p := NewRecurrent(1, testParams)
	in := testInputs()

	for i := 0; i < 50; i++ {
		act := p.Decide(in)
		if act.Turn < -1 || act.Turn > 1 {
			t.Fatalf("turn = %v, outside [-1,1]", act.Turn)
		}
		for name, v := range map[string]float32{
			"thrust": act.Thrust, "mate": act.Mate, "sleep": act.Sleep, "build": act.Build,
		} {
			if v < 0 || v > 1 {
				t.Fatalf("%s = %v, outside [0,1]", name, v)
			}
		}
	}
}

func TestRecordRequiresDecide(t *testing.T) {
	p := NewRecurrent(2, testParams)

	p.Record(0.5)
	if p.MemoryLen() != 0 {
		t.Errorf("MemoryLen = %d after Record without Decide, want 0", p.MemoryLen())
	}

	p.Decide(testInputs())
	p.Record(0.5)
	if p.MemoryLen() != 1 {
		t.Errorf("MemoryLen = %d, want 1", p.MemoryLen())
	}
}

func TestMemoryCapacityOverwrites(t *testing.T) {
	p := NewRecurrent(3, testParams)
	in := testInputs()

	for i := 0; i < testParams.MemorySize*2; i++ {
		p.Decide(in)
		p.Record(0.1)
	}
	if p.MemoryLen() != testParams.MemorySize {
		t.Errorf("MemoryLen = %d, want capacity %d", p.MemoryLen(), testParams.MemorySize)
	}
}

func TestDreamUpdateConsumesMemory(t *testing.T) {
	p := NewRecurrent(4, testParams)
	in := testInputs()
	for i := 0; i < 5; i++ {
		p.Decide(in)
		p.Record(0.8)
	}

	before := p.Wrec
	applied := p.DreamUpdate(3, 1.0)

	if applied != 3 {
		t.Errorf("applied = %d, want 3", applied)
	}
	if p.MemoryLen() != 2 {
		t.Errorf("MemoryLen = %d after consuming 3 of 5, want 2", p.MemoryLen())
	}
	if p.Wrec == before {
		t.Error("recurrent weights unchanged after dream updates with nonzero reward")
	}

	// Draining the rest stops at the memory boundary
	applied = p.DreamUpdate(10, 1.0)
	if applied != 2 {
		t.Errorf("applied = %d, want 2", applied)
	}
	if p.MemoryLen() != 0 {
		t.Errorf("MemoryLen = %d, want 0", p.MemoryLen())
	}
}

func TestDreamUpdateSkipsNonFinite(t *testing.T) {
	p := NewRecurrent(5, testParams)
	in := testInputs()
	p.Decide(in)
	p.Record(1.0)

	// Poison a weight so the replayed hidden state goes NaN
	p.Win[0][0] = float32(math.NaN())
	before := p.Wrec

	applied := p.DreamUpdate(1, 1.0)
	if applied != 0 {
		t.Errorf("applied = %d for non-finite replay, want 0", applied)
	}
	if p.MemoryLen() != 0 {
		t.Error("skipped experience should still be consumed")
	}
	if p.Wrec != before {
		t.Error("weights changed despite skipped update")
	}
}

func TestRecordClampsReward(t *testing.T) {
	p := NewRecurrent(6, testParams)
	p.Decide(testInputs())
	p.Record(25.0)

	exp, ok := p.mem.pop()
	if !ok {
		t.Fatal("expected a stored experience")
	}
	if exp.Reward != 1 {
		t.Errorf("reward = %v, want clamped to 1", exp.Reward)
	}
}

func TestInheritBlend(t *testing.T) {
	a := NewRecurrent(10, testParams)
	b := NewRecurrent(11, testParams)

	// w=1: pure parent average, fresh component vanishes
	child := Inherit(a, b, 1.0, 99, testParams)
	want := (a.Win[0][0] + b.Win[0][0]) * 0.5
	if math.Abs(float64(child.Win[0][0]-want)) > 1e-6 {
		t.Errorf("w=1 blend = %v, want parent average %v", child.Win[0][0], want)
	}

	// w=0: pure fresh, a function of the seed only
	child0 := Inherit(a, b, 0.0, 99, testParams)
	fresh := NewRecurrent(99, testParams)
	if child0.Win != fresh.Win {
		t.Error("w=0 child should equal a fresh network from the same seed")
	}
}

func TestInheritNonRecurrentParents(t *testing.T) {
	a := NewRecurrent(12, testParams)
	child := Inherit(a, stubPolicy{}, 0.9, 77, testParams)
	fresh := NewRecurrent(77, testParams)
	if child.Win != fresh.Win {
		t.Error("non-Recurrent parent should yield an entirely fresh child")
	}
}

type stubPolicy struct{}

func (stubPolicy) Decide([]float32) Action       { return Action{} }
func (stubPolicy) Record(float32)                {}
func (stubPolicy) DreamUpdate(int, float32) int  { return 0 }
func (stubPolicy) MemoryLen() int                { return 0 }
