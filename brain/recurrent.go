package brain

import (
	"math"
	"math/rand"
)

// Recurrent is the default Policy: a single recurrent hidden layer with
// reward-modulated Hebbian plasticity on the recurrent weights, applied
// during dream replay.
type Recurrent struct {
	Win  [NumHidden][NumInputs]float32 // input -> hidden weights
	Wrec [NumHidden][NumHidden]float32 // hidden -> hidden weights (plastic)
	B1   [NumHidden]float32            // hidden biases
	Wout [NumOutputs][NumHidden]float32
	B2   [NumOutputs]float32

	h [NumHidden]float32 // recurrent state, carried across ticks

	lastIn  [NumInputs]float32
	lastPre [NumHidden]float32
	hasLast bool

	mem    ring
	params Params
}

// NewRecurrent creates a policy with Xavier-initialized weights drawn from a
// generator seeded by seed, so the same seed always produces the same
// starting weights.
func NewRecurrent(seed int64, params Params) *Recurrent {
	rng := rand.New(rand.NewSource(seed))
	p := &Recurrent{
		mem:    newRing(params.MemorySize),
		params: params,
	}
	scaleIn := float32(math.Sqrt(2.0 / float64(NumInputs)))
	scaleRec := float32(math.Sqrt(1.0 / float64(NumHidden)))
	scaleOut := float32(math.Sqrt(2.0 / float64(NumHidden)))

	for i := range p.Win {
		for j := range p.Win[i] {
			p.Win[i][j] = float32(rng.NormFloat64()) * scaleIn
		}
		for j := range p.Wrec[i] {
			p.Wrec[i][j] = float32(rng.NormFloat64()) * scaleRec
		}
		p.B1[i] = 0
	}
	for i := range p.Wout {
		for j := range p.Wout[i] {
			p.Wout[i][j] = float32(rng.NormFloat64()) * scaleOut
		}
		p.B2[i] = 0
	}

	// Mate, sleep and build outputs start biased low so newborns do not
	// immediately trip their intent gates.
	p.B2[2] = -1.0
	p.B2[3] = -1.0
	p.B2[4] = -2.0

	return p
}

// Inherit builds a child policy from two parent policies: each weight is
// w*avg(parents) + (1-w)*fresh, where fresh weights come from a network
// seeded by the child's genome. If the parents are not Recurrent policies
// the child is entirely fresh.
func Inherit(a, b Policy, w float32, seed int64, params Params) *Recurrent {
	child := NewRecurrent(seed, params)
	pa, okA := a.(*Recurrent)
	pb, okB := b.(*Recurrent)
	if !okA || !okB {
		return child
	}

	blend := func(pav, pbv, fresh float32) float32 {
		return w*(pav+pbv)*0.5 + (1-w)*fresh
	}
	for i := range child.Win {
		for j := range child.Win[i] {
			child.Win[i][j] = blend(pa.Win[i][j], pb.Win[i][j], child.Win[i][j])
		}
		for j := range child.Wrec[i] {
			child.Wrec[i][j] = blend(pa.Wrec[i][j], pb.Wrec[i][j], child.Wrec[i][j])
		}
		child.B1[i] = blend(pa.B1[i], pb.B1[i], child.B1[i])
	}
	for i := range child.Wout {
		for j := range child.Wout[i] {
			child.Wout[i][j] = blend(pa.Wout[i][j], pb.Wout[i][j], child.Wout[i][j])
		}
		child.B2[i] = blend(pa.B2[i], pb.B2[i], child.B2[i])
	}
	return child
}

// Decide runs one forward step, advancing the recurrent state.
func (p *Recurrent) Decide(inputs []float32) Action {
	pre := p.h
	copy(p.lastIn[:], inputs)
	p.lastPre = pre
	p.hasLast = true

	p.h = p.step(p.lastIn, pre)

	var out [NumOutputs]float32
	for i := 0; i < NumOutputs; i++ {
		sum := p.B2[i]
		for j := 0; j < NumHidden; j++ {
			sum += p.Wout[i][j] * p.h[j]
		}
		out[i] = sum
	}

	return Action{
		Turn:   tanh(out[0]),
		Thrust: saturate01(out[1]*0.5 + 0.5),
		Mate:   saturate01(out[2]*0.5 + 0.5),
		Sleep:  saturate01(out[3]*0.5 + 0.5),
		Build:  saturate01(out[4]*0.5 + 0.5),
	}
}

// step computes the next hidden state from inputs and the previous state.
func (p *Recurrent) step(in [NumInputs]float32, pre [NumHidden]float32) [NumHidden]float32 {
	var next [NumHidden]float32
	for i := 0; i < NumHidden; i++ {
		sum := p.B1[i]
		for j := 0; j < NumInputs; j++ {
			sum += p.Win[i][j] * in[j]
		}
		for j := 0; j < NumHidden; j++ {
			sum += p.Wrec[i][j] * pre[j]
		}
		next[i] = tanh(sum)
	}
	return next
}

// Record stores the most recent decision with its reward. Rewards are
// clamped to [-1, 1]. Without a preceding Decide there is nothing to record.
func (p *Recurrent) Record(reward float32) {
	if !p.hasLast {
		return
	}
	if reward > 1 {
		reward = 1
	} else if reward < -1 {
		reward = -1
	}
	p.mem.push(Experience{Inputs: p.lastIn, Pre: p.lastPre, Reward: reward})
}

// DreamUpdate replays up to n stored experiences oldest-first, applying a
// reward-modulated Hebbian update to the recurrent weights:
//
//	dWrec[i][j] = lr * devScale * reward * post[i] * pre[j] - decay * Wrec[i][j]
//
// Experiences whose replayed hidden state is not finite are consumed but
// skipped. Returns the number of updates actually applied.
func (p *Recurrent) DreamUpdate(n int, devScale float32) int {
	applied := 0
	for k := 0; k < n; k++ {
		exp, ok := p.mem.pop()
		if !ok {
			break
		}
		post := p.step(exp.Inputs, exp.Pre)
		if !finiteState(post) {
			continue
		}
		lr := p.params.LearningRate * devScale * exp.Reward
		for i := 0; i < NumHidden; i++ {
			for j := 0; j < NumHidden; j++ {
				p.Wrec[i][j] += lr*post[i]*exp.Pre[j] - p.params.LearningDecay*p.Wrec[i][j]
			}
		}
		applied++
	}
	return applied
}

// MemoryLen reports how many experiences are stored.
func (p *Recurrent) MemoryLen() int { return p.mem.len() }

func finiteState(h [NumHidden]float32) bool {
	for _, v := range h {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// saturate01 clamps x to [0, 1] - fastest possible [0,1] activation.
func saturate01(x float32) float32 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	return x
}

// tanh uses a fast rational approximation avoiding float64 conversion.
func tanh(x float32) float32 {
	if x > 4 {
		return 1
	}
	if x < -4 {
		return -1
	}
	x2 := x * x
	return x * (27 + x2) / (27 + 9*x2)
}
