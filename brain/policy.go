// Package brain provides decision policies for organisms: the Policy
// contract, a recurrent network implementation with reward-modulated
// replay learning, and the episodic memory backing it.
package brain

// Network dimensions (compile-time constants for array sizing).
// These values must match the corresponding config values:
// - NumRays = sensors.rays
// - NumInputs = sensors.rays + 11 scalar channels
const (
	NumRays    = 7
	NumInputs  = NumRays + 11 // rays + energy, sleep pressure, day/night, season, temp, food dx/dy, mate dist, threat dist, speed, bias
	NumHidden  = 16
	NumOutputs = 5 // turn, thrust, mate, sleep, build
)

// Action is a policy's decision for one tick.
type Action struct {
	Turn   float32 // [-1, 1] steering
	Thrust float32 // [0, 1] forward drive
	Mate   float32 // [0, 1] mating intent
	Sleep  float32 // [0, 1] sleep intent
	Build  float32 // [0, 1] home-building intent
}

// Policy is the decision function of a single organism. Implementations own
// whatever internal state they need; the world only talks to them through
// this contract.
//
// Decide is called once per tick while the organism is awake. Record pairs a
// reward with the most recent Decide and stores the experience in episodic
// memory. DreamUpdate is called only while the organism is dreaming: it
// consumes up to n stored experiences and applies learning updates scaled by
// devScale, returning how many updates were actually applied.
type Policy interface {
	Decide(inputs []float32) Action
	Record(reward float32)
	DreamUpdate(n int, devScale float32) int
	MemoryLen() int
}

// Params holds the tunables a policy needs from the config.
type Params struct {
	MemorySize    int
	LearningRate  float32
	LearningDecay float32
}
