package brain

// Experience is one remembered decision: the sensation, the recurrent
// pre-state it was made from, and the reward that followed.
type Experience struct {
	Inputs [NumInputs]float32
	Pre    [NumHidden]float32
	Reward float32
}

// ring is a fixed-capacity FIFO of experiences. When full, the oldest entry
// is overwritten.
type ring struct {
	buf  []Experience
	head int // index of the oldest entry
	size int
}

func newRing(capacity int) ring {
	if capacity < 1 {
		capacity = 1
	}
	return ring{buf: make([]Experience, capacity)}
}

func (r *ring) push(e Experience) {
	if r.size < len(r.buf) {
		r.buf[(r.head+r.size)%len(r.buf)] = e
		r.size++
		return
	}
	// Full: overwrite the oldest
	r.buf[r.head] = e
	r.head = (r.head + 1) % len(r.buf)
}

// pop removes and returns the oldest experience.
func (r *ring) pop() (Experience, bool) {
	if r.size == 0 {
		return Experience{}, false
	}
	e := r.buf[r.head]
	r.head = (r.head + 1) % len(r.buf)
	r.size--
	return e, true
}

func (r *ring) len() int { return r.size }
