package world

import (
	"runtime"
	"sync"

	"github.com/tetch/pond/brain"
	"github.com/tetch/pond/components"
	"github.com/tetch/pond/config"
	"github.com/tetch/pond/systems"
)

// parallelThreshold is the minimum population to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// workChunk is a range of bodies for one worker.
type workChunk struct {
	start, end int
}

// parallelState holds the persistent worker pool for the sense/decide
// phases. Workers only read the frozen bodies, the grid and the
// environment, and write disjoint ranges of senses/actions, so no locking
// is needed beyond the channel handoff.
type parallelState struct {
	scratches  [][]systems.Neighbor
	numWorkers int

	workChan chan workChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newParallelState() *parallelState {
	numWorkers := runtime.GOMAXPROCS(0)
	scratches := make([][]systems.Neighbor, numWorkers)
	for i := range scratches {
		scratches[i] = make([]systems.Neighbor, 0, 64)
	}
	return &parallelState{
		numWorkers: numWorkers,
		scratches:  scratches,
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(w *World) {
	if p.running {
		return
	}
	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(w, i)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}
	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *parallelState) worker(w *World, workerID int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			w.computeChunk(chunk.start, chunk.end, &p.scratches[workerID])
			p.doneChan <- struct{}{}
		}
	}
}

// senseDecide fills senses and actions for every body, parallel above the
// threshold, single-threaded below it. The results are identical either
// way: each body's work touches only its own slots and its own policy.
func (w *World) senseDecide() {
	n := len(w.bodies)
	if n == 0 {
		return
	}
	if n < parallelThreshold {
		w.computeChunk(0, n, &w.parallel.scratches[0])
		return
	}

	if !w.parallel.running {
		w.parallel.startWorkers(w)
	}
	numWorkers := w.parallel.numWorkers
	chunkSize := (n + numWorkers - 1) / numWorkers

	dispatched := 0
	for wi := 0; wi < numWorkers; wi++ {
		start := wi * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		w.parallel.workChan <- workChunk{start: start, end: end}
		dispatched++
	}
	for i := 0; i < dispatched; i++ {
		<-w.parallel.doneChan
	}
}

// computeChunk senses and decides for a range of bodies. Sleeping,
// dreaming and gestating organisms never decide; they get a zero action.
func (w *World) computeChunk(i0, i1 int, scratch *[]systems.Neighbor) {
	sexual := w.cfg.Reproduction.Mode == config.ModeSexual
	threatFactor := float32(w.cfg.Sensors.ThreatFactor)

	for i := i0; i < i1; i++ {
		b := &w.bodies[i]
		if b.State != components.StateActive {
			w.senses[i] = systems.Senses{MateIdx: -1, ThreatIdx: -1}
			w.actions[i] = brain.Action{}
			continue
		}

		*scratch = w.grid.QueryRadiusInto((*scratch)[:0], b.X, b.Y, b.VisionRange, b.Idx, w.bodies)
		w.senses[i] = systems.Sense(b, w.bodies, *scratch, w.food, w.environment, sexual, threatFactor)

		if policy, ok := w.policies[b.ID]; ok {
			w.actions[i] = policy.Decide(w.senses[i].Inputs[:])
		} else {
			w.actions[i] = brain.Action{}
		}
	}
}
