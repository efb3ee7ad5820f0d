package bench

import "math/rand/v2"

// Workload simulates a bounded random unit of work between barrier
// episodes: a busy loop of length drawn uniformly from [1, W].
//
// Random numbers start from the given seed so repeated trials replay
// the exact same sequence. This is a requirement for reproducibility
// of the results.
type Workload struct {
	w   uint64
	rng *rand.Rand

	// sink keeps the busy loop observable so it cannot be optimized
	// away. Owned by the worker; never shared.
	sink uint64
}

// NewWorkload creates a workload generator with parameter w >= 1.
func NewWorkload(w uint64, seed uint64) *Workload {
	if w < 1 {
		w = 1
	}
	return &Workload{w: w, rng: rand.New(rand.NewPCG(seed, 0))}
}

// Run burns one randomly sized unit of work.
func (wl *Workload) Run() {
	n := wl.rng.Uint64N(wl.w) + 1
	var s uint64
	for i := uint64(0); i < n; i++ {
		s += i
	}
	wl.sink += s
}
