package bench

import "github.com/llxisdsh/barx/internal/opt"

// wipeBufSize comfortably exceeds the aggregate last-level cache of the
// parts the suite targets (8 MiB LLC on the original machine), so one
// pass evicts every line the barrier state could live on.
const wipeBufSize = 64 << 20

// A Wiper evicts the caches before a measurement trial so the trial
// sees cold memory. A warm cache inflates barrier throughput and hides
// the coherence cost being measured.
type Wiper struct {
	buf []byte
}

// NewWiper allocates the eviction buffer once; ClearCaches may be
// called repeatedly between trials.
func NewWiper() *Wiper {
	return &Wiper{buf: make([]byte, wipeBufSize)}
}

// ClearCaches touches every cache line of the buffer with a
// read-modify-write, displacing whatever the caches held.
func (w *Wiper) ClearCaches() {
	for i := 0; i < len(w.buf); i += int(opt.CacheLineSize_) {
		w.buf[i]++
	}
}
