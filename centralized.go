package barx

import (
	"sync/atomic"
	"unsafe"

	"github.com/llxisdsh/barx/internal/opt"
)

// Centralized is a reusable sense-reversing barrier with one shared
// counter and one shared sense flag.
//
// All participants decrement the counter on arrival; the last one
// resets it and flips the sense flag, releasing everyone spinning on
// it. A completed episode rearms the barrier automatically.
//
// The counter and the sense flag each occupy their own cache line, so
// arrivals (counter traffic) do not invalidate the line the waiters
// are spinning on.
//
// Every participant owns a private sense bool, initialized false, and
// passes a pointer to it on each Await. The same pointer must be used
// for the barrier's whole lifetime.
type Centralized struct {
	_      noCopy
	fanout uint32
	_      [(opt.CacheLineSize_ - unsafe.Sizeof(uint32(0))%opt.CacheLineSize_) % opt.CacheLineSize_]byte

	counter atomic.Uint32
	_       [(opt.CacheLineSize_ - unsafe.Sizeof(atomic.Uint32{})%opt.CacheLineSize_) % opt.CacheLineSize_]byte

	sense atomic.Bool
	_     [(opt.CacheLineSize_ - unsafe.Sizeof(atomic.Bool{})%opt.CacheLineSize_) % opt.CacheLineSize_]byte
}

// NewCentralized creates a barrier for fanout participants.
//
// panic if fanout < 1.
func NewCentralized(fanout int) *Centralized {
	if fanout < 1 {
		panic("barx: fanout must be positive")
	}
	b := &Centralized{fanout: uint32(fanout)}
	b.counter.Store(b.fanout)
	return b
}

// Await blocks until all fanout participants have called Await for the
// current episode, then returns. localSense must point to a
// caller-private bool, initialized false, one per participant.
//
// The fast path performs no system calls and no allocation; waiters
// busy-spin on the shared sense flag.
func (b *Centralized) Await(localSense *bool) {
	mySense := !*localSense
	*localSense = mySense

	if b.counter.Add(^uint32(0)) == 0 {
		// Last arriver. The plain reset is safe: no peer can observe
		// the counter until the sense store below releases it into the
		// next episode.
		b.counter.Store(b.fanout)
		b.sense.Store(mySense)
		return
	}
	for b.sense.Load() != mySense {
	}
}

// Fanout returns the number of participants the barrier rendezvouses.
func (b *Centralized) Fanout() int {
	return int(b.fanout)
}
