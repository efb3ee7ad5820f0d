package barx

import (
	"sync/atomic"
	"unsafe"

	"github.com/llxisdsh/barx/internal/opt"
)

// parkSpinRounds bounds the optimistic spin before a waiter gives up
// and parks: five exponential backoff rounds, i.e. the full 1..16
// pause-hint escalation.
const parkSpinRounds = 5

// Parking is the blocking counterpart of Centralized: the same
// sense-reversing counter protocol, but a waiter that does not observe
// the release within a short bounded spin parks on the runtime
// semaphore instead of burning its core.
//
// It is the baseline the harness measures the spin barriers against: a
// release costs one wakeup per parked waiter, but a stalled participant
// costs no CPU while the others wait.
//
// Sleeper bookkeeping is indexed by the episode's sense parity.
// Consecutive episodes have opposite parity, and a slot of one parity
// cannot be touched again until every waiter of its previous episode
// has returned, so the pair of counters and semaphores never carries
// state across episodes.
type Parking struct {
	_      noCopy
	fanout uint32
	_      [(opt.CacheLineSize_ - unsafe.Sizeof(uint32(0))%opt.CacheLineSize_) % opt.CacheLineSize_]byte

	counter atomic.Uint32
	_       [(opt.CacheLineSize_ - unsafe.Sizeof(atomic.Uint32{})%opt.CacheLineSize_) % opt.CacheLineSize_]byte

	sense atomic.Bool
	_     [(opt.CacheLineSize_ - unsafe.Sizeof(atomic.Bool{})%opt.CacheLineSize_) % opt.CacheLineSize_]byte

	sleepers [2]atomic.Int32
	sema     [2]opt.Sema
}

// NewParking creates a barrier for fanout participants.
//
// panic if fanout < 1.
func NewParking(fanout int) *Parking {
	if fanout < 1 {
		panic("barx: fanout must be positive")
	}
	b := &Parking{fanout: uint32(fanout)}
	b.counter.Store(b.fanout)
	return b
}

// Await blocks until all fanout participants have called Await for the
// current episode, then returns. localSense must point to a
// caller-private bool, initialized false, one per participant, and the
// same pointer must be used for the barrier's whole lifetime.
func (b *Parking) Await(localSense *bool) {
	mySense := !*localSense
	*localSense = mySense
	p := parity(mySense)

	if b.counter.Add(^uint32(0)) == 0 {
		// Last arriver: rearm, publish the release, then wake whoever
		// registered as asleep before the sleeper count was claimed.
		b.counter.Store(b.fanout)
		b.sense.Store(mySense)
		if n := b.sleepers[p].Swap(0); n > 0 {
			for i := int32(0); i < n; i++ {
				b.sema[p].Release()
			}
		}
		return
	}

	// Optimistic spin: a short episode releases us without a syscall.
	var bo Backoff
	for range parkSpinRounds {
		if b.sense.Load() == mySense {
			return
		}
		bo.Pause()
	}

	b.sleepers[p].Add(1)
	if b.sense.Load() == mySense {
		// Released while we were registering. If the releaser claimed
		// the count before our retraction, a wakeup was posted on our
		// behalf; consume it and put the retraction back.
		if b.sleepers[p].Add(-1) < 0 {
			b.sema[p].Acquire()
			b.sleepers[p].Add(1)
		}
		return
	}
	b.sema[p].Acquire()
}

// Fanout returns the number of participants the barrier rendezvouses.
func (b *Parking) Fanout() int {
	return int(b.fanout)
}

func parity(sense bool) int {
	if sense {
		return 1
	}
	return 0
}
