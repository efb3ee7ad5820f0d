package barx

import (
	"sync/atomic"
	"unsafe"

	"github.com/llxisdsh/barx/internal/opt"
)

// SharedFlag is a single atomic boolean padded out to a full cache
// line, so the children toggling adjacent slots of one parent never
// contend on the same line.
//
// Slots are position-identified: once a layout has handed out their
// addresses they must not move or be copied.
type SharedFlag struct {
	flag atomic.Bool
	_    [(opt.CacheLineSize_ - unsafe.Sizeof(atomic.Bool{})%opt.CacheLineSize_) % opt.CacheLineSize_]byte
}

// Node is one participant's slot set in a static tree barrier with
// separate arrival and departure trees.
//
// The arrival tree carries "my subtree has arrived" notifications from
// the leaves to the root; the departure tree carries the release back
// down. Both trees are wired once by Layout and frozen afterwards.
//
// The protocol never resets a flag: a child announces arrival by
// storing its own local sense into its parent's slot, and because
// parent and child advance their local sense in lockstep each episode,
// the slot value a parent waits for alternates by itself.
//
// The sense field and the local sense are padded onto their own cache
// lines; Node's total size is a whole number of lines, and Layout
// allocates every node separately so that a hardware prefetcher pulling
// neighboring lines cannot reintroduce sharing.
type Node struct {
	// sense is where my parent signals me departure.
	sense atomic.Bool
	_     [(opt.CacheLineSize_ - unsafe.Sizeof(atomic.Bool{})%opt.CacheLineSize_) % opt.CacheLineSize_]byte

	// arrivalParent is the slot where I announce my subtree's arrival;
	// nil for the root.
	arrivalParent *SharedFlag
	// arrivalChildren holds one padded slot per arrival child.
	arrivalChildren []SharedFlag
	// departureChildren lists the senses of the children I release.
	departureChildren []*atomic.Bool
	// localSense flips each episode; owned by the participant.
	localSense bool
	_          [(opt.CacheLineSize_ - unsafe.Sizeof(struct {
		p  *SharedFlag
		ac []SharedFlag
		dc []*atomic.Bool
		ls bool
	}{})%opt.CacheLineSize_) % opt.CacheLineSize_]byte
}

// Await blocks until every participant of the tree has called Await on
// its own node for the current episode, then returns. The barrier
// rearms itself; no reset is needed between episodes.
//
// The caller must be the node's owning participant: exactly one
// goroutine per node, every episode.
func (n *Node) Await() {
	// Arrival: wait for each child subtree, in slot order.
	for i := range n.arrivalChildren {
		f := &n.arrivalChildren[i].flag
		for f.Load() != n.localSense {
		}
	}

	if n.arrivalParent != nil {
		// Pass my whole subtree's arrival (and its memory) upward.
		n.arrivalParent.flag.Store(n.localSense)

		// Wait until my parent signals departure.
		for n.sense.Load() != n.localSense {
		}
	}

	// Departure: release my direct children.
	for _, sig := range n.departureChildren {
		sig.Store(n.localSense)
	}

	n.localSense = !n.localSense
}

// LocalSense reports the node's private sense value. It alternates
// every completed episode, starting from false.
func (n *Node) LocalSense() bool {
	return n.localSense
}
