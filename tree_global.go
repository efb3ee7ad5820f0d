package barx

import (
	"sync/atomic"
	"unsafe"

	"github.com/llxisdsh/barx/internal/opt"
)

// TreeGlobal is a static tree barrier whose departure stage is a single
// broadcast flag instead of a departure tree.
//
// Arrival works exactly as in the local-departure variant; once the
// root has observed every subtree it flips the barrier's global sense,
// which every other participant is spinning on. Release is O(1) stores
// from the root at the price of all readers contending on one line.
type TreeGlobal struct {
	_     noCopy
	sense atomic.Bool
	_     [(opt.CacheLineSize_ - unsafe.Sizeof(atomic.Bool{})%opt.CacheLineSize_) % opt.CacheLineSize_]byte
}

// NewTreeGlobal creates the barrier object owning the global departure
// sense. The node topology is built separately by LayoutGlobal.
func NewTreeGlobal() *TreeGlobal {
	b := &TreeGlobal{}
	b.sense.Store(true)
	return b
}

// GlobalNode is one participant's slot set for TreeGlobal: an arrival
// tree position without per-node departure state.
type GlobalNode struct {
	// arrivalParent is the slot where I announce my subtree's arrival;
	// nil for the root.
	arrivalParent *SharedFlag
	// arrivalChildren holds one padded slot per arrival child.
	arrivalChildren []SharedFlag
	// localSense flips each episode; owned by the participant.
	localSense bool
	_          [(opt.CacheLineSize_ - unsafe.Sizeof(struct {
		p  *SharedFlag
		ac []SharedFlag
		ls bool
	}{})%opt.CacheLineSize_) % opt.CacheLineSize_]byte
}

// Await blocks until every participant of the tree has called Await on
// its own node for the current episode, then returns.
func (b *TreeGlobal) Await(n *GlobalNode) {
	// Arrival: wait for each child subtree, in slot order.
	for i := range n.arrivalChildren {
		f := &n.arrivalChildren[i].flag
		for f.Load() != n.localSense {
		}
	}

	if n.arrivalParent != nil {
		n.arrivalParent.flag.Store(n.localSense)

		// Wait until the root broadcasts departure.
		for b.sense.Load() != n.localSense {
		}
	} else {
		// I am the root: everyone has arrived, broadcast departure.
		b.sense.Store(n.localSense)
	}

	n.localSense = !n.localSense
}

// LocalSense reports the node's private sense value. It alternates
// every completed episode, starting from false.
func (n *GlobalNode) LocalSense() bool {
	return n.localSense
}
