package barx

import (
	"fmt"
	"sync/atomic"
)

// MaxLayoutFanout is the largest participant count the enumerated
// layout tables cover. Larger trees need a generalized builder.
const MaxLayoutFanout = 8

// Locality selects how the layout maps logical participant ids, and
// thus the cores they are pinned to, onto tree positions.
type Locality uint8

const (
	// GoodLocality keeps parents and their children on cores sharing a
	// last-level cache.
	GoodLocality Locality = iota
	// BadLocality scrambles the id-to-position mapping so parent/child
	// traffic deliberately crosses cache boundaries.
	BadLocality
)

func (l Locality) String() string {
	switch l {
	case GoodLocality:
		return "good"
	case BadLocality:
		return "bad"
	}
	return fmt.Sprintf("Locality(%d)", uint8(l))
}

// treeLink places one node in the arrival tree: the parent's
// participant index and which of the parent's child slots the node
// writes. The root carries parent == -1.
type treeLink struct {
	parent int8
	slot   int8
}

// The enumerated topologies, indexed by participant count. Fanout per
// node never exceeds 2. These were measured shapes for an 8-logical-core
// part; the good tables pair siblings that shared a last-level cache on
// that part, the bad tables deliberately split them.
var goodLayouts = [MaxLayoutFanout + 1][]treeLink{
	1: {{-1, 0}},
	2: {{-1, 0}, {0, 0}},
	3: {{-1, 0}, {0, 0}, {0, 1}},
	4: {{-1, 0}, {0, 0}, {0, 1}, {2, 0}},
	5: {{-1, 0}, {4, 0}, {0, 1}, {2, 0}, {0, 0}},
	6: {{-1, 0}, {4, 0}, {0, 1}, {2, 0}, {0, 0}, {4, 1}},
	7: {{-1, 0}, {4, 0}, {0, 1}, {2, 0}, {0, 0}, {4, 1}, {2, 1}},
	8: {{-1, 0}, {4, 0}, {0, 1}, {2, 0}, {0, 0}, {4, 1}, {2, 1}, {3, 0}},
}

var badLayouts = [MaxLayoutFanout + 1][]treeLink{
	1: {{-1, 0}},
	2: {{-1, 0}, {0, 0}},
	3: {{-1, 0}, {0, 0}, {0, 1}},
	4: {{-1, 0}, {2, 0}, {0, 1}, {0, 0}},
	5: {{-1, 0}, {2, 0}, {0, 1}, {0, 0}, {3, 0}},
	6: {{-1, 0}, {2, 0}, {0, 1}, {0, 0}, {3, 0}, {2, 1}},
	7: {{-1, 0}, {2, 0}, {0, 1}, {0, 0}, {3, 0}, {2, 1}, {4, 0}},
	8: {{-1, 0}, {2, 0}, {0, 1}, {0, 0}, {3, 0}, {2, 1}, {4, 0}, {4, 1}},
}

func layoutTable(n int, loc Locality) ([]treeLink, error) {
	if n < 1 || n > MaxLayoutFanout {
		return nil, fmt.Errorf("barx: unsupported participant count %d, layouts cover 1..%d", n, MaxLayoutFanout)
	}
	switch loc {
	case GoodLocality:
		return goodLayouts[n], nil
	case BadLocality:
		return badLayouts[n], nil
	}
	return nil, fmt.Errorf("barx: unknown locality %d", loc)
}

// fanins counts the child slots of every node in a table.
func fanins(table []treeLink) []int {
	counts := make([]int, len(table))
	for _, l := range table {
		if l.parent >= 0 {
			if w := int(l.slot) + 1; w > counts[l.parent] {
				counts[l.parent] = w
			}
		}
	}
	return counts
}

// Layout builds the nodes of a local-departure static tree barrier for
// n participants. The returned slice is indexed by logical participant
// id: nodes[i] belongs to the thread pinned to core i.
//
// Each node is allocated separately so the hardware prefetcher cannot
// drag a neighbor's lines in with it, and every inter-node link is
// wired before the slice is returned; nothing is resized afterwards.
// The builder owns the nodes; hand the slice to Release when the
// barrier session ends.
func Layout(n int, loc Locality) ([]*Node, error) {
	table, err := layoutTable(n, loc)
	if err != nil {
		return nil, err
	}

	nodes := make([]*Node, n)
	for i, width := range fanins(table) {
		nd := new(Node)
		nd.sense.Store(true)
		if width > 0 {
			nd.arrivalChildren = make([]SharedFlag, width)
			for j := range nd.arrivalChildren {
				nd.arrivalChildren[j].flag.Store(true)
			}
		}
		nodes[i] = nd
	}

	for i, l := range table {
		if l.parent < 0 {
			continue
		}
		p := nodes[l.parent]
		nodes[i].arrivalParent = &p.arrivalChildren[l.slot]
	}

	// The departure tree mirrors the arrival tree: each parent releases
	// exactly the children that write its slots, in slot order.
	for i, width := range fanins(table) {
		if width == 0 {
			continue
		}
		children := make([]*atomic.Bool, width)
		for c, l := range table {
			if int(l.parent) == i {
				children[l.slot] = &nodes[c].sense
			}
		}
		nodes[i].departureChildren = children
	}

	return nodes, nil
}

// LayoutGlobal builds the nodes of a global-departure static tree
// barrier for n participants. The arrival shape is the same as
// Layout's; there is no departure wiring.
func LayoutGlobal(n int, loc Locality) ([]*GlobalNode, error) {
	table, err := layoutTable(n, loc)
	if err != nil {
		return nil, err
	}

	nodes := make([]*GlobalNode, n)
	for i, width := range fanins(table) {
		nd := new(GlobalNode)
		if width > 0 {
			nd.arrivalChildren = make([]SharedFlag, width)
			for j := range nd.arrivalChildren {
				nd.arrivalChildren[j].flag.Store(true)
			}
		}
		nodes[i] = nd
	}

	for i, l := range table {
		if l.parent < 0 {
			continue
		}
		nodes[i].arrivalParent = &nodes[l.parent].arrivalChildren[l.slot]
	}

	return nodes, nil
}

// Release severs the inter-node links of a layout so no stale slot
// reference can outlive the barrier session. The nodes must not be
// used afterwards.
func Release(nodes []*Node) {
	for _, n := range nodes {
		n.arrivalParent = nil
		n.arrivalChildren = nil
		n.departureChildren = nil
	}
}

// ReleaseGlobal is Release for a LayoutGlobal node set.
func ReleaseGlobal(nodes []*GlobalNode) {
	for _, n := range nodes {
		n.arrivalParent = nil
		n.arrivalChildren = nil
	}
}
