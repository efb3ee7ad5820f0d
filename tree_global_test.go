package barx

import (
	"sync"
	"testing"
	"time"
)

func runTreeGlobalEpisodes(t *testing.T, b *TreeGlobal, nodes []*GlobalNode, episodes int) {
	t.Helper()
	var wg sync.WaitGroup
	wg.Add(len(nodes))
	for _, n := range nodes {
		go func(n *GlobalNode) {
			defer wg.Done()
			for range episodes {
				b.Await(n)
			}
		}(n)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("global-departure barrier deadlocked")
	}
}

func TestTreeGlobal_AllFanoutsBothLocalities(t *testing.T) {
	for n := 1; n <= MaxLayoutFanout; n++ {
		for _, loc := range []Locality{GoodLocality, BadLocality} {
			b := NewTreeGlobal()
			nodes, err := LayoutGlobal(n, loc)
			if err != nil {
				t.Fatalf("LayoutGlobal(%d, %v): %v", n, loc, err)
			}
			runTreeGlobalEpisodes(t, b, nodes, scaledEpisodes(n, 200))
			for id, nd := range nodes {
				if nd.localSense {
					t.Errorf("n=%d %v: node %d sense = true after even episode count", n, loc, id)
				}
			}
			ReleaseGlobal(nodes)
		}
	}
}

func TestTreeGlobal_ManyEpisodes(t *testing.T) {
	const parties = 8
	b := NewTreeGlobal()
	nodes, err := LayoutGlobal(parties, GoodLocality)
	if err != nil {
		t.Fatal(err)
	}
	runTreeGlobalEpisodes(t, b, nodes, scaledEpisodes(parties, 10000))
}

// The root must observe every child's pre-arrival writes once its own
// Await returns.
func TestTreeGlobal_RootObservesChildren(t *testing.T) {
	const parties = 3
	episodes := scaledEpisodes(parties, 1000)
	b := NewTreeGlobal()
	nodes, err := LayoutGlobal(parties, GoodLocality)
	if err != nil {
		t.Fatal(err)
	}
	if nodes[0].arrivalParent != nil {
		t.Fatal("node 0 is not the root")
	}

	// Plain writes, one slot per child.
	var slots [parties]int

	var wg sync.WaitGroup
	wg.Add(parties)
	for id, n := range nodes {
		go func(id int, n *GlobalNode) {
			defer wg.Done()
			for ep := 1; ep <= episodes; ep++ {
				if id != 0 {
					slots[id] = ep
				}
				b.Await(n)
				if id == 0 {
					for child := 1; child < parties; child++ {
						if v := slots[child]; v < ep {
							t.Errorf("episode %d: root saw stale value %d from child %d", ep, v, child)
						}
					}
				}
				b.Await(n)
			}
		}(id, n)
	}
	wg.Wait()
}

func TestTreeGlobal_SingleNode(t *testing.T) {
	b := NewTreeGlobal()
	nodes, err := LayoutGlobal(1, GoodLocality)
	if err != nil {
		t.Fatal(err)
	}
	b.Await(nodes[0])
	if !nodes[0].localSense {
		t.Error("local sense was not flipped")
	}
	if b.sense.Load() {
		t.Error("global sense was not toggled by the root")
	}
}
