package barx

import (
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestParking_Rendezvous(t *testing.T) {
	const parties = 4
	episodes := scaledEpisodes(parties, 500)
	b := NewParking(parties)

	var counter atomic.Int32
	var wg sync.WaitGroup
	wg.Add(parties)

	for range parties {
		go func() {
			defer wg.Done()
			var sense bool
			for ep := 1; ep <= episodes; ep++ {
				counter.Add(1)
				b.Await(&sense)

				if got := counter.Load(); got != int32(ep*parties) {
					t.Errorf("episode %d: counter = %d, want %d", ep, got, ep*parties)
				}

				b.Await(&sense)
			}
		}()
	}

	wg.Wait()
}

// Force the park path: a slow last arriver gives every other waiter
// ample time to exhaust its spin budget and sleep; the release must
// wake them all.
func TestParking_ParkedWaitersWake(t *testing.T) {
	const parties = 4
	const slowDelay = 50 * time.Millisecond
	b := NewParking(parties)

	begin := time.Now()
	var wg sync.WaitGroup
	wg.Add(parties)
	for id := range parties {
		go func(id int) {
			defer wg.Done()
			var sense bool
			if id == 0 {
				time.Sleep(slowDelay)
			}
			b.Await(&sense)
		}(id)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("parked waiters were never woken")
	}

	if elapsed := time.Since(begin); elapsed < slowDelay {
		t.Errorf("episode finished in %v, below the slow participant's %v", elapsed, slowDelay)
	}
}

// Mixed spin and park outcomes across many episodes: random short
// stalls make some waiters sleep while others catch the release during
// their spin, exercising the retraction path in between.
func TestParking_MixedPaths(t *testing.T) {
	const parties = 4
	episodes := scaledEpisodes(parties, 200)
	b := NewParking(parties)

	var wg sync.WaitGroup
	wg.Add(parties)
	for id := range parties {
		go func(id int) {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(uint64(id), 23))
			var sense bool
			for range episodes {
				switch rng.Uint64N(3) {
				case 0:
					time.Sleep(time.Duration(rng.Uint64N(200)) * time.Microsecond)
				case 1:
					Pause(uint32(rng.Uint64N(64)))
				}
				b.Await(&sense)
			}
		}(id)
	}
	wg.Wait()

	if got := b.counter.Load(); got != parties {
		t.Errorf("counter at rest = %d, want %d", got, parties)
	}
	for p := range b.sleepers {
		if got := b.sleepers[p].Load(); got != 0 {
			t.Errorf("sleeper count for parity %d = %d at rest, want 0", p, got)
		}
	}
}

func TestParking_SenseParity(t *testing.T) {
	const parties = 3
	for _, episodes := range []int{1, 2, 7, 50} {
		b := NewParking(parties)
		senses := make([]bool, parties)

		var wg sync.WaitGroup
		wg.Add(parties)
		for id := range parties {
			go func(id int) {
				defer wg.Done()
				for range episodes {
					b.Await(&senses[id])
				}
			}(id)
		}
		wg.Wait()

		want := episodes%2 == 1
		for id, s := range senses {
			if s != want {
				t.Errorf("episodes=%d: participant %d sense = %v, want %v", episodes, id, s, want)
			}
		}
	}
}

func TestParking_Single(t *testing.T) {
	b := NewParking(1)
	var sense bool
	done := make(chan struct{})
	go func() {
		b.Await(&sense)
		b.Await(&sense)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Await with fanout 1 did not return")
	}
}

func TestParking_PanicZero(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for fanout 0")
		}
	}()
	NewParking(0)
}
