package barx

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestBackoff_Strategies(t *testing.T) {
	for _, s := range []BackoffStrategy{BackoffNone, BackoffConstant, BackoffExponential} {
		b := NewBackoff(s)
		// Run well past the cap; every call must return.
		for range 64 {
			b.Pause()
		}
		b.Reset()
		b.Pause()
	}
}

func TestBackoff_ZeroValue(t *testing.T) {
	var b Backoff
	for range 32 {
		b.Pause()
	}
	b.Reset()
}

func TestBackoff_SpinWait(t *testing.T) {
	// A backoff-wrapped spin loop must still observe the flag promptly.
	var flag atomic.Bool
	go func() {
		time.Sleep(5 * time.Millisecond)
		flag.Store(true)
	}()

	var b Backoff
	deadline := time.Now().Add(5 * time.Second)
	for !flag.Load() {
		if time.Now().After(deadline) {
			t.Fatal("flag never observed")
		}
		b.Pause()
	}
	b.Reset()
}

func TestPause(t *testing.T) {
	Pause(0)
	Pause(1)
	Pause(1000)
}
