package barx

import "runtime"

// Pause executes k architectural pause hints.
//
// On amd64 each hint is a PAUSE instruction, which relaxes the pipeline
// and frees shared execution resources on a hyperthreaded core while a
// sibling makes progress. On other architectures the hint is a cheap
// no-op call with a comparable fixed cost.
func Pause(k uint32) {
	for i := uint32(0); i < k; i++ {
		pauseHint()
	}
}

// A Backoff spreads out retries of a failed atomic observation.
//
// Each call to Pause either spins briefly (strategy-dependent) and
// returns, or, once its attempt counter (starting at 1 and doubling with
// every call) has exceeded the cap of 16, yields the processor: the
// first five calls after a Reset spin, every later one yields. Reset
// must be called after the first successful
// observation so the next miss starts cheap again.
//
// It is zero-value usable; the zero value uses the exponential strategy.
type Backoff struct {
	strategy BackoffStrategy
	tries    uint32
}

// BackoffStrategy selects how long a single Backoff.Pause spins before
// the yield cap is reached.
type BackoffStrategy uint8

const (
	// BackoffExponential spins for as many hints as the attempt counter
	// holds (1, 2, 4, 8, 16), doubling each miss. The default.
	BackoffExponential BackoffStrategy = iota
	// BackoffNone never spins; every call below the cap returns at once.
	BackoffNone
	// BackoffConstant spins a fixed 16 hints regardless of misses.
	BackoffConstant
)

const (
	backoffMaxTries      = 16
	backoffConstantDelay = 16
)

// NewBackoff returns a Backoff using the given strategy.
func NewBackoff(s BackoffStrategy) *Backoff {
	return &Backoff{strategy: s}
}

// Pause records one failed attempt. Below the cap it spins according to
// the strategy; above it, it yields the processor.
func (b *Backoff) Pause() {
	tries := b.tries
	if tries == 0 {
		tries = 1
	}
	if tries <= backoffMaxTries {
		switch b.strategy {
		case BackoffNone:
		case BackoffConstant:
			Pause(backoffConstantDelay)
		default:
			Pause(tries)
		}
		b.tries = tries * 2
	} else {
		runtime.Gosched()
	}
}

// Reset returns the attempt counter to 1. Call it after the awaited
// condition was finally observed.
func (b *Backoff) Reset() {
	b.tries = 1
}
