//go:build linux

package bench

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Pin binds the calling OS thread to the given core. The caller must
// hold the thread via runtime.LockOSThread for the pin to mean
// anything.
//
// The harness maps logical worker id directly to core id. On parts
// with hyperthreading this can place two workers on sibling threads of
// one physical core, which distorts the measurement; that mapping is a
// known caveat of the suite, kept as-is.
func Pin(core int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("bench: failed to set affinity to core %d: %w", core, err)
	}
	return nil
}
