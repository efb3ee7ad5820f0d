//go:build !linux

package bench

// Pin is a no-op where thread affinity syscalls are unavailable; the
// measurement runs wherever the scheduler puts the workers.
func Pin(core int) error {
	return nil
}
