//go:build !race

package opt

import (
	_ "unsafe" // for linkname
)

// Sema is the parking primitive behind the blocking barrier: a
// zero-allocation wrapper around the runtime's semaphore, so a waiter
// that gives up spinning sleeps without a heap allocation or a channel.
type Sema uint32

// Acquire blocks until a wakeup is available.
func (s *Sema) Acquire() {
	runtime_semacquire((*uint32)(s))
}

// Release posts one wakeup.
func (s *Sema) Release() {
	runtime_semrelease((*uint32)(s), false, 0)
}

//go:linkname runtime_semacquire sync.runtime_Semacquire
func runtime_semacquire(s *uint32)

//go:linkname runtime_semrelease sync.runtime_Semrelease
func runtime_semrelease(s *uint32, handoff bool, skipframes int)
