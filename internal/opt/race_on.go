//go:build race

package opt

import "sync"

// Sema under the race detector: a counting semaphore built on Mutex and
// Cond so the detector observes the synchronization edges.
type Sema struct {
	mu    sync.Mutex
	cond  *sync.Cond
	count int
}

func (s *Sema) Acquire() {
	s.mu.Lock()
	if s.cond == nil {
		s.cond = sync.NewCond(&s.mu)
	}
	for s.count == 0 {
		s.cond.Wait()
	}
	s.count--
	s.mu.Unlock()
}

func (s *Sema) Release() {
	s.mu.Lock()
	if s.cond == nil {
		s.cond = sync.NewCond(&s.mu)
	}
	s.count++
	s.cond.Signal()
	s.mu.Unlock()
}
