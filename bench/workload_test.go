package bench

import "testing"

func TestWorkload_Deterministic(t *testing.T) {
	a := NewWorkload(100, 1337)
	b := NewWorkload(100, 1337)
	for range 50 {
		a.Run()
		b.Run()
	}
	if a.sink != b.sink {
		t.Errorf("same seed diverged: %d vs %d", a.sink, b.sink)
	}
}

func TestWorkload_SeedsDiffer(t *testing.T) {
	a := NewWorkload(1000, 1)
	b := NewWorkload(1000, 2)
	for range 50 {
		a.Run()
		b.Run()
	}
	if a.sink == b.sink {
		t.Error("different seeds produced identical work sequences")
	}
}

func TestWorkload_MinimumParameter(t *testing.T) {
	w := NewWorkload(0, 9)
	w.Run()
	w = NewWorkload(1, 9)
	for range 10 {
		w.Run()
	}
}
