//go:build amd64

package barx

// pauseHint executes a single PAUSE instruction. The processor uses the
// hint to avoid the memory order violation penalty when leaving a
// spin-wait loop.
//
//go:noescape
//go:nosplit
func pauseHint()
