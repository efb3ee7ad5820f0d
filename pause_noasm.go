//go:build !amd64

package barx

//go:noinline
func pauseHint() {}
