//go:build barx_cachelinesize_256

package opt

// CacheLineSize_ forced to 256 bytes via the barx_cachelinesize_256 tag.
const CacheLineSize_ = 256
