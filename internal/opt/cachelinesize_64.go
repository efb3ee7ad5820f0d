//go:build barx_cachelinesize_64

package opt

// CacheLineSize_ forced to 64 bytes via the barx_cachelinesize_64 tag.
const CacheLineSize_ = 64
