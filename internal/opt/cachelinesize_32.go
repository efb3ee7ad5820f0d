//go:build barx_cachelinesize_32

package opt

// CacheLineSize_ forced to 32 bytes via the barx_cachelinesize_32 tag.
const CacheLineSize_ = 32
