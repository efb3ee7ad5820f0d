//go:build barx_cachelinesize_128

package opt

// CacheLineSize_ forced to 128 bytes via the barx_cachelinesize_128 tag.
const CacheLineSize_ = 128
