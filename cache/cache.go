// Package cache implements the content-addressed Cacher used to memoize
// expensive remote fetches. Values are streams of line-delimited byte
// chunks; readers are expected to consume them lazily. Four variants are
// provided: Null, Memory, Disk (gzip-backed), and a Concurrent wrapper
// implementing a multi-reader/single-writer protocol keyed per-entry. A
// Redis-backed variant lives in redis.go for cross-process deployments.
package cache

// Cacher is the interface every variant in this package implements.
type Cacher interface {
	// Contains reports whether key is present.
	Contains(key string) bool
	// Get returns the cached lines for key, or types.ErrCacheMiss if absent.
	Get(key string) ([][]byte, error)
	// Put stores value under key. On a key collision, nothing is stored.
	Put(key string, value [][]byte) error
	// Remove deletes key, making Contains(key) false afterward.
	Remove(key string) error
	// GetOrPut returns the cached value for key, populating it via getter
	// first if absent.
	GetOrPut(key string, getter func() ([][]byte, error)) ([][]byte, error)
}

// defaultGetOrPut implements the common get-if-absent-then-get pattern
// shared by Memory/Disk/Redis; Null calls its getter directly, and
// Concurrent reimplements it under its lock protocol instead of delegating
// here.
func defaultGetOrPut(c Cacher, key string, getter func() ([][]byte, error)) ([][]byte, error) {
	if c.Contains(key) {
		return c.Get(key)
	}
	value, err := getter()
	if err != nil {
		return nil, err
	}
	if err := c.Put(key, value); err != nil {
		return nil, err
	}
	return c.Get(key)
}
