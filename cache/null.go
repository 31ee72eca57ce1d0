package cache

import "github.com/arrowbench/banditbench/types"

// NullCacher caches nothing: Contains is always false, Get always misses,
// Put/Remove are no-ops, and GetOrPut always passes the getter's value
// straight through.
type NullCacher struct{}

var _ Cacher = (*NullCacher)(nil)

// NewNullCacher constructs a NullCacher.
func NewNullCacher() *NullCacher { return &NullCacher{} }

func (c *NullCacher) Contains(key string) bool { return false }

func (c *NullCacher) Get(key string) ([][]byte, error) {
	return nil, types.ErrCacheMiss
}

func (c *NullCacher) Put(key string, value [][]byte) error { return nil }

func (c *NullCacher) Remove(key string) error { return nil }

func (c *NullCacher) GetOrPut(key string, getter func() ([][]byte, error)) ([][]byte, error) {
	return getter()
}
