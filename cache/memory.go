package cache

import (
	"sync"

	"github.com/arrowbench/banditbench/types"
)

// MemoryCacher caches values in a process-local hash map. Generators/
// streaming producers are fully materialized on Put.
type MemoryCacher struct {
	mu    sync.RWMutex
	store map[string][][]byte
}

var _ Cacher = (*MemoryCacher)(nil)

// NewMemoryCacher constructs an empty MemoryCacher.
func NewMemoryCacher() *MemoryCacher {
	return &MemoryCacher{store: make(map[string][][]byte)}
}

func (c *MemoryCacher) Contains(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.store[key]
	return ok
}

func (c *MemoryCacher) Get(key string) ([][]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.store[key]
	if !ok {
		return nil, types.ErrCacheMiss
	}
	return v, nil
}

func (c *MemoryCacher) Put(key string, value [][]byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.store[key]; ok {
		// Key collision: nothing is put, per contract.
		return nil
	}
	c.store[key] = value
	return nil
}

func (c *MemoryCacher) Remove(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

func (c *MemoryCacher) GetOrPut(key string, getter func() ([][]byte, error)) ([][]byte, error) {
	return defaultGetOrPut(c, key, getter)
}
