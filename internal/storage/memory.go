package storage

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// MemorySlot keeps slots in process memory. Useful for throwaway sessions.
type MemorySlot struct {
	c *cache.Cache
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{c: cache.New(cache.NoExpiration, 0)}
}

func (m *MemorySlot) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return clone(v.([]byte)), nil
}

func (m *MemorySlot) Set(_ context.Context, key string, value []byte) error {
	m.c.Set(key, clone(value), cache.NoExpiration)
	return nil
}

func (m *MemorySlot) Close() error {
	m.c.Flush()
	return nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
