package kv

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// MemoryRepository lives for the lifetime of the process. Values are copied
// on the way in and out so callers cannot mutate stored bytes.
type MemoryRepository struct {
	c *cache.Cache
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{c: cache.New(cache.NoExpiration, 0)}
}

func (r *MemoryRepository) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := r.c.Get(key)
	if !ok {
		return nil, nil
	}
	return clone(v.([]byte)), nil
}

func (r *MemoryRepository) Set(_ context.Context, key string, value []byte) error {
	r.c.Set(key, clone(value), cache.NoExpiration)
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, key string) error {
	r.c.Delete(key)
	return nil
}

func (r *MemoryRepository) List(_ context.Context) (map[string][]byte, error) {
	items := r.c.Items()
	result := make(map[string][]byte, len(items))
	for k, item := range items {
		result[k] = clone(item.Object.([]byte))
	}
	return result, nil
}

func (r *MemoryRepository) Clear(_ context.Context) error {
	r.c.Flush()
	return nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
