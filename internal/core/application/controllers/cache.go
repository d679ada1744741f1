package controllers

import (
	"slices"
	"sync"

	"logistics/internal/pkg/metrics"
)

// listCache holds the result of a "get all" read until the next write.
// Callers always receive copies, so mutating them never touches the cache.
type listCache[T any] struct {
	name  string
	clone func(T) T

	mu    sync.RWMutex
	items []T
	valid bool
}

func newListCache[T any](name string, clone func(T) T) *listCache[T] {
	return &listCache[T]{name: name, clone: clone}
}

func (c *listCache[T]) Get() ([]T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	metrics.ObserveCacheLookup(c.name, c.valid)
	if !c.valid {
		return nil, false
	}
	return c.copyOf(c.items), true
}

func (c *listCache[T]) Set(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = c.copyOf(items)
	c.valid = true
}

func (c *listCache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.valid = false
}

func (c *listCache[T]) Valid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.valid
}

func (c *listCache[T]) copyOf(items []T) []T {
	out := slices.Clone(items)
	for i := range out {
		out[i] = c.clone(out[i])
	}
	if out == nil {
		out = []T{}
	}
	return out
}
