package cache

import (
	"context"
	"strings"
	"sync"
)

// maxTrackedPrefixes bounds the invalidation log. When it fills up the log is
// reset and every outstanding token is treated as stale.
const maxTrackedPrefixes = 4096

// Guarded wraps a Store so a value computed before an invalidation cannot be
// written back after it. Readers take a Token before loading the source data
// and store the result with SetIfUnchanged; writers invalidate with
// DeletePrefix on the same Guarded.
type Guarded[T any] struct {
	Store[T]

	mu          sync.Mutex
	epoch       uint64
	floor       uint64
	invalidated map[string]uint64
}

func NewGuarded[T any](s Store[T]) *Guarded[T] {
	return &Guarded[T]{Store: s, invalidated: make(map[string]uint64)}
}

// Token marks the start of a read-compute-write cycle.
func (g *Guarded[T]) Token() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.epoch
}

// DeletePrefix records the invalidation before removing the entries, so any
// SetIfUnchanged racing with it either lands first and is deleted or sees the
// record and skips.
func (g *Guarded[T]) DeletePrefix(ctx context.Context, prefix string) error {
	g.mu.Lock()
	g.epoch++
	if len(g.invalidated) >= maxTrackedPrefixes {
		clear(g.invalidated)
		g.floor = g.epoch
	}
	g.invalidated[prefix] = g.epoch
	g.mu.Unlock()
	return g.Store.DeletePrefix(ctx, prefix)
}

// SetIfUnchanged stores value unless key was invalidated after token was
// taken. It reports whether the write happened.
func (g *Guarded[T]) SetIfUnchanged(ctx context.Context, key string, value T, token uint64) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if token < g.floor {
		return false, nil
	}
	for prefix, at := range g.invalidated {
		if at > token && strings.HasPrefix(key, prefix) {
			return false, nil
		}
	}
	return true, g.Store.Set(ctx, key, value)
}
