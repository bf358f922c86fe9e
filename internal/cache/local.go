package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"
)

type entry[T any] struct {
	key     string
	value   T
	expires time.Time
}

// Local is a bounded in-process Store. The least recently read or written
// entry is dropped once capacity is exceeded, and entries older than the TTL
// read as misses.
type Local[T any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	order    *list.List // front is most recent
	index    map[string]*list.Element
	now      func() time.Time
}

func NewLocal[T any](capacity int, ttl time.Duration) *Local[T] {
	return &Local[T]{
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		index:    make(map[string]*list.Element, capacity),
		now:      time.Now,
	}
}

func (c *Local[T]) Get(_ context.Context, key string) (T, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	el, ok := c.index[key]
	if !ok {
		return zero, false, nil
	}
	e := el.Value.(*entry[T])
	if !c.now().Before(e.expires) {
		c.drop(el)
		return zero, false, nil
	}
	c.order.MoveToFront(el)
	return e.value, true, nil
}

func (c *Local[T]) Set(_ context.Context, key string, value T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[T]{key: key, value: value, expires: c.now().Add(c.ttl)}
	if el, ok := c.index[key]; ok {
		el.Value = e
		c.order.MoveToFront(el)
		return nil
	}
	c.index[key] = c.order.PushFront(e)
	for c.capacity > 0 && c.order.Len() > c.capacity {
		c.drop(c.order.Back())
	}
	return nil
}

func (c *Local[T]) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, el := range c.index {
		if strings.HasPrefix(key, prefix) {
			c.drop(el)
		}
	}
	return nil
}

// Expire implements Expirer.
func (c *Local[T]) Expire() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if !now.Before(el.Value.(*entry[T]).expires) {
			c.drop(el)
			removed++
		}
		el = prev
	}
	return removed
}

func (c *Local[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Local[T]) drop(el *list.Element) {
	delete(c.index, el.Value.(*entry[T]).key)
	c.order.Remove(el)
}
