// Package cache holds the trend-summary caches: an in-process LRU and a
// Redis-backed store sharing one interface.
package cache

import (
	"context"
	"sync"
	"time"
)

// Store is a cache that may live out of process. A miss is (zero, false, nil).
type Store[T any] interface {
	Get(ctx context.Context, key string) (T, bool, error)
	Set(ctx context.Context, key string, value T) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Expirer drops entries whose TTL has passed and reports how many went.
type Expirer interface {
	Expire() int
}

// Sweeper runs Expire on a set of caches at a fixed interval.
type Sweeper struct {
	interval time.Duration
	targets  []Expirer
	onSweep  func(removed int)

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewSweeper returns a stopped sweeper. onSweep, when set, is called after
// every pass that removed something.
func NewSweeper(interval time.Duration, onSweep func(removed int), targets ...Expirer) *Sweeper {
	return &Sweeper{interval: interval, targets: targets, onSweep: onSweep}
}

func (s *Sweeper) Start() {
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.wg.Add(1)
	go s.loop(s.stop)
}

func (s *Sweeper) loop(stop <-chan struct{}) {
	defer s.wg.Done()
	tick := time.NewTicker(s.interval)
	defer tick.Stop()
	for {
		select {
		case <-stop:
			return
		case <-tick.C:
			if n := s.SweepOnce(); n > 0 && s.onSweep != nil {
				s.onSweep(n)
			}
		}
	}
}

// SweepOnce expires every target immediately.
func (s *Sweeper) SweepOnce() int {
	removed := 0
	for _, t := range s.targets {
		removed += t.Expire()
	}
	return removed
}

// Stop ends the loop and waits for it. Calling it twice is harmless.
func (s *Sweeper) Stop() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	s.wg.Wait()
	s.stop = nil
}
