package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func get[T any](t *testing.T, c *Local[T], key string) (T, bool) {
	t.Helper()
	v, ok, err := c.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get(%q): %v", key, err)
	}
	return v, ok
}

func set[T any](t *testing.T, c *Local[T], key string, v T) {
	t.Helper()
	if err := c.Set(context.Background(), key, v); err != nil {
		t.Fatalf("Set(%q): %v", key, err)
	}
}

func TestLocalEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLocal[int](2, time.Minute)
	set(t, c, "a", 1)
	set(t, c, "b", 2)

	// Reading a leaves b as the oldest entry.
	if v, ok := get(t, c, "a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %v, %v", v, ok)
	}
	set(t, c, "c", 3)

	if _, ok := get(t, c, "b"); ok {
		t.Fatal("b should have been evicted")
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}

	set(t, c, "a", 10)
	if v, _ := get(t, c, "a"); v != 10 {
		t.Fatalf("overwrite lost: %d", v)
	}
	if c.Len() != 2 {
		t.Fatalf("overwrite grew the cache to %d", c.Len())
	}
}

func TestLocalExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLocal[string](10, time.Minute)
	c.now = func() time.Time { return now }

	set(t, c, "k", "v")
	set(t, c, "k2", "v2")
	now = now.Add(30 * time.Second)
	set(t, c, "fresh", "v3")
	now = now.Add(45 * time.Second)

	if _, ok := get(t, c, "k"); ok {
		t.Fatal("expired entry returned")
	}
	if n := c.Expire(); n != 1 {
		t.Fatalf("Expire = %d, want 1", n)
	}
	if _, ok := get(t, c, "fresh"); !ok {
		t.Fatal("fresh entry expired early")
	}
}

func TestLocalDeletePrefix(t *testing.T) {
	c := NewLocal[int](100, time.Minute)
	for i := 0; i < 3; i++ {
		set(t, c, fmt.Sprintf("trends:u1:%d", i), i)
		set(t, c, fmt.Sprintf("trends:u2:%d", i), i)
	}
	if err := c.DeletePrefix(context.Background(), "trends:u1:"); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}
	if _, ok := get(t, c, "trends:u2:0"); !ok {
		t.Fatal("other user's entry was removed")
	}
}

func TestLocalSatisfiesStore(t *testing.T) {
	ctx := context.Background()
	var s Store[[]string] = NewLocal[[]string](10, time.Minute)

	if _, ok, err := s.Get(ctx, "x"); ok || err != nil {
		t.Fatalf("miss expected, got ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, "x:1", []string{"a"}); err != nil {
		t.Fatal(err)
	}
	if v, ok, err := s.Get(ctx, "x:1"); err != nil || !ok || len(v) != 1 {
		t.Fatalf("Get = %v %v %v", v, ok, err)
	}
}

func TestLocalConcurrentAccess(t *testing.T) {
	c := NewLocal[int](50, time.Minute)
	ctx := context.Background()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*200+i)%80)
				_ = c.Set(ctx, key, i)
				_, _, _ = c.Get(ctx, key)
				if i%50 == 0 {
					_ = c.DeletePrefix(ctx, "k1")
				}
			}
		}(g)
	}
	wg.Wait()
	if c.Len() > 50 {
		t.Fatalf("Len %d exceeds capacity", c.Len())
	}
}

func TestSweeper(t *testing.T) {
	c := NewLocal[int](10, time.Millisecond)
	set(t, c, "a", 1)

	removed := make(chan int, 1)
	s := NewSweeper(5*time.Millisecond, func(n int) {
		select {
		case removed <- n:
		default:
		}
	}, c)
	s.Start()
	defer s.Stop()

	select {
	case n := <-removed:
		if n != 1 {
			t.Fatalf("removed %d, want 1", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("sweep never ran")
	}

	s.Stop()
	s.Stop()
}

func TestDialRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := DialRedis(ctx, "127.0.0.1:1"); err == nil {
		t.Fatal("expected connection error")
	}
}

func TestGuardedSkipsWritesAfterInvalidation(t *testing.T) {
	ctx := context.Background()
	local := NewLocal[int](10, time.Minute)
	g := NewGuarded[int](local)

	stale := g.Token()
	if err := g.DeletePrefix(ctx, "trends:u1:"); err != nil {
		t.Fatal(err)
	}
	fresh := g.Token()

	tests := []struct {
		name  string
		key   string
		token uint64
		want  bool
	}{
		{"stale token under invalidated prefix", "trends:u1:a", stale, false},
		{"stale token under another prefix", "trends:u2:a", stale, true},
		{"token taken after invalidation", "trends:u1:b", fresh, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored, err := g.SetIfUnchanged(ctx, tt.key, 1, tt.token)
			if err != nil {
				t.Fatal(err)
			}
			if stored != tt.want {
				t.Fatalf("stored = %v, want %v", stored, tt.want)
			}
			if _, ok := get(t, local, tt.key); ok != tt.want {
				t.Fatalf("cached = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestGuardedResetTreatsOldTokensAsStale(t *testing.T) {
	ctx := context.Background()
	g := NewGuarded[int](NewLocal[int](10, time.Minute))

	old := g.Token()
	for i := 0; i <= maxTrackedPrefixes; i++ {
		if err := g.DeletePrefix(ctx, fmt.Sprintf("p%d:", i)); err != nil {
			t.Fatal(err)
		}
	}
	if len(g.invalidated) > maxTrackedPrefixes {
		t.Fatalf("invalidation log grew to %d", len(g.invalidated))
	}
	if stored, _ := g.SetIfUnchanged(ctx, "unrelated", 1, old); stored {
		t.Fatal("token from before the reset was accepted")
	}
	if stored, _ := g.SetIfUnchanged(ctx, "unrelated", 1, g.Token()); !stored {
		t.Fatal("current token was refused")
	}
}
