package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryContinentCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryContinentCache(time.Minute)

	if _, ok, _ := c.Get(ctx, "Europe"); ok {
		t.Fatalf("expected miss on empty cache")
	}
	if err := c.Set(ctx, "Europe", 7); err != nil {
		t.Fatalf("Set: %v", err)
	}
	id, ok, err := c.Get(ctx, "Europe")
	if err != nil || !ok || id != 7 {
		t.Fatalf("Get: want=(7,true) got=(%d,%v) err=%v", id, ok, err)
	}
	if err := c.Delete(ctx, "Europe"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "Europe"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestMemoryContinentCacheExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	c := &memoryContinentCache{ttl: time.Second, now: func() time.Time { return now }, entries: map[string]memoryEntry{}}

	_ = c.Set(ctx, "Asia", 3)
	now = now.Add(2 * time.Second)
	if _, ok, _ := c.Get(ctx, "Asia"); ok {
		t.Fatalf("expected expired entry to miss")
	}
}
