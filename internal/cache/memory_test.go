package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lxlab/oss-scout/internal/models"
)

func testResults() []models.ScoredRepo {
	return []models.ScoredRepo{
		{RawRepo: models.RawRepo{FullName: "a/one"}, Score: 0.9, Reason: "fits"},
		{RawRepo: models.RawRepo{FullName: "a/two"}, Score: 0.5, Reason: "okay"},
	}
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Hour, nil)
	ctx := context.Background()

	c.Put(ctx, "k1", testResults(), []string{"chat", "bot"})

	entry, ok := c.Get(ctx, "k1")
	if !ok {
		t.Fatal("expected hit")
	}
	if len(entry.Results) != 2 || entry.Results[0].FullName != "a/one" {
		t.Errorf("unexpected results: %+v", entry.Results)
	}
	if len(entry.IntentKeywords) != 2 {
		t.Errorf("unexpected keywords: %v", entry.IntentKeywords)
	}
}

func TestMemoryCache_MissOnUnknownKey(t *testing.T) {
	c := NewMemoryCache(time.Hour, nil)

	if _, ok := c.Get(context.Background(), "missing"); ok {
		t.Error("expected miss")
	}
}

func TestMemoryCache_ExpiryIsLazy(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	c := NewMemoryCache(time.Hour, clock)
	ctx := context.Background()
	c.Put(ctx, "k1", testResults(), nil)

	if _, ok := c.Get(ctx, "k1"); !ok {
		t.Fatal("entry should be alive before TTL")
	}

	now = now.Add(61 * time.Minute)
	if _, ok := c.Get(ctx, "k1"); ok {
		t.Fatal("entry should be expired after TTL")
	}

	// The expired entry was evicted, not just hidden.
	c.mu.RLock()
	_, stillThere := c.entries["k1"]
	c.mu.RUnlock()
	if stillThere {
		t.Error("expired entry should be evicted on lookup")
	}
}

func TestMemoryCache_ConcurrentReadersAndWriters(t *testing.T) {
	c := NewMemoryCache(time.Hour, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Put(ctx, "shared", testResults(), []string{"kw"})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if entry, ok := c.Get(ctx, "shared"); ok {
					// An observed entry must always be complete.
					if len(entry.Results) != 2 || entry.Results[0].Reason == "" {
						t.Error("observed a partially written entry")
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}

func TestNewCache_UnknownProvider(t *testing.T) {
	if _, err := NewCache("memcached", nil, time.Hour, nil); err == nil {
		t.Error("expected error for unsupported provider")
	}
}
