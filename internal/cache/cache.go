// Package cache memoizes completed pipeline runs keyed by normalized
// request. Entries are published atomically: a reader either sees a fully
// assembled entry or nothing.
package cache

import (
	"context"
	"time"

	"github.com/lxlab/oss-scout/internal/models"
)

// Cache is the TTL store consulted before a pipeline run. A backend must
// treat expired entries as absent and must never surface a partially
// written entry. Backend failures are absorbed as misses; caching is an
// optimization, never a correctness dependency.
type Cache interface {
	Get(ctx context.Context, key string) (*models.CacheEntry, bool)
	Put(ctx context.Context, key string, results []models.ScoredRepo, intentKeywords []string)
}

// Clock abstracts time for TTL decisions so expiry is testable.
type Clock func() time.Time
