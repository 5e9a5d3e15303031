package models

import (
	"errors"
	"testing"
)

func TestNormalize_EmptyQuery(t *testing.T) {
	for _, query := range []string{"", "   ", "\t\n"} {
		req := DefaultRequest(query)
		if err := req.Normalize(); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("query %q: expected ErrInvalidRequest, got %v", query, err)
		}
	}
}

func TestNormalize_TrimsQuery(t *testing.T) {
	req := DefaultRequest("  irc client  ")
	if err := req.Normalize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Query != "irc client" {
		t.Errorf("expected trimmed query, got %q", req.Query)
	}
}

func TestNormalize_ClampsRanges(t *testing.T) {
	req := DefaultRequest("q")
	req.PerPage = 500
	req.Limit = -3
	req.Filters.MinStars = -1
	req.Filters.PushedWithinDays = -10

	if err := req.Normalize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.PerPage != maxPerPage {
		t.Errorf("per_page should clamp to %d, got %d", maxPerPage, req.PerPage)
	}
	if req.Limit != DefaultLimit {
		t.Errorf("limit should reset to default, got %d", req.Limit)
	}
	if req.Filters.MinStars != 0 || req.Filters.PushedWithinDays != 0 {
		t.Errorf("negative filters should clamp to 0, got %+v", req.Filters)
	}
}

func TestNormalize_Sort(t *testing.T) {
	req := DefaultRequest("q")
	req.Sort = ""
	if err := req.Normalize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Sort != SortBest {
		t.Errorf("empty sort should default to best, got %s", req.Sort)
	}

	req = DefaultRequest("q")
	req.Sort = "popularity"
	if err := req.Normalize(); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("unknown sort should be rejected, got %v", err)
	}
}

func TestCacheKey_Deterministic(t *testing.T) {
	a := DefaultRequest("IRC Client")
	b := DefaultRequest("irc client")

	if a.CacheKey() != b.CacheKey() {
		t.Error("cache key should be case-insensitive on the query")
	}
}

func TestCacheKey_SensitiveToResultShape(t *testing.T) {
	base := DefaultRequest("irc client")

	variants := []SearchRequest{}

	v := base
	v.Limit = 5
	variants = append(variants, v)

	v = base
	v.Sort = SortStars
	variants = append(variants, v)

	v = base
	v.Filters.MinStars = 100
	variants = append(variants, v)

	v = base
	v.Filters.IncludeReadme = false
	variants = append(variants, v)

	seen := map[string]bool{base.CacheKey(): true}
	for i, variant := range variants {
		key := variant.CacheKey()
		if seen[key] {
			t.Errorf("variant %d should produce a distinct key", i)
		}
		seen[key] = true
	}
}

func TestCacheKey_IgnoresUseCache(t *testing.T) {
	a := DefaultRequest("irc client")
	b := DefaultRequest("irc client")
	b.UseCache = false

	if a.CacheKey() != b.CacheKey() {
		t.Error("use_cache must not affect the cache key")
	}
}
