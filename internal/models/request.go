package models

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidRequest = errors.New("invalid search request")

const (
	DefaultPerPage          = 12
	DefaultLimit            = 10
	DefaultPushedWithinDays = 1825

	maxPerPage = 50
	maxLimit   = 50
)

// DefaultRequest returns a SearchRequest with every field at its default,
// ready for the caller to set Query.
func DefaultRequest(query string) SearchRequest {
	return SearchRequest{
		Query: query,
		Filters: Filters{
			IncludeName:        true,
			IncludeDescription: true,
			IncludeReadme:      true,
			IncludeTopics:      true,
			PushedWithinDays:   DefaultPushedWithinDays,
		},
		PerPage:  DefaultPerPage,
		Limit:    DefaultLimit,
		Sort:     SortBest,
		UseCache: true,
	}
}

// Normalize validates the request and clamps out-of-range fields.
// It rejects an empty query before any upstream call is made.
func (r *SearchRequest) Normalize() error {
	r.Query = strings.TrimSpace(r.Query)
	if r.Query == "" {
		return fmt.Errorf("%w: empty query", ErrInvalidRequest)
	}

	if r.PerPage < 1 {
		r.PerPage = DefaultPerPage
	}
	if r.PerPage > maxPerPage {
		r.PerPage = maxPerPage
	}
	if r.Limit < 1 {
		r.Limit = DefaultLimit
	}
	if r.Limit > maxLimit {
		r.Limit = maxLimit
	}
	if r.Filters.MinStars < 0 {
		r.Filters.MinStars = 0
	}
	if r.Filters.PushedWithinDays < 0 {
		r.Filters.PushedWithinDays = 0
	}

	switch r.Sort {
	case SortBest, SortStars, SortUpdated:
	case "":
		r.Sort = SortBest
	default:
		return fmt.Errorf("%w: unknown sort %q", ErrInvalidRequest, r.Sort)
	}

	return nil
}

// CacheKey hashes every field that affects the result set. UseCache itself is
// deliberately excluded so a cache-bypassing run still refreshes the same key.
func (r *SearchRequest) CacheKey() string {
	canonical := fmt.Sprintf("q=%s|name=%t|desc=%t|readme=%t|topics=%t|stars=%d|pushed=%d|per=%d|limit=%d|sort=%s",
		strings.ToLower(r.Query),
		r.Filters.IncludeName,
		r.Filters.IncludeDescription,
		r.Filters.IncludeReadme,
		r.Filters.IncludeTopics,
		r.Filters.MinStars,
		r.Filters.PushedWithinDays,
		r.PerPage,
		r.Limit,
		r.Sort,
	)

	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
