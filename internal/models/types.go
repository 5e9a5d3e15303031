package models

import (
	"time"
)

type Sort string

const (
	SortBest    Sort = "best"
	SortStars   Sort = "stars"
	SortUpdated Sort = "updated"
)

// Filters narrow where keywords are matched and which repositories qualify.
type Filters struct {
	IncludeName        bool `json:"include_name"`
	IncludeDescription bool `json:"include_description"`
	IncludeReadme      bool `json:"include_readme"`
	IncludeTopics      bool `json:"include_topics"`
	MinStars           int  `json:"min_stars"`
	PushedWithinDays   int  `json:"pushed_within_days"`
}

// SearchRequest is the normalized caller input for one pipeline run.
// Normalize must be called before the request reaches the pipeline.
type SearchRequest struct {
	Query    string  `json:"query"`
	Filters  Filters `json:"filters"`
	PerPage  int     `json:"per_page"`
	Limit    int     `json:"limit"`
	Sort     Sort    `json:"sort"`
	UseCache bool    `json:"use_cache"`
}

// Intent is the structured search intent extracted from the raw query.
type Intent struct {
	Keywords  []string `json:"keywords"`
	Languages []string `json:"languages"`
}

// RawRepo is a repository record as returned by GitHub, coerced into typed
// fields at the client boundary. Not mutated after fetch.
type RawRepo struct {
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	HTMLURL     string    `json:"html_url"`
	Description string    `json:"description,omitempty"`
	Language    string    `json:"language,omitempty"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	OpenIssues  int       `json:"open_issues"`
	PushedAt    time.Time `json:"updated_at"`
	Topics      []string  `json:"topics"`
	License     string    `json:"license,omitempty"`
}

// ScoreBreakdown keeps the per-signal sub-scores for debugging and tests.
type ScoreBreakdown struct {
	Popularity float64 `json:"popularity"`
	Freshness  float64 `json:"freshness"`
	Relevance  float64 `json:"relevance"`
	Docs       float64 `json:"docs"`
}

// ScoredRepo is a RawRepo plus its composite score and, once reason
// generation has resolved, a justification. An item is complete only when
// both score and reason are set; the stream never emits an incomplete item.
type ScoredRepo struct {
	RawRepo
	Score     float64        `json:"score"`
	Breakdown ScoreBreakdown `json:"-"`
	Reason    string         `json:"reason"`
}

// CacheEntry is a fully assembled pipeline result stored under a request key.
type CacheEntry struct {
	Key            string       `json:"key"`
	Results        []ScoredRepo `json:"results"`
	IntentKeywords []string     `json:"intent_keywords"`
	ExpiresAt      time.Time    `json:"expires_at"`
}

func (e *CacheEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

type EventType string

const (
	EventIntent EventType = "intent"
	EventItem   EventType = "item"
	EventError  EventType = "error"
	EventDone   EventType = "done"
)

// Event is one message of the pipeline's output stream. Exactly one of the
// payload fields is meaningful depending on Type.
type Event struct {
	Type     EventType
	Keywords []string    // intent
	Item     *ScoredRepo // item
	Message  string      // error
	Count    int         // done
}

// SearchResponse is the buffered (non-streaming) form of a completed run.
type SearchResponse struct {
	Query          string       `json:"query"`
	IntentKeywords []string     `json:"intent_keywords"`
	Results        []ScoredRepo `json:"results"`
}
