// Package pipeline wires intent parsing, search, scoring, and reason
// generation into a single event-producing run per request.
package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/lxlab/oss-scout/internal/models"
	"github.com/lxlab/oss-scout/internal/query"
)

//go:generate mockgen -source=coordinator.go -destination=mocks/mock_coordinator.go -package=mocks

// IntentParser extracts structured intent from a raw query. It degrades
// instead of failing, so it has no error return.
type IntentParser interface {
	Parse(ctx context.Context, rawQuery string) models.Intent
}

// SearchProvider fetches candidate repositories for a built query string.
type SearchProvider interface {
	Search(ctx context.Context, query string, perPage, pageLimit int) ([]models.RawRepo, error)
}

// Scorer computes the composite score for one repository.
type Scorer interface {
	Score(repo models.RawRepo, intent models.Intent, horizonDays int, now time.Time) (float64, models.ScoreBreakdown)
}

// Explainer attaches reasons to scored repositories, returning them on a
// channel as each finishes. The channel must be closed once all inputs are
// resolved or abandoned.
type Explainer interface {
	Run(ctx context.Context, repos []models.ScoredRepo, intent models.Intent, rawQuery string) <-chan models.ScoredRepo
}

// ResultCache memoizes completed runs.
type ResultCache interface {
	Get(ctx context.Context, key string) (*models.CacheEntry, bool)
	Put(ctx context.Context, key string, results []models.ScoredRepo, intentKeywords []string)
}

const searchUnavailableMsg = "repository search is temporarily unavailable, please retry"

// StreamCoordinator drives one search request through the pipeline and
// emits the result as an ordered event stream: an intent event, then item
// events as reasons complete, then exactly one done or error event.
type StreamCoordinator struct {
	parser    IntentParser
	search    SearchProvider
	scorer    Scorer
	explainer Explainer
	cache     ResultCache
	pageLimit int
	now       func() time.Time
	logger    *zerolog.Logger
}

func NewStreamCoordinator(
	parser IntentParser,
	search SearchProvider,
	scorer Scorer,
	explainer Explainer,
	resultCache ResultCache,
	pageLimit int,
	logger *zerolog.Logger,
) *StreamCoordinator {
	if pageLimit < 1 {
		pageLimit = 1
	}

	return &StreamCoordinator{
		parser:    parser,
		search:    search,
		scorer:    scorer,
		explainer: explainer,
		cache:     resultCache,
		pageLimit: pageLimit,
		now:       time.Now,
		logger:    logger,
	}
}

// Run executes the pipeline for req and returns the event stream. The
// channel is always closed, at the latest when ctx is cancelled. A stream
// terminates with exactly one done or error event; after an error no
// further events follow.
func (c *StreamCoordinator) Run(ctx context.Context, req models.SearchRequest) <-chan models.Event {
	out := make(chan models.Event)

	go func() {
		defer close(out)
		c.run(ctx, req, out)
	}()

	return out
}

func (c *StreamCoordinator) run(ctx context.Context, req models.SearchRequest, out chan<- models.Event) {
	if err := req.Normalize(); err != nil {
		c.emit(ctx, out, models.Event{Type: models.EventError, Message: err.Error()})
		return
	}

	key := req.CacheKey()

	if req.UseCache {
		if entry, ok := c.cache.Get(ctx, key); ok {
			c.logger.Debug().Str("key", key).Msg("cache hit, replaying stored results")
			c.replay(ctx, out, entry)
			return
		}
	}

	intent := c.parser.Parse(ctx, req.Query)
	if len(intent.Keywords) == 0 {
		intent.Keywords = []string{req.Query}
	}

	if !c.emit(ctx, out, models.Event{Type: models.EventIntent, Keywords: intent.Keywords}) {
		return
	}

	builtQuery := query.Build(intent, req.Filters, req.Query, c.now())

	repos, err := c.search.Search(ctx, builtQuery, req.PerPage, c.pageLimit)
	if err != nil && len(repos) == 0 {
		if ctx.Err() != nil {
			return
		}
		c.logger.Error().Err(err).Str("query", builtQuery).Msg("search failed")
		c.emit(ctx, out, models.Event{Type: models.EventError, Message: searchUnavailableMsg})
		return
	}
	if err != nil {
		c.logger.Warn().Err(err).Int("partial", len(repos)).Msg("continuing with partial search results")
	}

	if len(repos) == 0 {
		c.emit(ctx, out, models.Event{Type: models.EventDone, Count: 0})
		return
	}

	top := c.rank(repos, intent, req)

	reasons := make(map[string]string, len(top))
	emitted := 0
	for item := range c.explainer.Run(ctx, top, intent, req.Query) {
		reasons[item.FullName] = item.Reason

		copied := item
		if !c.emit(ctx, out, models.Event{Type: models.EventItem, Item: &copied}) {
			return
		}
		emitted++
	}

	if ctx.Err() != nil {
		return
	}

	// Cache only complete, uninterrupted runs, and cache them in rank
	// order regardless of reason completion order.
	if req.UseCache && emitted == len(top) {
		final := make([]models.ScoredRepo, len(top))
		for i, item := range top {
			item.Reason = reasons[item.FullName]
			final[i] = item
		}
		c.cache.Put(ctx, key, final, intent.Keywords)
	}

	c.emit(ctx, out, models.Event{Type: models.EventDone, Count: emitted})
}

// rank scores every candidate, orders them by the requested sort, and
// truncates to the request limit. Ties break on full name so a given
// request always yields the same ranking.
func (c *StreamCoordinator) rank(repos []models.RawRepo, intent models.Intent, req models.SearchRequest) []models.ScoredRepo {
	now := c.now()

	scored := make([]models.ScoredRepo, 0, len(repos))
	for _, repo := range repos {
		score, breakdown := c.scorer.Score(repo, intent, req.Filters.PushedWithinDays, now)
		scored = append(scored, models.ScoredRepo{
			RawRepo:   repo,
			Score:     score,
			Breakdown: breakdown,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return ranksBefore(req.Sort, scored[i], scored[j])
	})

	if len(scored) > req.Limit {
		scored = scored[:req.Limit]
	}

	return scored
}

// ranksBefore reports whether a sorts ahead of b under the given mode.
func ranksBefore(mode models.Sort, a, b models.ScoredRepo) bool {
	switch mode {
	case models.SortStars:
		if a.Stars != b.Stars {
			return a.Stars > b.Stars
		}
	case models.SortUpdated:
		if !a.PushedAt.Equal(b.PushedAt) {
			return a.PushedAt.After(b.PushedAt)
		}
	default:
		if a.Score != b.Score {
			return a.Score > b.Score
		}
	}
	return a.FullName < b.FullName
}

// replay re-emits a cached run as a fresh stream.
func (c *StreamCoordinator) replay(ctx context.Context, out chan<- models.Event, entry *models.CacheEntry) {
	if !c.emit(ctx, out, models.Event{Type: models.EventIntent, Keywords: entry.IntentKeywords}) {
		return
	}

	for i := range entry.Results {
		item := entry.Results[i]
		if !c.emit(ctx, out, models.Event{Type: models.EventItem, Item: &item}) {
			return
		}
	}

	c.emit(ctx, out, models.Event{Type: models.EventDone, Count: len(entry.Results)})
}

func (c *StreamCoordinator) emit(ctx context.Context, out chan<- models.Event, ev models.Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
