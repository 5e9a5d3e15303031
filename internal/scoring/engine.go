// Package scoring computes the composite relevance score of a repository.
// Everything is deterministic and free of I/O so the ranking can be unit
// tested in isolation.
package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/lxlab/oss-scout/internal/config"
	"github.com/lxlab/oss-scout/internal/models"
)

// starSaturation is the star count at which the popularity signal reaches
// its maximum on the log curve.
const starSaturation = 100_000

// defaultHorizonDays bounds the freshness decay when the caller did not
// restrict recency.
const defaultHorizonDays = 1825

// unknownFreshness is the neutral freshness credit for records without a
// usable push timestamp.
const unknownFreshness = 0.2

type Weights struct {
	Popularity float64
	Freshness  float64
	Relevance  float64
	Docs       float64
}

type Engine struct {
	weights Weights
}

// NewEngine normalizes the configured weights so the composite score always
// lands in [0, 1] regardless of how the YAML distributes them.
func NewEngine(cfg config.ScoringConfig) *Engine {
	w := Weights{
		Popularity: cfg.Weights.Popularity,
		Freshness:  cfg.Weights.Freshness,
		Relevance:  cfg.Weights.Relevance,
		Docs:       cfg.Weights.Docs,
	}

	total := w.Popularity + w.Freshness + w.Relevance + w.Docs
	if total > 0 {
		w.Popularity /= total
		w.Freshness /= total
		w.Relevance /= total
		w.Docs /= total
	}

	return &Engine{weights: w}
}

// Score combines the four sub-scores under the engine's weights. horizonDays
// is the caller's pushed-within filter; freshness decays smoothly toward
// zero at that horizon. now is passed in so identical inputs always yield
// identical scores.
func (e *Engine) Score(repo models.RawRepo, intent models.Intent, horizonDays int, now time.Time) (float64, models.ScoreBreakdown) {
	breakdown := models.ScoreBreakdown{
		Popularity: popularityScore(repo.Stars),
		Freshness:  freshnessScore(repo.PushedAt, horizonDays, now),
		Relevance:  relevanceScore(repo, intent.Keywords),
		Docs:       docsScore(repo),
	}

	score := e.weights.Popularity*breakdown.Popularity +
		e.weights.Freshness*breakdown.Freshness +
		e.weights.Relevance*breakdown.Relevance +
		e.weights.Docs*breakdown.Docs

	return round3(clamp01(score)), breakdown
}

// popularityScore grows logarithmically with stars and saturates at
// starSaturation.
func popularityScore(stars int) float64 {
	if stars <= 0 {
		return 0
	}
	return clamp01(math.Log1p(float64(stars)) / math.Log1p(starSaturation))
}

// freshnessScore decays linearly from 1 (pushed now) to 0 at the horizon.
// The hard recency cutoff already happened in the search query; this signal
// only orders what survived it.
func freshnessScore(pushedAt time.Time, horizonDays int, now time.Time) float64 {
	if pushedAt.IsZero() {
		return unknownFreshness
	}
	if horizonDays <= 0 {
		horizonDays = defaultHorizonDays
	}

	days := now.Sub(pushedAt).Hours() / 24
	if days <= 0 {
		return 1
	}
	return clamp01(1 - days/float64(horizonDays))
}

// relevanceScore is the fraction of keywords found in the repository's
// metadata, weighted toward name and topics: a keyword seen only in the
// description earns partial credit.
func relevanceScore(repo models.RawRepo, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}

	name := strings.ToLower(repo.FullName)
	description := strings.ToLower(repo.Description)
	topics := strings.ToLower(strings.Join(repo.Topics, " "))

	var credit float64
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		switch {
		case strings.Contains(name, kw) || strings.Contains(topics, kw):
			credit += 1.0
		case strings.Contains(description, kw):
			credit += 0.6
		}
	}

	return clamp01(credit / float64(len(keywords)))
}

// docsScore gives partial credit for the two cheap documentation signals
// available on a search record.
func docsScore(repo models.RawRepo) float64 {
	var score float64
	if strings.TrimSpace(repo.Description) != "" {
		score += 0.6
	}
	if len(repo.Topics) > 0 {
		score += 0.4
	}
	return score
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
