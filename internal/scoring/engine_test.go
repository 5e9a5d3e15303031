package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/lxlab/oss-scout/internal/config"
	"github.com/lxlab/oss-scout/internal/models"
)

var scoreNow = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(config.Default().Scoring)
}

func testRepo() models.RawRepo {
	return models.RawRepo{
		Name:        "chatbot",
		FullName:    "acme/chatbot",
		HTMLURL:     "https://github.com/acme/chatbot",
		Description: "An IRC chat bot with plugin support",
		Language:    "Go",
		Stars:       1200,
		PushedAt:    scoreNow.AddDate(0, 0, -30),
		Topics:      []string{"irc", "bot"},
	}
}

func TestScore_Deterministic(t *testing.T) {
	engine := newTestEngine()
	intent := models.Intent{Keywords: []string{"chatbot", "irc"}}

	first, _ := engine.Score(testRepo(), intent, 365, scoreNow)
	second, _ := engine.Score(testRepo(), intent, 365, scoreNow)

	if first != second {
		t.Errorf("score is not deterministic: %f vs %f", first, second)
	}
}

func TestScore_AlwaysInRange(t *testing.T) {
	engine := newTestEngine()

	repos := []models.RawRepo{
		{},
		testRepo(),
		{FullName: "x/y", Stars: 10_000_000, PushedAt: scoreNow.AddDate(1, 0, 0)},
		{FullName: "x/z", PushedAt: scoreNow.AddDate(-20, 0, 0)},
	}
	intents := []models.Intent{
		{},
		{Keywords: []string{"chatbot", "irc", "missing"}},
	}

	for _, repo := range repos {
		for _, intent := range intents {
			score, breakdown := engine.Score(repo, intent, 365, scoreNow)
			if score < 0 || score > 1 {
				t.Errorf("score %f out of range for %s", score, repo.FullName)
			}
			for _, sub := range []float64{breakdown.Popularity, breakdown.Freshness, breakdown.Relevance, breakdown.Docs} {
				if sub < 0 || sub > 1 {
					t.Errorf("sub-score %f out of range for %s", sub, repo.FullName)
				}
			}
		}
	}
}

func TestPopularity_MonotonicInStars(t *testing.T) {
	prev := -1.0
	for _, stars := range []int{0, 1, 10, 100, 5000, 100_000, 5_000_000} {
		score := popularityScore(stars)
		if score < prev {
			t.Errorf("popularity decreased at %d stars: %f < %f", stars, score, prev)
		}
		prev = score
	}
}

func TestFreshness_DecaysToZeroAtHorizon(t *testing.T) {
	fresh := freshnessScore(scoreNow.AddDate(0, 0, -1), 365, scoreNow)
	stale := freshnessScore(scoreNow.AddDate(0, 0, -200), 365, scoreNow)
	dead := freshnessScore(scoreNow.AddDate(0, 0, -400), 365, scoreNow)

	if !(fresh > stale) {
		t.Errorf("freshness should decay: %f <= %f", fresh, stale)
	}
	if dead != 0 {
		t.Errorf("freshness beyond horizon should be zero, got %f", dead)
	}
}

func TestFreshness_UnknownTimestampGetsPartialCredit(t *testing.T) {
	got := freshnessScore(time.Time{}, 365, scoreNow)
	if got != unknownFreshness {
		t.Errorf("expected %f for unknown timestamp, got %f", unknownFreshness, got)
	}
}

func TestRelevance_WeightsNameAndTopicsOverDescription(t *testing.T) {
	inName := models.RawRepo{FullName: "acme/streamer", Description: "tool"}
	inDescription := models.RawRepo{FullName: "acme/other", Description: "a streamer tool"}
	keywords := []string{"streamer"}

	nameScore := relevanceScore(inName, keywords)
	descScore := relevanceScore(inDescription, keywords)

	if !(nameScore > descScore) {
		t.Errorf("name match should beat description match: %f <= %f", nameScore, descScore)
	}
	if descScore == 0 {
		t.Error("description match should earn partial credit")
	}
}

func TestRelevance_CaseInsensitive(t *testing.T) {
	repo := models.RawRepo{FullName: "acme/ChatBot"}
	if relevanceScore(repo, []string{"chatbot"}) == 0 {
		t.Error("matching should be case-insensitive")
	}
}

func TestDocs_PartialCredit(t *testing.T) {
	none := docsScore(models.RawRepo{})
	descOnly := docsScore(models.RawRepo{Description: "documented"})
	full := docsScore(models.RawRepo{Description: "documented", Topics: []string{"cli"}})

	if none != 0 {
		t.Errorf("expected 0 for bare repo, got %f", none)
	}
	if !(descOnly > none && full > descOnly) {
		t.Errorf("docs credit should be additive: %f, %f, %f", none, descOnly, full)
	}
	if full != 1 {
		t.Errorf("full docs signal should be 1, got %f", full)
	}
}

func TestNewEngine_NormalizesWeights(t *testing.T) {
	engine := NewEngine(config.ScoringConfig{
		Weights: config.WeightsConfig{Popularity: 3, Freshness: 2.5, Relevance: 3, Docs: 1.5},
	})

	total := engine.weights.Popularity + engine.weights.Freshness +
		engine.weights.Relevance + engine.weights.Docs
	if math.Abs(total-1) > 1e-9 {
		t.Errorf("weights should normalize to 1, got %f", total)
	}
}
