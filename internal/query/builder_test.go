package query

import (
	"strings"
	"testing"
	"time"

	"github.com/lxlab/oss-scout/internal/models"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestBuild_KeywordsAndScopes(t *testing.T) {
	intent := models.Intent{Keywords: []string{"chatbot", "irc"}}
	filters := models.Filters{IncludeName: true, IncludeDescription: true}

	q := Build(intent, filters, "chat bot", testNow)

	if !strings.HasPrefix(q, "chatbot irc ") {
		t.Errorf("expected terms first, got %q", q)
	}
	if !strings.Contains(q, "in:name,description") {
		t.Errorf("expected scope qualifier, got %q", q)
	}
}

func TestBuild_DefaultScopeWhenNoneEnabled(t *testing.T) {
	q := Build(models.Intent{Keywords: []string{"cli"}}, models.Filters{}, "cli", testNow)

	if !strings.Contains(q, "in:description,readme") {
		t.Errorf("expected default scope, got %q", q)
	}
}

func TestBuild_Qualifiers(t *testing.T) {
	intent := models.Intent{Keywords: []string{"scraper"}, Languages: []string{"go"}}
	filters := models.Filters{
		IncludeDescription: true,
		MinStars:           100,
		PushedWithinDays:   30,
	}

	q := Build(intent, filters, "scraper", testNow)

	if !strings.Contains(q, "stars:>=100") {
		t.Errorf("missing stars qualifier: %q", q)
	}
	if !strings.Contains(q, "pushed:>=2025-05-16") {
		t.Errorf("missing or wrong pushed qualifier: %q", q)
	}
	if !strings.Contains(q, "language:go") {
		t.Errorf("missing language qualifier: %q", q)
	}
}

func TestBuild_TopicQualifiers(t *testing.T) {
	intent := models.Intent{Keywords: []string{"vector db", "milvus", "向量"}}
	filters := models.Filters{IncludeDescription: true, IncludeTopics: true}

	q := Build(intent, filters, "vector database", testNow)

	if !strings.Contains(q, "topic:milvus") {
		t.Errorf("expected topic qualifier for single ascii keyword: %q", q)
	}
	if strings.Contains(q, `topic:vector db`) || strings.Contains(q, "topic:向量") {
		t.Errorf("multi-word or non-ascii keywords must not become topics: %q", q)
	}
}

func TestBuild_EmptyKeywordsFallsBackToRawQuery(t *testing.T) {
	q := Build(models.Intent{}, models.Filters{IncludeDescription: true}, "live stream chat", testNow)

	if q == "" {
		t.Fatal("query must never be empty")
	}
	if !strings.Contains(q, `"live stream chat"`) {
		t.Errorf("expected quoted raw query phrase, got %q", q)
	}
}

func TestBuild_QuotesSyntaxSignificantTerms(t *testing.T) {
	intent := models.Intent{Keywords: []string{"chat bot", `evil"term`, "stars:>5"}}

	q := Build(intent, models.Filters{IncludeDescription: true}, "x", testNow)

	if !strings.Contains(q, `"chat bot"`) {
		t.Errorf("multi-word term should be quoted: %q", q)
	}
	if strings.Contains(q, `evil"term`) {
		t.Errorf("embedded quotes should be stripped: %q", q)
	}
	if !strings.Contains(q, `"stars:>5"`) {
		t.Errorf("colon term should be quoted, not act as qualifier: %q", q)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	intent := models.Intent{Keywords: []string{"a", "b"}, Languages: []string{"go"}}
	filters := models.Filters{IncludeName: true, MinStars: 5, PushedWithinDays: 10}

	first := Build(intent, filters, "a b", testNow)
	second := Build(intent, filters, "a b", testNow)

	if first != second {
		t.Errorf("Build is not deterministic: %q vs %q", first, second)
	}
}
