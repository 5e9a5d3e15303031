package reason

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lxlab/oss-scout/internal/config"
	"github.com/lxlab/oss-scout/internal/llm"
	"github.com/lxlab/oss-scout/internal/models"
)

type mockLLMClient struct {
	response *llm.LLMResponse
	err      error
	delay    time.Duration
	calls    int
}

func (m *mockLLMClient) InvokeModel(ctx context.Context, req llm.LLMRequest) (*llm.LLMResponse, error) {
	m.calls++
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *mockLLMClient) InvokeModelWithRetry(ctx context.Context, req llm.LLMRequest) (*llm.LLMResponse, error) {
	return m.InvokeModel(ctx, req)
}

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func newGenerator(t *testing.T, client llm.LLMClient, timeout time.Duration) *Generator {
	t.Helper()
	g, err := NewGenerator(client, config.Default().Reason, timeout, newTestLogger())
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	return g
}

func scoredRepo() models.ScoredRepo {
	return models.ScoredRepo{
		RawRepo: models.RawRepo{
			FullName:    "acme/chatbot",
			Description: "An IRC chat bot",
			Stars:       420,
			PushedAt:    time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
			Topics:      []string{"irc"},
		},
		Score: 0.8,
	}
}

func TestExplain_UsesModelAnswer(t *testing.T) {
	client := &mockLLMClient{response: &llm.LLMResponse{Content: "  Solid fit for IRC bots.  "}}
	g := newGenerator(t, client, 0)

	got := g.Explain(context.Background(), scoredRepo(), models.Intent{Keywords: []string{"irc"}}, "irc bot")

	if got != "Solid fit for IRC bots." {
		t.Errorf("unexpected reason %q", got)
	}
}

func TestExplain_FallsBackOnError(t *testing.T) {
	client := &mockLLMClient{err: errors.New("quota exceeded")}
	g := newGenerator(t, client, 0)

	got := g.Explain(context.Background(), scoredRepo(), models.Intent{Keywords: []string{"irc", "kafka"}}, "irc bot")

	if got == "" {
		t.Fatal("fallback reason must not be empty")
	}
	if !strings.Contains(got, "irc") || !strings.Contains(got, "420 stars") {
		t.Errorf("expected templated fallback with matched keywords and stars, got %q", got)
	}
	if strings.Contains(got, "kafka") {
		t.Errorf("unmatched keyword should not appear in fallback: %q", got)
	}
}

func TestExplain_FallsBackOnEmptyContent(t *testing.T) {
	client := &mockLLMClient{response: &llm.LLMResponse{Content: "   "}}
	g := newGenerator(t, client, 0)

	got := g.Explain(context.Background(), scoredRepo(), models.Intent{}, "irc bot")

	if got == "" {
		t.Fatal("fallback reason must not be empty")
	}
	if !strings.Contains(got, "your query") {
		t.Errorf("fallback without matches should reference the query, got %q", got)
	}
}

func TestExplain_TimeoutDegrades(t *testing.T) {
	client := &mockLLMClient{
		response: &llm.LLMResponse{Content: "too late"},
		delay:    200 * time.Millisecond,
	}
	g := newGenerator(t, client, 10*time.Millisecond)

	got := g.Explain(context.Background(), scoredRepo(), models.Intent{}, "irc bot")

	if got == "" || got == "too late" {
		t.Errorf("expected templated fallback on timeout, got %q", got)
	}
}

func TestExplain_NilClientUsesTemplate(t *testing.T) {
	g := newGenerator(t, nil, 0)

	got := g.Explain(context.Background(), scoredRepo(), models.Intent{Keywords: []string{"irc"}}, "irc bot")

	if !strings.Contains(got, "Matches on irc") {
		t.Errorf("expected templated reason, got %q", got)
	}
}

func TestFallbackReason_UnknownDate(t *testing.T) {
	got := FallbackReason(models.RawRepo{FullName: "a/b", Stars: 3}, nil)

	if !strings.Contains(got, "updated unknown") {
		t.Errorf("expected unknown date marker, got %q", got)
	}
}
