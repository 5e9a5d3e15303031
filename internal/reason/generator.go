// Package reason produces the short natural-language justification attached
// to each recommended repository. Generation degrades to a deterministic
// template whenever the model misbehaves; a missing LLM-authored reason must
// never block the stream.
package reason

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/lxlab/oss-scout/internal/config"
	"github.com/lxlab/oss-scout/internal/llm"
	"github.com/lxlab/oss-scout/internal/models"
)

type Generator struct {
	llmClient      llm.LLMClient
	promptTemplate *template.Template
	modelConfig    config.ModelConfig
	timeout        time.Duration
	logger         *zerolog.Logger
}

// NewGenerator builds a generator. llmClient may be nil, in which case every
// reason takes the template path.
func NewGenerator(llmClient llm.LLMClient, promptCfg config.PromptConfig, timeout time.Duration, logger *zerolog.Logger) (*Generator, error) {
	tmpl, err := template.New("reason").Parse(promptCfg.Prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reason prompt template: %w", err)
	}

	if promptCfg.Model == nil {
		return nil, fmt.Errorf("reason prompt has nil model config (should be populated by config loader)")
	}

	return &Generator{
		llmClient:      llmClient,
		promptTemplate: tmpl,
		modelConfig:    *promptCfg.Model,
		timeout:        timeout,
		logger:         logger,
	}, nil
}

type promptData struct {
	Query       string
	FullName    string
	Description string
	Stars       int
	PushedAt    string
	Language    string
	Topics      string
	Matched     string
}

// Explain returns a 1-2 sentence justification for the repository. The
// returned string is never empty: any failure falls back to a template built
// from the repo's metadata.
func (g *Generator) Explain(ctx context.Context, repo models.ScoredRepo, intent models.Intent, rawQuery string) string {
	matched := matchedKeywords(repo.RawRepo, intent.Keywords)

	if g.llmClient == nil {
		return FallbackReason(repo.RawRepo, matched)
	}

	prompt, err := g.buildPrompt(repo, rawQuery, matched)
	if err != nil {
		g.logger.Error().Err(err).Str("repo", repo.FullName).Msg("failed to build reason prompt")
		return FallbackReason(repo.RawRepo, matched)
	}

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	req := llm.LLMRequest{
		Prompt:      prompt,
		MaxTokens:   g.modelConfig.MaxTokens,
		Temperature: g.modelConfig.Temperature,
	}

	var resp *llm.LLMResponse
	if g.modelConfig.Retry {
		resp, err = g.llmClient.InvokeModelWithRetry(callCtx, req)
	} else {
		resp, err = g.llmClient.InvokeModel(callCtx, req)
	}
	if err != nil {
		g.logger.Warn().Err(err).Str("repo", repo.FullName).Msg("reason LLM call failed, using template fallback")
		return FallbackReason(repo.RawRepo, matched)
	}

	reason := strings.TrimSpace(resp.Content)
	if reason == "" {
		g.logger.Warn().Str("repo", repo.FullName).Msg("reason LLM returned empty content, using template fallback")
		return FallbackReason(repo.RawRepo, matched)
	}

	return reason
}

func (g *Generator) buildPrompt(repo models.ScoredRepo, rawQuery string, matched []string) (string, error) {
	data := promptData{
		Query:       rawQuery,
		FullName:    repo.FullName,
		Description: repo.Description,
		Stars:       repo.Stars,
		PushedAt:    formatDate(repo.PushedAt),
		Language:    repo.Language,
		Topics:      strings.Join(repo.Topics, ", "),
		Matched:     strings.Join(matched, ", "),
	}

	var buf bytes.Buffer
	if err := g.promptTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FallbackReason is the deterministic reason used when the model cannot
// provide one.
func FallbackReason(repo models.RawRepo, matched []string) string {
	on := "your query"
	if len(matched) > 0 {
		on = strings.Join(matched, ", ")
	}
	return fmt.Sprintf("Matches on %s; %d stars, updated %s.", on, repo.Stars, formatDate(repo.PushedAt))
}

func matchedKeywords(repo models.RawRepo, keywords []string) []string {
	haystack := strings.ToLower(repo.FullName + " " + repo.Description + " " + strings.Join(repo.Topics, " "))

	var matched []string
	for _, kw := range keywords {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}

func formatDate(ts time.Time) string {
	if ts.IsZero() {
		return "unknown"
	}
	return ts.Format("2006-01-02")
}
