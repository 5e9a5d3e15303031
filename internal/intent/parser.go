package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/lxlab/oss-scout/internal/config"
	"github.com/lxlab/oss-scout/internal/llm"
	"github.com/lxlab/oss-scout/internal/models"
)

const maxKeywords = 5

// Parser extracts structured search intent from a free-text query. It asks
// the LLM for a constrained JSON answer and falls back to a deterministic
// token heuristic whenever the model is unavailable, times out, or returns
// something that does not parse. Parse never fails the pipeline.
type Parser struct {
	llmClient      llm.LLMClient
	promptTemplate *template.Template
	modelConfig    config.ModelConfig
	timeout        time.Duration
	logger         *zerolog.Logger
}

// NewParser builds a parser. llmClient may be nil, in which case every query
// takes the heuristic path.
func NewParser(llmClient llm.LLMClient, promptCfg config.PromptConfig, timeout time.Duration, logger *zerolog.Logger) (*Parser, error) {
	tmpl, err := template.New("intent").Parse(promptCfg.Prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse intent prompt template: %w", err)
	}

	if promptCfg.Model == nil {
		return nil, fmt.Errorf("intent prompt has nil model config (should be populated by config loader)")
	}

	return &Parser{
		llmClient:      llmClient,
		promptTemplate: tmpl,
		modelConfig:    *promptCfg.Model,
		timeout:        timeout,
		logger:         logger,
	}, nil
}

// llmIntent is the JSON shape requested from the model. Model output is
// untrusted text, so every field is re-validated after unmarshaling.
type llmIntent struct {
	Keywords  []string `json:"keywords"`
	Languages []string `json:"languages"`
}

func (p *Parser) Parse(ctx context.Context, rawQuery string) models.Intent {
	if p.llmClient == nil {
		return HeuristicParse(rawQuery)
	}

	prompt, err := p.buildPrompt(rawQuery)
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to build intent prompt")
		return HeuristicParse(rawQuery)
	}

	callCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	req := llm.LLMRequest{
		Prompt:      prompt,
		MaxTokens:   p.modelConfig.MaxTokens,
		Temperature: p.modelConfig.Temperature,
	}

	var resp *llm.LLMResponse
	if p.modelConfig.Retry {
		resp, err = p.llmClient.InvokeModelWithRetry(callCtx, req)
	} else {
		resp, err = p.llmClient.InvokeModel(callCtx, req)
	}
	if err != nil {
		p.logger.Warn().Err(err).Msg("intent LLM call failed, using heuristic keywords")
		return HeuristicParse(rawQuery)
	}

	content := stripMarkdownCodeBlock(resp.Content)
	var parsed llmIntent
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		p.logger.Warn().Err(err).Str("content", resp.Content).Msg("failed to deserialize intent response, using heuristic keywords")
		return HeuristicParse(rawQuery)
	}

	intent := sanitize(parsed)
	if len(intent.Keywords) == 0 {
		p.logger.Warn().Msg("intent response had no usable keywords, using heuristic keywords")
		return HeuristicParse(rawQuery)
	}

	return intent
}

func (p *Parser) buildPrompt(rawQuery string) (string, error) {
	var buf bytes.Buffer
	err := p.promptTemplate.Execute(&buf, struct{ Query string }{Query: rawQuery})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func sanitize(parsed llmIntent) models.Intent {
	var intent models.Intent

	for _, kw := range parsed.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		intent.Keywords = append(intent.Keywords, kw)
		if len(intent.Keywords) == maxKeywords {
			break
		}
	}

	for _, lang := range parsed.Languages {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if lang == "" {
			continue
		}
		if !contains(intent.Languages, lang) {
			intent.Languages = append(intent.Languages, lang)
		}
	}

	return intent
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// stripMarkdownCodeBlock removes a surrounding ```json fence when the model
// wraps its answer in one.
func stripMarkdownCodeBlock(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		if idx := strings.Index(content, "\n"); idx != -1 {
			content = content[idx+1:]
		}
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	return strings.TrimSpace(content)
}
