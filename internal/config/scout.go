package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultIntentPrompt = `You turn user needs into concise GitHub search hints.
Return ONLY a JSON object with keys: keywords (list of short strings, at most 5) and languages (list of programming language names, may be empty).
Prefer concrete technology names and avoid hallucinating.

User need: {{.Query}}`

const defaultReasonPrompt = `You craft concise, factual recommendations for GitHub repos.
Base your answer only on the provided metadata. Answer in 1-2 sentences.
Mention suitability for the need, and any risks (maintenance, docs).

User need: {{.Query}}
Repo: {{.FullName}}
Description: {{.Description}}
Stars: {{.Stars}}, Last push: {{.PushedAt}}, Language: {{.Language}}
Topics: {{.Topics}}
Matched keywords: {{.Matched}}`

// Load reads the scout config from SCOUT_CONFIG_PATH (default
// configs/scout.yaml). A missing file is not an error: the built-in defaults
// are returned so the pipeline can run without any config on disk.
func Load() (*ScoutConfig, error) {
	path := os.Getenv("SCOUT_CONFIG_PATH")
	if path == "" {
		path = "configs/scout.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := Default()
			return cfg, nil
		}
		return nil, err
	}

	var cfg ScoutConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no YAML file is present.
func Default() *ScoutConfig {
	cfg := &ScoutConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *ScoutConfig) {
	w := &cfg.Scoring.Weights
	if w.Popularity == 0 && w.Freshness == 0 && w.Relevance == 0 && w.Docs == 0 {
		*w = WeightsConfig{
			Popularity: 0.30,
			Freshness:  0.25,
			Relevance:  0.30,
			Docs:       0.15,
		}
	}

	if cfg.Intent.Prompt == "" {
		cfg.Intent.Prompt = defaultIntentPrompt
	}
	if cfg.Intent.Model == nil {
		cfg.Intent.Model = &ModelConfig{MaxTokens: 256, Temperature: 0.2}
	}
	if cfg.Intent.Model.MaxTokens == 0 {
		cfg.Intent.Model.MaxTokens = 256
	}

	if cfg.Reason.Prompt == "" {
		cfg.Reason.Prompt = defaultReasonPrompt
	}
	if cfg.Reason.Model == nil {
		cfg.Reason.Model = &ModelConfig{MaxTokens: 200, Temperature: 0.3}
	}
	if cfg.Reason.Model.MaxTokens == 0 {
		cfg.Reason.Model.MaxTokens = 200
	}
}

func (c *ScoutConfig) Validate() error {
	w := c.Scoring.Weights
	if w.Popularity < 0 || w.Freshness < 0 || w.Relevance < 0 || w.Docs < 0 {
		return fmt.Errorf("scoring weights must be non-negative")
	}
	if w.Popularity+w.Freshness+w.Relevance+w.Docs == 0 {
		return fmt.Errorf("at least one scoring weight must be positive")
	}
	return nil
}
