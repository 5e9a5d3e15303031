package config

// ScoutConfig is the complete pipeline configuration loaded from YAML.
type ScoutConfig struct {
	Scoring ScoringConfig `yaml:"scoring"`
	Intent  PromptConfig  `yaml:"intent"`
	Reason  PromptConfig  `yaml:"reason"`
}

// ScoringConfig holds the weights of the composite score. Weights are
// normalized to sum to 1 when the config is loaded.
type ScoringConfig struct {
	Weights WeightsConfig `yaml:"weights"`
}

type WeightsConfig struct {
	Popularity float64 `yaml:"popularity"`
	Freshness  float64 `yaml:"freshness"`
	Relevance  float64 `yaml:"relevance"`
	Docs       float64 `yaml:"docs"`
}

// PromptConfig pairs a prompt template with the model parameters used when
// rendering it against the LLM.
type PromptConfig struct {
	Prompt string       `yaml:"prompt"`
	Model  *ModelConfig `yaml:"model"`
}

type ModelConfig struct {
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	Retry       bool    `yaml:"retry"`
}
