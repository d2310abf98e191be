package model

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"
)

// Provider identifies which HTTP API serves a model.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// Registry errors.
var (
	ErrUnknownModel  = errors.New("unknown model code")
	ErrMissingAPIKey = errors.New("missing API key")
)

// ModelConfig describes one selectable model. The code is what users type;
// the model id is what the provider API expects.
type ModelConfig struct {
	Code        string
	Provider    Provider
	ModelID     string
	Description string
}

// EnvVar returns the environment variable holding the provider's API key.
func (c ModelConfig) EnvVar() string {
	if c.Provider == ProviderGemini {
		return "GOOGLE_AI_API_KEY"
	}
	return "OPENAI_API_KEY"
}

var registry = map[string]ModelConfig{
	"gpt-5.1-mini": {
		Code:        "gpt-5.1-mini",
		Provider:    ProviderOpenAI,
		ModelID:     "gpt-5.1-mini",
		Description: "Cost-effective GPT-5.1 variant suitable for experimentation.",
	},
	"gpt-5.1": {
		Code:        "gpt-5.1",
		Provider:    ProviderOpenAI,
		ModelID:     "gpt-5.1",
		Description: "Full GPT-5.1 model for higher-quality outputs.",
	},
	"gemini-2.5": {
		Code:        "gemini-2.5",
		Provider:    ProviderGemini,
		ModelID:     "gemini-2.5",
		Description: "Latest high-quality Gemini model.",
	},
	"gemini-2.5-flash": {
		Code:        "gemini-2.5-flash",
		Provider:    ProviderGemini,
		ModelID:     "gemini-2.5-flash",
		Description: "Flash variant optimized for speed/latency tradeoffs.",
	},
}

// GetModelConfig looks a model up by its user-facing code.
func GetModelConfig(code string) (ModelConfig, error) {
	cfg, ok := registry[code]
	if !ok {
		return ModelConfig{}, fmt.Errorf("%w: %s", ErrUnknownModel, code)
	}
	return cfg, nil
}

// Models returns every registered model sorted by code.
func Models() []ModelConfig {
	configs := make([]ModelConfig, 0, len(registry))
	for _, cfg := range registry {
		configs = append(configs, cfg)
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].Code < configs[j].Code })
	return configs
}

// NewClient builds the provider client for a model code, reading the API
// key from the provider's environment variable.
func NewClient(code string, logger *zap.Logger) (Client, error) {
	cfg, err := GetModelConfig(code)
	if err != nil {
		return nil, err
	}
	key := os.Getenv(cfg.EnvVar())
	if key == "" {
		return nil, fmt.Errorf("%w: %s is not set", ErrMissingAPIKey, cfg.EnvVar())
	}
	switch cfg.Provider {
	case ProviderGemini:
		return NewGeminiClient(GeminiConfig{APIKey: key, Model: cfg.ModelID, Logger: logger}), nil
	default:
		return NewOpenAIClient(OpenAIConfig{APIKey: key, Model: cfg.ModelID, Logger: logger}), nil
	}
}
