package internal

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SessionConfig is the model configuration a session runs under. It is
// loaded from config.yaml on first use and snapshotted into session
// metadata so later runs reuse the same settings.
type SessionConfig struct {
	Model                 string `yaml:"model" json:"model"`
	WindowSize            int    `yaml:"window_size" json:"window_size"`
	ShouldTruncateResults bool   `yaml:"should_truncate_results" json:"should_truncate_results"`
}

// ConfigOverrides carries flag-level overrides applied on top of a loaded
// config. Nil fields mean "keep".
type ConfigOverrides struct {
	Model           string
	WindowSize      *int
	TruncateResults *bool
}

// ApplyOverrides returns a copy with non-empty override fields applied.
func (c SessionConfig) ApplyOverrides(o ConfigOverrides) SessionConfig {
	if o.Model != "" {
		c.Model = o.Model
	}
	if o.WindowSize != nil {
		c.WindowSize = *o.WindowSize
	}
	if o.TruncateResults != nil {
		c.ShouldTruncateResults = *o.TruncateResults
	}
	return c
}

// ToMap renders the config as the metadata snapshot form.
func (c SessionConfig) ToMap() map[string]any {
	return map[string]any{
		"model":                   c.Model,
		"window_size":             c.WindowSize,
		"should_truncate_results": c.ShouldTruncateResults,
	}
}

// LoadBaseConfig reads config.yaml from path. All three keys are required.
func LoadBaseConfig(path string) (*SessionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ConfigError{Reason: fmt.Sprintf("missing required config file: %s (create it from the repository template)", path)}
		}
		return nil, &ConfigError{Reason: fmt.Sprintf("failed to read config file: %s", path), Err: err}
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Reason: "config.yaml must contain a mapping at the top level", Err: err}
	}
	if raw == nil {
		return nil, &ConfigError{Reason: "config.yaml must contain a mapping at the top level"}
	}
	return configFromMapping(raw)
}

// ConfigFromMetadata rebuilds the config snapshot stored in session
// metadata. Returns nil when the session has no snapshot yet.
func ConfigFromMetadata(meta Metadata) (*SessionConfig, error) {
	block, ok := meta[MetaConfig]
	if !ok || block == nil {
		return nil, nil
	}
	mapping, ok := block.(map[string]any)
	if !ok {
		return nil, &ConfigError{Reason: "metadata config block must be a mapping"}
	}
	return configFromMapping(mapping)
}

// configFromMapping validates the three required keys and coerces their
// values. JSON round-trips deliver numbers as float64.
func configFromMapping(m map[string]any) (*SessionConfig, error) {
	for _, key := range []string{"model", "window_size", "should_truncate_results"} {
		if _, ok := m[key]; !ok {
			return nil, &ConfigError{Reason: fmt.Sprintf("missing required config key: %s", key)}
		}
	}

	cfg := &SessionConfig{}
	model, ok := m["model"].(string)
	if !ok || model == "" {
		return nil, &ConfigError{Reason: "config key model must be a non-empty string"}
	}
	cfg.Model = model

	switch v := m["window_size"].(type) {
	case int:
		cfg.WindowSize = v
	case int64:
		cfg.WindowSize = int(v)
	case float64:
		cfg.WindowSize = int(v)
	default:
		return nil, &ConfigError{Reason: "config key window_size must be an integer"}
	}

	truncate, ok := m["should_truncate_results"].(bool)
	if !ok {
		return nil, &ConfigError{Reason: "config key should_truncate_results must be a boolean"}
	}
	cfg.ShouldTruncateResults = truncate

	return cfg, nil
}

// ParseBoolFlag parses the permissive true/false spellings accepted on the
// command line.
func ParseBoolFlag(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "t", "yes", "y":
		return true, nil
	case "0", "false", "f", "no", "n":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean flag value: %s", value)
	}
}
