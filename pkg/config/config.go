package config

import (
	"strings"
)

const (
	// DefaultModel is the completion model requested for every turn.
	DefaultModel = "meta-llama/Meta-Llama-3.1-8B-Instruct"
	// DefaultTemperature is the sampling temperature sent with every turn.
	DefaultTemperature = 0.7
	// DefaultMaxTokens caps the length of each assistant reply.
	DefaultMaxTokens = 500

	DefaultSecretsPath = "secrets.toml"
	DefaultLocalPath   = "config.env"
	DefaultAddr        = ":8501"
)

// Config holds all runtime configuration for the chat assistant.
type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	Verbose     bool

	SecretsPath string
	LocalPath   string
	Addr        string

	Credentials Credentials
}

// DefaultConfig returns a baseline configuration without side effects.
func DefaultConfig() Config {
	return Config{
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		Verbose:     false,
		SecretsPath: DefaultSecretsPath,
		LocalPath:   DefaultLocalPath,
		Addr:        DefaultAddr,
	}
}

// Normalize sanitizes configuration values and applies defaults.
func Normalize(cfg Config) Config {
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.SecretsPath = strings.TrimSpace(cfg.SecretsPath)
	cfg.LocalPath = strings.TrimSpace(cfg.LocalPath)
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.Credentials = cfg.Credentials.normalize()

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature < 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.SecretsPath == "" {
		cfg.SecretsPath = DefaultSecretsPath
	}
	if cfg.LocalPath == "" {
		cfg.LocalPath = DefaultLocalPath
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	return cfg
}
