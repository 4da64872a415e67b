package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	loggerpkg "github.com/minhyannv/chat-assistant-go/pkg/logger"
)

const (
	// PlaceholderAPIKey is the value shipped in config.example.env.
	PlaceholderAPIKey = "YOUR_API_KEY_HERE"
	// SecretsPlaceholderAPIKey is the value shipped in secrets.example.toml.
	SecretsPlaceholderAPIKey = "your_actual_api_key_here"
)

// ErrNotConfigured is returned when no provider yields usable credentials.
var ErrNotConfigured = errors.New("API configuration not found")

// Credentials is the key/endpoint pair used for every completion request.
type Credentials struct {
	APIKey  string
	BaseURL string
}

func (c Credentials) normalize() Credentials {
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	return c
}

// Complete reports whether both names are defined.
func (c Credentials) Complete() bool {
	c = c.normalize()
	return c.APIKey != "" && c.BaseURL != ""
}

// Validate checks that the key is set and the base URL is an absolute http(s) URL.
func (c Credentials) Validate() error {
	c = c.normalize()
	if c.APIKey == "" {
		return errors.New("API_KEY is not set")
	}
	if isPlaceholderKey(c.APIKey) {
		return errors.New("API_KEY still holds the template placeholder")
	}
	if c.BaseURL == "" {
		return errors.New("API_BASE_URL is not set")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("API_BASE_URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE_URL %q must be an absolute http(s) URL", c.BaseURL)
	}
	return nil
}

func isPlaceholderKey(key string) bool {
	return strings.EqualFold(key, PlaceholderAPIKey) || strings.EqualFold(key, SecretsPlaceholderAPIKey)
}

// Provider is one named source of credentials.
// ok=false means the source does not define both names.
type Provider interface {
	Name() string
	Lookup() (creds Credentials, ok bool, err error)
}

// Resolver walks providers in priority order.
type Resolver struct {
	Providers []Provider
	Logger    loggerpkg.Logger
	Verbose   bool
}

// NewResolver builds a resolver over the given providers.
func NewResolver(logger loggerpkg.Logger, verbose bool, providers ...Provider) *Resolver {
	if logger == nil {
		logger = loggerpkg.NopLogger{}
	}
	return &Resolver{Providers: providers, Logger: logger, Verbose: verbose}
}

// Resolve returns the first complete and valid credential pair together with
// the name of the provider that supplied it. Missing, unreadable, incomplete
// and invalid sources are all skipped; only exhaustion is an error.
func (r *Resolver) Resolve() (Credentials, string, error) {
	for _, p := range r.Providers {
		if p == nil {
			continue
		}
		creds, ok, err := p.Lookup()
		if err != nil {
			loggerpkg.Warn(r.Logger, "config source unreadable", map[string]any{
				"source": p.Name(),
				"error":  err.Error(),
			})
			continue
		}
		if !ok || !creds.Complete() {
			loggerpkg.Debug(r.Verbose, r.Logger, "config source incomplete", map[string]any{
				"source": p.Name(),
			})
			continue
		}
		creds = creds.normalize()
		if err := creds.Validate(); err != nil {
			loggerpkg.Warn(r.Logger, "config source invalid", map[string]any{
				"source": p.Name(),
				"error":  err.Error(),
			})
			continue
		}
		loggerpkg.Debug(r.Verbose, r.Logger, "credentials resolved", map[string]any{
			"source":   p.Name(),
			"base_url": creds.BaseURL,
			"api_key":  loggerpkg.MaskSecret(creds.APIKey),
		})
		return creds, p.Name(), nil
	}
	return Credentials{}, "", ErrNotConfigured
}

// DefaultProviders returns the fixed priority order: deployment secrets,
// then the local definitions file, then environment variables.
func DefaultProviders(secretsPath, localPath string) []Provider {
	return []Provider{
		SecretsProvider{Path: secretsPath, Namespace: SecretsNamespace},
		LocalFileProvider{Path: localPath, KeyVar: EnvAPIKey, BaseURLVar: EnvAPIBaseURL},
		EnvProvider{KeyVar: EnvAPIKey, BaseURLVar: EnvAPIBaseURL},
	}
}

// Load resolves credentials into cfg using the default provider chain.
func Load(cfg Config, logger loggerpkg.Logger) (Config, string, error) {
	cfg = Normalize(cfg)
	r := NewResolver(logger, cfg.Verbose, DefaultProviders(cfg.SecretsPath, cfg.LocalPath)...)
	creds, source, err := r.Resolve()
	if err != nil {
		return cfg, "", err
	}
	cfg.Credentials = creds
	return cfg, source, nil
}
