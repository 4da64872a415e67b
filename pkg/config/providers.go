package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// SecretsNamespace is the table holding credentials in the secrets file.
	SecretsNamespace = "ROUTELLM"

	KeyAPIKey     = "API_KEY"
	KeyAPIBaseURL = "API_BASE_URL"

	EnvAPIKey     = "ROUTELLM_API_KEY"
	EnvAPIBaseURL = "ROUTELLM_API_BASE_URL"
)

// SecretsProvider reads a namespaced table from a TOML secrets file:
//
//	[ROUTELLM]
//	API_KEY = "..."
//	API_BASE_URL = "https://routellm.abacus.ai/v1"
type SecretsProvider struct {
	Path      string
	Namespace string
}

func (p SecretsProvider) Name() string {
	return fmt.Sprintf("secrets:%s[%s]", p.Path, p.namespace())
}

func (p SecretsProvider) namespace() string {
	if strings.TrimSpace(p.Namespace) == "" {
		return SecretsNamespace
	}
	return p.Namespace
}

func (p SecretsProvider) Lookup() (Credentials, bool, error) {
	if strings.TrimSpace(p.Path) == "" {
		return Credentials{}, false, nil
	}
	raw := map[string]any{}
	if _, err := toml.DecodeFile(p.Path, &raw); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, false, nil
		}
		return Credentials{}, false, fmt.Errorf("decode secrets file: %w", err)
	}
	table, ok := raw[p.namespace()].(map[string]any)
	if !ok {
		return Credentials{}, false, nil
	}
	creds := Credentials{
		APIKey:  stringValue(table[KeyAPIKey]),
		BaseURL: stringValue(table[KeyAPIBaseURL]),
	}
	return creds, creds.Complete(), nil
}

// LocalFileProvider reads top-level API_KEY and API_BASE_URL definitions from
// a local file. Files ending in .yaml or .yml are decoded as YAML; anything
// else is read as a dotenv file. When KeyVar or BaseURLVar name a set
// environment variable, its value replaces the file's definition.
type LocalFileProvider struct {
	Path       string
	KeyVar     string
	BaseURLVar string
}

func (p LocalFileProvider) Name() string {
	return "file:" + p.Path
}

func (p LocalFileProvider) Lookup() (Credentials, bool, error) {
	if strings.TrimSpace(p.Path) == "" {
		return Credentials{}, false, nil
	}
	values, err := p.read()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, false, nil
		}
		return Credentials{}, false, err
	}
	creds := Credentials{
		APIKey:  overrideFromEnv(p.KeyVar, values[KeyAPIKey]),
		BaseURL: overrideFromEnv(p.BaseURLVar, values[KeyAPIBaseURL]),
	}
	return creds, creds.Complete(), nil
}

func overrideFromEnv(name, fallback string) string {
	if name == "" {
		return fallback
	}
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

func (p LocalFileProvider) read() (map[string]string, error) {
	switch strings.ToLower(filepath.Ext(p.Path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(p.Path)
		if err != nil {
			return nil, err
		}
		raw := map[string]any{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode %s: %w", p.Path, err)
		}
		out := make(map[string]string, len(raw))
		for k, v := range raw {
			out[k] = stringValue(v)
		}
		return out, nil
	default:
		values, err := godotenv.Read(p.Path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
			return nil, fmt.Errorf("read %s: %w", p.Path, err)
		}
		return values, nil
	}
}

// EnvProvider reads credentials from environment variables.
type EnvProvider struct {
	KeyVar     string
	BaseURLVar string
}

func (p EnvProvider) Name() string {
	return "env:" + p.KeyVar + "," + p.BaseURLVar
}

func (p EnvProvider) Lookup() (Credentials, bool, error) {
	creds := Credentials{
		APIKey:  os.Getenv(p.KeyVar),
		BaseURL: os.Getenv(p.BaseURLVar),
	}
	return creds, creds.Complete(), nil
}

func stringValue(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
