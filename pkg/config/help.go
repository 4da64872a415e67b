package config

import (
	"fmt"
	"strings"
)

// HelpText explains how to supply credentials for both deployment and local setups.
func HelpText(secretsPath, localPath string) string {
	if secretsPath == "" {
		secretsPath = DefaultSecretsPath
	}
	if localPath == "" {
		localPath = DefaultLocalPath
	}

	var b strings.Builder
	b.WriteString("API configuration not found!\n\n")

	b.WriteString("For deployment:\n")
	fmt.Fprintf(&b, "  1. Create %s on the host (see secrets.example.toml)\n", secretsPath)
	fmt.Fprintf(&b, "  2. Add your secrets in TOML format:\n\n")
	fmt.Fprintf(&b, "       [%s]\n", SecretsNamespace)
	fmt.Fprintf(&b, "       %s = \"%s\"\n", KeyAPIKey, SecretsPlaceholderAPIKey)
	fmt.Fprintf(&b, "       %s = \"https://routellm.abacus.ai/v1\"\n\n", KeyAPIBaseURL)
	b.WriteString("  3. Restart the assistant\n\n")

	b.WriteString("For local development:\n")
	fmt.Fprintf(&b, "  1. Copy config.example.env to %s\n", localPath)
	fmt.Fprintf(&b, "  2. Set %s to your API key and %s to the endpoint\n", KeyAPIKey, KeyAPIBaseURL)
	fmt.Fprintf(&b, "  Or export %s and %s before starting.\n", EnvAPIKey, EnvAPIBaseURL)
	fmt.Fprintf(&b, "  Exported values replace the ones in %s but never the deployment secrets.\n", localPath)
	return b.String()
}
