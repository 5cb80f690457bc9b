package llm

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/oauth2/clientcredentials"
)

// Settings is the host-side description of a provider, typically read from
// the config file.
type Settings struct {
	APIKey            string
	BaseURL           string
	DefaultModel      string
	RequestsPerMinute int
	ModelPolicy       ModelPolicy
	OAuth2            *clientcredentials.Config
	Logger            *slog.Logger
}

// ProviderNames lists the provider identifiers NewProvider accepts.
func ProviderNames() []string {
	return []string{FamilyOpenAI, FamilyAnthropic, FamilyGemini, ollamaFamily}
}

// NewProvider builds the named provider and applies its API key.
func NewProvider(name string, s Settings) (Provider, error) {
	opts := []Option{WithRateLimit(s.RequestsPerMinute), WithModelPolicy(s.ModelPolicy)}
	if s.Logger != nil {
		opts = append(opts, WithLogger(s.Logger.With("provider", name)))
	}
	if s.BaseURL != "" {
		opts = append(opts, WithBaseURL(s.BaseURL))
	}
	if s.DefaultModel != "" {
		opts = append(opts, WithDefaultModel(s.DefaultModel))
	}

	var p Provider
	switch strings.ToLower(name) {
	case FamilyOpenAI:
		if s.OAuth2 != nil {
			opts = append(opts, WithOAuth2(s.OAuth2))
		}
		p = NewOpenAIProvider(opts...)
	case FamilyAnthropic:
		p = NewAnthropicProvider(opts...)
	case FamilyGemini:
		p = NewGeminiProvider(opts...)
	case ollamaFamily:
		if isLocalURL(s.BaseURL) {
			opts = append(opts, WithKeyless())
		}
		p = NewOllamaProvider(opts...)
	default:
		return nil, fmt.Errorf("unknown provider %q (available: %s)", name, strings.Join(ProviderNames(), ", "))
	}

	if s.APIKey != "" {
		p.SetAPIKey(s.APIKey)
	}
	return p, nil
}

func isLocalURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}
