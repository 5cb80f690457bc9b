package llm

import (
	"fmt"
	"log/slog"
	"strings"
)

// ModelPolicy decides what a provider does when asked for a model that
// belongs to another provider family.
type ModelPolicy int

const (
	// ModelSubstitute replaces the model with the provider default and logs a warning.
	ModelSubstitute ModelPolicy = iota
	// ModelWarn substitutes like ModelSubstitute and also attaches a Notice
	// to the response so the host can show it.
	ModelWarn
	// ModelReject fails the request.
	ModelReject
)

// String returns the configuration name of the policy.
func (p ModelPolicy) String() string {
	switch p {
	case ModelSubstitute:
		return "substitute"
	case ModelWarn:
		return "warn"
	case ModelReject:
		return "reject"
	default:
		return fmt.Sprintf("ModelPolicy(%d)", int(p))
	}
}

// ParseModelPolicy converts a configuration value into a ModelPolicy.
// An empty string selects ModelSubstitute.
func ParseModelPolicy(s string) (ModelPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "substitute":
		return ModelSubstitute, nil
	case "warn":
		return ModelWarn, nil
	case "reject":
		return ModelReject, nil
	default:
		return ModelSubstitute, fmt.Errorf("unknown model policy %q (want substitute, warn or reject)", s)
	}
}

// Provider family identifiers returned by ModelFamily.
const (
	FamilyOpenAI    = "openai"
	FamilyAnthropic = "anthropic"
	FamilyGemini    = "gemini"
)

// ModelFamily returns the provider family a model name belongs to, or ""
// when the name does not identify a hosted family. Names with an Ollama tag
// (":") are always treated as local.
func ModelFamily(model string) string {
	m := strings.ToLower(strings.TrimSpace(model))
	if m == "" || strings.Contains(m, ":") {
		return ""
	}
	switch {
	case strings.HasPrefix(m, "gpt-"), strings.HasPrefix(m, "chatgpt-"),
		m == "o1", m == "o3", m == "o4",
		strings.HasPrefix(m, "o1-"), strings.HasPrefix(m, "o3-"), strings.HasPrefix(m, "o4-"):
		return FamilyOpenAI
	case strings.HasPrefix(m, "claude"):
		return FamilyAnthropic
	case strings.HasPrefix(m, "gemini"):
		return FamilyGemini
	}
	return ""
}

// resolveModel picks the model a provider of the given family actually sends.
// notice is non-empty when the host should be told about a substitution.
func resolveModel(requested, family, fallback string, policy ModelPolicy, logger *slog.Logger) (model, notice string, err error) {
	if strings.TrimSpace(requested) == "" {
		return fallback, "", nil
	}
	other := ModelFamily(requested)
	if other == "" || other == family {
		return requested, "", nil
	}

	msg := fmt.Sprintf("model %q belongs to %s; %s provider uses %q instead", requested, other, family, fallback)
	switch policy {
	case ModelReject:
		return "", "", fmt.Errorf("model %q belongs to %s and cannot be used with the %s provider", requested, other, family)
	case ModelWarn:
		logger.Warn("model substituted", "requested", requested, "used", fallback, "provider", family)
		return fallback, msg, nil
	default:
		logger.Warn("model substituted", "requested", requested, "used", fallback, "provider", family)
		return fallback, "", nil
	}
}
