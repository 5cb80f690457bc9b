package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/oauth2/clientcredentials"
	"gopkg.in/yaml.v3"

	"github.com/retroengine/retroai/pkg/core"
	"github.com/retroengine/retroai/pkg/llm"
	"github.com/retroengine/retroai/pkg/storage"
)

// FolderName holds the config file, logs and the transcript database.
const FolderName = ".retroai"

// apiKeyEnv is consulted when api_keys.<provider> is not configured.
var apiKeyEnv = map[string]string{
	llm.FamilyOpenAI:    "OPENAI_API_KEY",
	llm.FamilyAnthropic: "ANTHROPIC_API_KEY",
	llm.FamilyGemini:    "GEMINI_API_KEY",
	"ollama":            "OLLAMA_API_KEY",
}

type oauth2Settings struct {
	ClientID     string   `mapstructure:"client_id" yaml:"client_id"`
	ClientSecret string   `mapstructure:"client_secret" yaml:"client_secret"`
	TokenURL     string   `mapstructure:"token_url" yaml:"token_url"`
	Scopes       []string `mapstructure:"scopes" yaml:"scopes,omitempty"`
}

// settings mirrors .retroai/config.yaml.
type settings struct {
	Provider            string            `mapstructure:"provider" yaml:"provider"`
	Model               string            `mapstructure:"model" yaml:"model"`
	Temperature         float64           `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens           int               `mapstructure:"max_tokens" yaml:"max_tokens"`
	APIKeys             map[string]string `mapstructure:"api_keys" yaml:"api_keys,omitempty"`
	BaseURLs            map[string]string `mapstructure:"base_urls" yaml:"base_urls,omitempty"`
	RequireConfirmation bool              `mapstructure:"require_confirmation" yaml:"require_confirmation"`
	StreamResponses     bool              `mapstructure:"stream_responses" yaml:"stream_responses"`
	MaxToolCalls        int               `mapstructure:"max_tool_calls" yaml:"max_tool_calls"`
	ErrorPolicy         string            `mapstructure:"error_policy" yaml:"error_policy"`
	ModelPolicy         string            `mapstructure:"model_policy" yaml:"model_policy"`
	RequestsPerMinute   int               `mapstructure:"requests_per_minute" yaml:"requests_per_minute,omitempty"`
	SystemPrompt        string            `mapstructure:"system_prompt" yaml:"system_prompt,omitempty"`
	ProjectDir          string            `mapstructure:"project_dir" yaml:"project_dir"`
	Autosave            bool              `mapstructure:"autosave" yaml:"autosave"`
	UndoLimit           int               `mapstructure:"undo_limit" yaml:"undo_limit,omitempty"`
	TranscriptDB        string            `mapstructure:"transcript_db" yaml:"transcript_db"`
	OAuth2              oauth2Settings    `mapstructure:"oauth2" yaml:"oauth2,omitempty"`
}

// setDefaults registers the values used when the config file is silent.
func setDefaults(v *viper.Viper) {
	d := defaultSettings()
	v.SetDefault("provider", d.Provider)
	v.SetDefault("model", d.Model)
	v.SetDefault("temperature", d.Temperature)
	v.SetDefault("max_tokens", d.MaxTokens)
	v.SetDefault("require_confirmation", d.RequireConfirmation)
	v.SetDefault("stream_responses", d.StreamResponses)
	v.SetDefault("max_tool_calls", d.MaxToolCalls)
	v.SetDefault("error_policy", d.ErrorPolicy)
	v.SetDefault("model_policy", d.ModelPolicy)
	v.SetDefault("project_dir", d.ProjectDir)
	v.SetDefault("autosave", d.Autosave)
	v.SetDefault("undo_limit", d.UndoLimit)
	v.SetDefault("transcript_db", d.TranscriptDB)
}

func defaultSettings() settings {
	agent := core.DefaultConfig()
	return settings{
		Provider:            llm.FamilyOpenAI,
		Model:               agent.LLM.Model,
		Temperature:         agent.LLM.Temperature,
		MaxTokens:           agent.LLM.MaxTokens,
		RequireConfirmation: agent.RequireConfirmation,
		MaxToolCalls:        agent.MaxToolCalls,
		ErrorPolicy:         agent.ErrorPolicy.String(),
		ModelPolicy:         llm.ModelSubstitute.String(),
		ProjectDir:          "project",
		Autosave:            true,
		TranscriptDB:        filepath.Join(FolderName, "transcript.db"),
	}
}

// loadSettings decodes the active viper configuration.
func loadSettings(v *viper.Viper) (settings, error) {
	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return settings{}, fmt.Errorf("failed to decode config: %w", err)
	}
	s.Provider = strings.ToLower(strings.TrimSpace(s.Provider))
	return s, nil
}

// agentConfig converts the file settings into the agent configuration.
func (s settings) agentConfig() (core.Config, error) {
	policy, err := core.ParseErrorPolicy(s.ErrorPolicy)
	if err != nil {
		return core.Config{}, err
	}
	cfg := core.DefaultConfig()
	if s.SystemPrompt != "" {
		cfg.SystemPrompt = s.SystemPrompt
	}
	cfg.MaxToolCalls = s.MaxToolCalls
	cfg.RequireConfirmation = s.RequireConfirmation
	cfg.StreamResponses = s.StreamResponses
	cfg.ErrorPolicy = policy
	cfg.LLM = llm.Config{
		Model:       s.Model,
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
		Stream:      s.StreamResponses,
	}
	return cfg, nil
}

// apiKey returns the key for provider. Config values may use {{env:VAR}};
// the provider's conventional environment variable is the fallback.
func (s settings) apiKey(provider string) string {
	if key := storage.ResolveEnvRefs(s.APIKeys[provider]); key != "" && !storage.IsEnvRef(key) {
		return key
	}
	if env, ok := apiKeyEnv[provider]; ok {
		return os.Getenv(env)
	}
	return ""
}

// providerSettings builds the factory input for provider.
func (s settings) providerSettings(provider string, logger *slog.Logger) (llm.Settings, error) {
	policy, err := llm.ParseModelPolicy(s.ModelPolicy)
	if err != nil {
		return llm.Settings{}, err
	}
	out := llm.Settings{
		APIKey:            s.apiKey(provider),
		BaseURL:           s.BaseURLs[provider],
		RequestsPerMinute: s.RequestsPerMinute,
		ModelPolicy:       policy,
		Logger:            logger,
	}
	if llm.ModelFamily(s.Model) == provider || provider == "ollama" {
		out.DefaultModel = s.Model
	}
	if s.OAuth2.ClientID != "" && s.OAuth2.TokenURL != "" {
		out.OAuth2 = &clientcredentials.Config{
			ClientID:     s.OAuth2.ClientID,
			ClientSecret: storage.ResolveEnvRefs(s.OAuth2.ClientSecret),
			TokenURL:     s.OAuth2.TokenURL,
			Scopes:       s.OAuth2.Scopes,
		}
	}
	return out, nil
}

// writeSettings stores s as YAML at path, creating the folder.
func writeSettings(path string, s settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config folder: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// newLogger returns a text logger writing to w at the named level.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}
