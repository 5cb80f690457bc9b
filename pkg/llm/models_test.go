package llm

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
)

func TestModelFamily(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"gpt-4o", FamilyOpenAI},
		{"GPT-4-turbo", FamilyOpenAI},
		{"o3-mini", FamilyOpenAI},
		{"o1", FamilyOpenAI},
		{"claude-sonnet-4-5-20250514", FamilyAnthropic},
		{"gemini-2.5-pro", FamilyGemini},
		{"llama3.1", ""},
		{"gpt-oss:20b", ""},
		{"", ""},
		{"omni", ""},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := ModelFamily(tt.model); got != tt.want {
				t.Errorf("ModelFamily(%q) = %q, want %q", tt.model, got, tt.want)
			}
		})
	}
}

func TestResolveModel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tests := []struct {
		name       string
		requested  string
		policy     ModelPolicy
		want       string
		wantNotice bool
		wantErr    bool
	}{
		{"empty uses default", "", ModelReject, "claude-default", false, false},
		{"same family passes", "claude-3-5-haiku", ModelReject, "claude-3-5-haiku", false, false},
		{"unknown family passes", "my-finetune", ModelReject, "my-finetune", false, false},
		{"substitute is silent", "gpt-4o", ModelSubstitute, "claude-default", false, false},
		{"warn adds notice", "gpt-4o", ModelWarn, "claude-default", true, false},
		{"reject errors", "gemini-2.5-pro", ModelReject, "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, notice, err := resolveModel(tt.requested, FamilyAnthropic, "claude-default", tt.policy, logger)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("model = %q, want %q", got, tt.want)
			}
			if (notice != "") != tt.wantNotice {
				t.Errorf("notice = %q", notice)
			}
		})
	}
}

func TestParseModelPolicy(t *testing.T) {
	for _, p := range []ModelPolicy{ModelSubstitute, ModelWarn, ModelReject} {
		got, err := ParseModelPolicy(p.String())
		if err != nil || got != p {
			t.Errorf("ParseModelPolicy(%q) = %v, %v", p.String(), got, err)
		}
	}
	if _, err := ParseModelPolicy("sometimes"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestAPIErrorMessage(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`{"message":"quota exceeded","type":"billing"}`, "quota exceeded"},
		{`"plain string"`, "plain string"},
		{`{"code":500}`, `{"code":500}`},
		{`  [1,2] `, `[1,2]`},
	}
	for _, tt := range tests {
		if got := apiErrorMessage(json.RawMessage(tt.raw)); got != tt.want {
			t.Errorf("apiErrorMessage(%s) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNewProvider(t *testing.T) {
	for _, name := range ProviderNames() {
		p, err := NewProvider(name, Settings{APIKey: "k"})
		if err != nil {
			t.Fatalf("NewProvider(%q): %v", name, err)
		}
		if p.Name() != name {
			t.Errorf("Name() = %q, want %q", p.Name(), name)
		}
		if !p.IsAvailable() {
			t.Errorf("%s with key should be available", name)
		}
		if len(p.AvailableModels()) == 0 {
			t.Errorf("%s lists no models", name)
		}
	}
	if _, err := NewProvider("bogus", Settings{}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestRoleString(t *testing.T) {
	want := map[Role]string{RoleSystem: "system", RoleUser: "user", RoleAssistant: "assistant", RoleTool: "tool"}
	for r, s := range want {
		if r.String() != s {
			t.Errorf("%d.String() = %q, want %q", int(r), r.String(), s)
		}
	}
}
