package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sceneDoc struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

func TestDocumentRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := DocumentPath(dir, KindScenes, "tavern")

	if err := SaveDocument(sceneDoc{ID: "tavern", Name: "The Tavern"}, path); err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}
	var got sceneDoc
	if err := LoadDocument(path, &got); err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if got.Name != "The Tavern" {
		t.Errorf("got %+v", got)
	}
}

func TestListAndRemoveDocuments(t *testing.T) {
	dir := t.TempDir()

	ids, err := ListDocuments(dir, KindItems)
	if err != nil || len(ids) != 0 {
		t.Fatalf("missing dir: ids = %v, err = %v", ids, err)
	}

	for _, id := range []string{"rope", "key"} {
		if err := SaveDocument(sceneDoc{ID: id}, DocumentPath(dir, KindItems, id)); err != nil {
			t.Fatal(err)
		}
	}
	os.WriteFile(filepath.Join(dir, KindItems, "notes.txt"), []byte("x"), 0644)

	ids, err = ListDocuments(dir, KindItems)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != "key" || ids[1] != "rope" {
		t.Errorf("ids = %v", ids)
	}

	if err := RemoveDocument(dir, KindItems, "key"); err != nil {
		t.Fatal(err)
	}
	if err := RemoveDocument(dir, KindItems, "key"); err != nil {
		t.Errorf("removing a missing document: %v", err)
	}
	if ids, _ := ListDocuments(dir, KindItems); len(ids) != 1 {
		t.Errorf("ids after remove = %v", ids)
	}
}

func TestManifest(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadManifest(dir); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing manifest err = %v", err)
	}
	if err := SaveManifest(dir, Manifest{Name: "demo", StartScene: "intro"}); err != nil {
		t.Fatal(err)
	}
	m, err := LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "demo" || m.StartScene != "intro" || m.Version != CurrentVersion {
		t.Errorf("manifest = %+v", m)
	}
}

func TestSubstituteVariables(t *testing.T) {
	t.Setenv("RETROAI_TEST_KEY", "sk-123")

	tests := []struct {
		name string
		in   string
		vars map[string]string
		want string
	}{
		{"env ref", "{{env:RETROAI_TEST_KEY}}", nil, "sk-123"},
		{"missing env ref kept", "{{env:RETROAI_NOPE}}", nil, "{{env:RETROAI_NOPE}}"},
		{"plain var", "hello {{ name }}", map[string]string{"name": "guybrush"}, "hello guybrush"},
		{"unknown var kept", "{{who}}", nil, "{{who}}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SubstituteVariables(tt.in, tt.vars); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	if !IsEnvRef("{{env:OPENAI_API_KEY}}") || IsEnvRef("sk-literal") || IsEnvRef("x {{env:A}}") {
		t.Error("IsEnvRef misclassified input")
	}
}

func TestLoadCredentials(t *testing.T) {
	t.Setenv("RETROAI_ANTHROPIC", "ant-999")
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	os.WriteFile(path, []byte("anthropic: \"{{env:RETROAI_ANTHROPIC}}\"\nopenai: sk-literal\n"), 0600)

	creds, err := LoadCredentials(path)
	if err != nil {
		t.Fatal(err)
	}
	if creds["anthropic"] != "ant-999" || creds["openai"] != "sk-literal" {
		t.Errorf("creds = %v", creds)
	}
}
