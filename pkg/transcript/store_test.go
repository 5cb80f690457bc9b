package transcript

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "transcript.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SessionLifecycle(t *testing.T) {
	s := openTestStore(t)

	sess, err := s.NewSession("demo", "openai", "gpt-4o")
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("expected a session id")
	}

	got, err := s.Session(sess.ID)
	if err != nil {
		t.Fatalf("Session failed: %v", err)
	}
	if got.Project != "demo" || got.Model != "gpt-4o" {
		t.Errorf("unexpected session: %+v", got)
	}

	if _, err := s.Session("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestStore_Entries(t *testing.T) {
	s := openTestStore(t)
	sess, _ := s.NewSession("demo", "openai", "gpt-4o")

	lines := []struct {
		kind    Kind
		content string
	}{
		{KindUser, "Create a tavern"},
		{KindAgent, "I want to perform the following:\n- create_scene"},
		{KindError, "Error: HTTP 500"},
	}
	for _, l := range lines {
		if err := s.Append(sess.ID, l.kind, l.content); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	entries, err := s.Entries(sess.ID)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != len(lines) {
		t.Fatalf("got %d entries, want %d", len(entries), len(lines))
	}
	for i, e := range entries {
		if e.Kind != lines[i].kind || e.Content != lines[i].content {
			t.Errorf("entry %d = %+v", i, e)
		}
		if e.CreatedAt.IsZero() {
			t.Errorf("entry %d has no timestamp", i)
		}
	}
}

func TestStore_SessionsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first, _ := s.NewSession("demo", "openai", "gpt-4o")
	_, _ = s.NewSession("other", "ollama", "llama3.1")
	last, _ := s.NewSession("demo", "anthropic", "claude-sonnet-4-5-20250514")

	demo, err := s.Sessions("demo", 0)
	if err != nil {
		t.Fatalf("Sessions failed: %v", err)
	}
	if len(demo) != 2 || demo[0].ID != last.ID || demo[1].ID != first.ID {
		t.Errorf("unexpected order: %+v", demo)
	}

	all, _ := s.Sessions("", 2)
	if len(all) != 2 {
		t.Errorf("limit not applied: %d sessions", len(all))
	}
}

func TestStore_DeleteSessionCascades(t *testing.T) {
	s := openTestStore(t)
	sess, _ := s.NewSession("demo", "", "")
	_ = s.Append(sess.ID, KindUser, "hello")

	if err := s.DeleteSession(sess.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	entries, _ := s.Entries(sess.ID)
	if len(entries) != 0 {
		t.Errorf("entries survived deletion: %v", entries)
	}
	if err := s.DeleteSession(sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestStore_Recorder(t *testing.T) {
	s := openTestStore(t)
	sess, _ := s.NewSession("demo", "", "")

	var forwarded []string
	cb := s.Recorder(sess.ID, func(msg string, isError bool) {
		forwarded = append(forwarded, msg)
	}, func(err error) { t.Errorf("unexpected storage error: %v", err) })

	cb("✓ create_scene: Scene created: Tavern", false)
	cb("Error: timeout", true)

	if len(forwarded) != 2 {
		t.Errorf("forwarded %d lines, want 2", len(forwarded))
	}
	entries, _ := s.Entries(sess.ID)
	if len(entries) != 2 || entries[0].Kind != KindAgent || entries[1].Kind != KindError {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	sess, _ := s.NewSession("demo", "", "")
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()
	if _, err := s.Session(sess.ID); err != nil {
		t.Errorf("session lost after reopen: %v", err)
	}
}
