// Package transcript persists chat sessions between the user and the agent in
// a SQLite database so a host can show or resume earlier conversations.
package transcript

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/retroengine/retroai/pkg/core"
)

// timeFormat is fixed width so timestamps sort as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = errors.New("session not found")

// Kind classifies a transcript line.
type Kind string

const (
	KindUser  Kind = "user"
	KindAgent Kind = "agent"
	KindError Kind = "error"
)

// Session is one conversation.
type Session struct {
	ID        string
	Project   string
	Provider  string
	Model     string
	CreatedAt time.Time
}

// Entry is one line of a conversation.
type Entry struct {
	ID        int64
	SessionID string
	Kind      Kind
	Content   string
	CreatedAt time.Time
}

// Store is a SQLite-backed transcript store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the store at dbPath and migrates its schema.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create transcript dir: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open transcript db: %w", err)
	}
	// SQLite serializes writers; one connection keeps it simple.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate transcript db: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewSession starts a conversation and returns it.
func (s *Store) NewSession(project, provider, model string) (Session, error) {
	sess := Session{
		ID:        uuid.NewString(),
		Project:   project,
		Provider:  provider,
		Model:     model,
		CreatedAt: s.now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, project, provider, model, created_at) VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.Project, sess.Provider, sess.Model, sess.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// Session looks a session up by id.
func (s *Store) Session(id string) (Session, error) {
	row := s.db.QueryRow(`SELECT id, project, provider, model, created_at FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, err
}

// Sessions returns the most recent sessions of a project, newest first.
// An empty project matches every session; limit <= 0 means no limit.
func (s *Store) Sessions(project string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT id, project, provider, model, created_at FROM sessions
		 WHERE ? = '' OR project = ?
		 ORDER BY created_at DESC LIMIT ?`,
		project, project, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// DeleteSession removes a session and its entries.
func (s *Store) DeleteSession(id string) error {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

// Append adds a line to a session.
func (s *Store) Append(sessionID string, kind Kind, content string) error {
	_, err := s.db.Exec(
		`INSERT INTO entries (session_id, kind, content, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, string(kind), content, s.now().UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// Entries returns the lines of a session in order.
func (s *Store) Entries(sessionID string) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, kind, content, created_at FROM entries WHERE session_id = ? ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var kind, created string
		if err := rows.Scan(&e.ID, &e.SessionID, &kind, &e.Content, &created); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Kind = Kind(kind)
		e.CreatedAt, _ = time.Parse(timeFormat, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Recorder returns an agent callback that stores every line in the session
// before passing it on to next. Storage failures are reported to onErr.
func (s *Store) Recorder(sessionID string, next core.Callback, onErr func(error)) core.Callback {
	return func(message string, isError bool) {
		kind := KindAgent
		if isError {
			kind = KindError
		}
		if err := s.Append(sessionID, kind, message); err != nil && onErr != nil {
			onErr(err)
		}
		if next != nil {
			next(message, isError)
		}
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (Session, error) {
	var sess Session
	var created string
	if err := row.Scan(&sess.ID, &sess.Project, &sess.Provider, &sess.Model, &created); err != nil {
		return Session{}, err
	}
	sess.CreatedAt, _ = time.Parse(timeFormat, created)
	return sess, nil
}
