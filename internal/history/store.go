// Package history persists an append-only audit log of gating
// evaluations in SQLite.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/sprite-ai/mergegate/internal/model"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Entry is one recorded evaluation.
type Entry struct {
	ID        string   `json:"id"`
	Handle    string   `json:"handle"`
	Title     string   `json:"title"`
	Category  string   `json:"category"`
	Source    string   `json:"source"`
	Decision  string   `json:"decision"`
	Reasons   []string `json:"reasons,omitempty"`
	Score     float64  `json:"score"`
	CreatedAt string   `json:"created_at"`
}

// Counts aggregates entries per decision.
type Counts struct {
	Allowed   int `json:"allowed"`
	Escalated int `json:"escalated"`
	Blocked   int `json:"blocked"`
}

// Store is the evaluation audit log backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open creates the data directory if needed, opens the database with
// WAL mode, and ensures the schema exists.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("history: create data dir: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(dataDir, "history.db"))
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("history: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("history: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS evaluations (
			id         TEXT PRIMARY KEY,
			handle     TEXT NOT NULL,
			title      TEXT NOT NULL,
			category   TEXT NOT NULL,
			source     TEXT NOT NULL,
			decision   TEXT NOT NULL,
			reasons    TEXT NOT NULL DEFAULT '',
			score      REAL NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_eval_handle   ON evaluations(handle);
		CREATE INDEX IF NOT EXISTS idx_eval_decision ON evaluations(decision);
		CREATE INDEX IF NOT EXISTS idx_eval_created  ON evaluations(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends one evaluation and returns its id.
func (s *Store) Record(handle, title string, cls model.Classification, v model.Verdict, score float64) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO evaluations (id, handle, title, category, source, decision, reasons, score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, handle, title,
		cls.Category.String(), cls.Source.String(),
		v.Decision.String(), strings.Join(v.Reasons, "\n"), score,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("history: record: %w", err)
	}
	return id, nil
}

// Recent returns the newest entries, most recent first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, handle, title, category, source, decision, reasons, score, created_at
		 FROM evaluations ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var reasons string
		if err := rows.Scan(&e.ID, &e.Handle, &e.Title, &e.Category, &e.Source,
			&e.Decision, &reasons, &e.Score, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		if reasons != "" {
			e.Reasons = strings.Split(reasons, "\n")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ByHandle returns every entry for one handle, most recent first.
func (s *Store) ByHandle(handle string) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, handle, title, category, source, decision, reasons, score, created_at
		 FROM evaluations WHERE handle = ? ORDER BY created_at DESC, id`, handle)
	if err != nil {
		return nil, fmt.Errorf("history: by handle: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var reasons string
		if err := rows.Scan(&e.ID, &e.Handle, &e.Title, &e.Category, &e.Source,
			&e.Decision, &reasons, &e.Score, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		if reasons != "" {
			e.Reasons = strings.Split(reasons, "\n")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DecisionCounts aggregates the log per decision.
func (s *Store) DecisionCounts() (Counts, error) {
	rows, err := s.db.Query(`SELECT decision, COUNT(*) FROM evaluations GROUP BY decision`)
	if err != nil {
		return Counts{}, fmt.Errorf("history: counts: %w", err)
	}
	defer rows.Close()

	var c Counts
	for rows.Next() {
		var decision string
		var n int
		if err := rows.Scan(&decision, &n); err != nil {
			return Counts{}, fmt.Errorf("history: scan: %w", err)
		}
		switch decision {
		case model.DecisionAllow.String():
			c.Allowed = n
		case model.DecisionEscalate.String():
			c.Escalated = n
		case model.DecisionBlock.String():
			c.Blocked = n
		}
	}
	return c, rows.Err()
}
