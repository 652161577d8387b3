package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	seq           INTEGER PRIMARY KEY AUTOINCREMENT,
	id            TEXT NOT NULL UNIQUE,
	at            TEXT NOT NULL,
	document_type TEXT NOT NULL,
	risk_score    INTEGER NOT NULL,
	key_issues    INTEGER NOT NULL,
	red_flags     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS entries_at ON entries(at);
`

// SQLiteStore keeps the history in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("analytics: empty database path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("analytics: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("analytics: open: %w", err)
	}
	// One writer at a time.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("analytics: schema: %w", err)
	}
	log.Debug().Str("path", path).Msg("analytics store opened")
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Record(ctx context.Context, e Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (id, at, document_type, risk_score, key_issues, red_flags) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.At.UTC().Format(time.RFC3339Nano), e.DocumentType, e.RiskScore, e.KeyIssues, e.RedFlags)
	if err != nil {
		return fmt.Errorf("analytics: insert: %w", err)
	}
	return nil
}

// Summary aggregates in SQL by score.
func (s *SQLiteStore) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	rows, err := s.db.QueryContext(ctx, `SELECT risk_score, COUNT(*) FROM entries GROUP BY risk_score`)
	if err != nil {
		return sum, fmt.Errorf("analytics: summary: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var score, count int
		if err := rows.Scan(&score, &count); err != nil {
			return sum, fmt.Errorf("analytics: summary scan: %w", err)
		}
		sum.add(score, count)
	}
	if err := rows.Err(); err != nil {
		return sum, fmt.Errorf("analytics: summary: %w", err)
	}
	sum.finish()
	return sum, nil
}

func (s *SQLiteStore) Trends(ctx context.Context) (Trends, error) {
	entries, err := s.History(ctx)
	if err != nil {
		return nil, err
	}
	return TrendsOf(entries), nil
}

// History returns all entries in insertion order.
func (s *SQLiteStore) History(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, at, document_type, risk_score, key_issues, red_flags FROM entries ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("analytics: history: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var (
			e      Entry
			id, at string
		)
		if err := rows.Scan(&id, &at, &e.DocumentType, &e.RiskScore, &e.KeyIssues, &e.RedFlags); err != nil {
			return nil, fmt.Errorf("analytics: history scan: %w", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			log.Warn().Err(err).Str("id", id).Msg("analytics: bad entry id")
		}
		if e.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			log.Warn().Err(err).Str("at", at).Msg("analytics: bad entry time")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("analytics: reset: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
