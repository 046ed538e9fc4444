// Package sqlite provides a file-backed outcome journal. It keeps open
// history durable on a single host without requiring a Redis server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aretw0/usher/pkg/domain"
)

// Journal implements ports.OutcomeJournal on a local SQLite file.
type Journal struct {
	db *sql.DB
}

// Open initialises the SQLite database and ensures the schema exists.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite pragmas for performance
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			slog.Warn("pragma failed", "pragma", p, "error", err)
		}
	}

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS outcomes (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		kind     TEXT NOT NULL CHECK(kind IN ('opened', 'open_failed', 'unsupported')),
		resource TEXT NOT NULL,
		detail   TEXT NOT NULL DEFAULT '',
		at       INTEGER NOT NULL -- completion time (Unix nanoseconds)
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends the outcome.
func (j *Journal) Record(ctx context.Context, out domain.Outcome) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO outcomes (kind, resource, detail, at) VALUES (?, ?, ?, ?)",
		string(out.Kind), out.Resource, out.Detail, out.At.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("sqlite error recording outcome: %w", err)
	}
	return nil
}

// Recent returns the newest outcomes first. A non-positive limit returns
// the full history.
func (j *Journal) Recent(ctx context.Context, limit int) ([]domain.Outcome, error) {
	query := "SELECT kind, resource, detail, at FROM outcomes ORDER BY id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite error reading outcomes: %w", err)
	}
	defer rows.Close()

	var out []domain.Outcome
	for rows.Next() {
		o, err := scanOutcome(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Last returns the most recent outcome.
func (j *Journal) Last(ctx context.Context) (domain.Outcome, error) {
	row := j.db.QueryRowContext(ctx,
		"SELECT kind, resource, detail, at FROM outcomes ORDER BY id DESC LIMIT 1")

	o, err := scanOutcome(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Outcome{}, domain.ErrNoOutcomes
	}
	if err != nil {
		return domain.Outcome{}, err
	}
	return o, nil
}

func scanOutcome(scan func(...any) error) (domain.Outcome, error) {
	var o domain.Outcome
	var kind string
	var nanos int64
	if err := scan(&kind, &o.Resource, &o.Detail, &nanos); err != nil {
		return domain.Outcome{}, err
	}
	o.Kind = domain.Kind(kind)
	o.At = time.Unix(0, nanos).UTC()
	return o, nil
}
