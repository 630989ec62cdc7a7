// Package store provides SQLite-based storage for PaperBot digests,
// subscribers, and run history.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Schema is the SQLite schema for PaperBot.
const Schema = `
CREATE TABLE IF NOT EXISTS digests (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    date          TEXT NOT NULL UNIQUE,
    markdown      TEXT NOT NULL,
    paper_count   INTEGER DEFAULT 0,
    total_fetched INTEGER DEFAULT 0,
    tokens_used   INTEGER DEFAULT 0,
    cost          REAL DEFAULT 0,
    created_at    TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS subscribers (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    email      TEXT NOT NULL UNIQUE,
    active     INTEGER DEFAULT 1,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS runs (
    id         TEXT PRIMARY KEY,
    day        TEXT NOT NULL,
    duration_ms INTEGER DEFAULT 0,
    fetched    INTEGER DEFAULT 0,
    picked     INTEGER DEFAULT 0,
    by_source  TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_digests_date ON digests(date);
CREATE INDEX IF NOT EXISTS idx_runs_day ON runs(day);
`

// DigestRow is a stored digest.
type DigestRow struct {
	Date         string    `json:"date"`
	Markdown     string    `json:"markdown"`
	PaperCount   int       `json:"paper_count"`
	TotalFetched int       `json:"total_fetched"`
	TokensUsed   int       `json:"tokens_used"`
	Cost         float64   `json:"cost"`
	CreatedAt    time.Time `json:"created_at"`
}

// Subscriber is a digest email recipient.
type Subscriber struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Run records one aggregation pass.
type Run struct {
	ID       string         `json:"id"`
	Day      string         `json:"day"`
	Duration time.Duration  `json:"duration"`
	Fetched  int            `json:"fetched"`
	Picked   int            `json:"picked"`
	BySource map[string]int `json:"by_source"`
}

// Store provides PaperBot data persistence.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a new Store and initializes the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, logger: slog.Default()}, nil
}

// SaveDigest stores a rendered digest, replacing any earlier one for the
// same day.
func (s *Store) SaveDigest(ctx context.Context, d *DigestRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO digests (date, markdown, paper_count, total_fetched, tokens_used, cost)
		VALUES (?, ?, ?, ?, ?, ?)
	`, d.Date, d.Markdown, d.PaperCount, d.TotalFetched, d.TokensUsed, d.Cost)
	return err
}

// GetDigest retrieves the digest for a specific day, or nil if none exists.
func (s *Store) GetDigest(ctx context.Context, date string) (*DigestRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT date, markdown, paper_count, total_fetched, tokens_used, cost, created_at
		FROM digests WHERE date = ?
	`, date)
	return scanDigest(row)
}

// GetLatestDigest retrieves the most recent digest, or nil if none exists.
func (s *Store) GetLatestDigest(ctx context.Context) (*DigestRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT date, markdown, paper_count, total_fetched, tokens_used, cost, created_at
		FROM digests ORDER BY date DESC LIMIT 1
	`)
	return scanDigest(row)
}

func scanDigest(row *sql.Row) (*DigestRow, error) {
	var d DigestRow
	if err := row.Scan(&d.Date, &d.Markdown, &d.PaperCount, &d.TotalFetched, &d.TokensUsed, &d.Cost, &d.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// AddSubscriber registers an email address; re-adding reactivates it.
func (s *Store) AddSubscriber(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscribers (email, active) VALUES (?, 1)
		ON CONFLICT(email) DO UPDATE SET active = 1
	`, email)
	return err
}

// RemoveSubscriber deactivates an email address.
func (s *Store) RemoveSubscriber(ctx context.Context, email string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE subscribers SET active = 0 WHERE email = ?`, email)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("subscriber not found: %s", email)
	}
	return nil
}

// GetActiveSubscribers returns all active subscribers.
func (s *Store) GetActiveSubscribers(ctx context.Context) ([]Subscriber, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, active, created_at FROM subscribers
		WHERE active = 1 ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []Subscriber
	for rows.Next() {
		var sub Subscriber
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.Active, &sub.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// RecordRun stores the stats of one aggregation pass and returns its id.
func (s *Store) RecordRun(ctx context.Context, run *Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	bySource, _ := json.Marshal(run.BySource)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, day, duration_ms, fetched, picked, by_source)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.Day, run.Duration.Milliseconds(), run.Fetched, run.Picked, string(bySource))
	return run.ID, err
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, day, duration_ms, fetched, picked, by_source
		FROM runs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var ms int64
		var bySource sql.NullString
		if err := rows.Scan(&r.ID, &r.Day, &ms, &r.Fetched, &r.Picked, &bySource); err != nil {
			return nil, err
		}
		r.Duration = time.Duration(ms) * time.Millisecond
		if bySource.Valid && bySource.String != "" {
			if err := json.Unmarshal([]byte(bySource.String), &r.BySource); err != nil {
				s.logger.Warn("corrupt by_source column", "run", r.ID, "error", err)
			}
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
