// Package usage records per-request metadata for translation attempts in
// SQLite. It never stores user-authored text or generated content.
package usage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Outcome classifies how a translation attempt ended.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeFallback Outcome = "fallback"
	OutcomeConfig   Outcome = "config_error"
	OutcomeUpstream Outcome = "upstream_error"
	OutcomeInternal Outcome = "internal_error"
)

// Event is one translation attempt.
type Event struct {
	ID               string        `json:"id"`
	RequestID        string        `json:"request_id,omitempty"`
	Profile          string        `json:"profile"`
	Language         string        `json:"language"`
	Step             int           `json:"step"`
	Style            string        `json:"style"`
	Model            string        `json:"model"`
	Outcome          Outcome       `json:"outcome"`
	Status           int           `json:"status"`
	Latency          time.Duration `json:"latency"`
	PromptTokens     int           `json:"prompt_tokens"`
	CompletionTokens int           `json:"completion_tokens"`
	CreatedAt        time.Time     `json:"created_at"`
}

// Summary aggregates events per outcome.
type Summary struct {
	Total        int             `json:"total"`
	ByOutcome    map[Outcome]int `json:"by_outcome"`
	AvgLatency   time.Duration   `json:"avg_latency"`
	TotalTokens  int             `json:"total_tokens"`
	FirstEventAt time.Time       `json:"first_event_at"`
	LastEventAt  time.Time       `json:"last_event_at"`
}

// Store manages usage events in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) a SQLite database at the given path.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS usage_events (
			id                TEXT PRIMARY KEY,
			request_id        TEXT NOT NULL DEFAULT '',
			profile           TEXT NOT NULL,
			language          TEXT NOT NULL,
			step              INTEGER NOT NULL,
			style             TEXT NOT NULL DEFAULT '',
			model             TEXT NOT NULL DEFAULT '',
			outcome           TEXT NOT NULL,
			status            INTEGER NOT NULL,
			latency_ms        INTEGER NOT NULL DEFAULT 0,
			prompt_tokens     INTEGER NOT NULL DEFAULT 0,
			completion_tokens INTEGER NOT NULL DEFAULT 0,
			created_at        DATETIME NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_usage_events_created_at
			ON usage_events(created_at);
	`)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Record inserts an event, assigning an ID and timestamp when missing.
func (s *Store) Record(ctx context.Context, e *Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage_events (id, request_id, profile, language, step, style, model,
		                           outcome, status, latency_ms, prompt_tokens, completion_tokens, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.RequestID, e.Profile, e.Language, e.Step, e.Style, e.Model,
		string(e.Outcome), e.Status, e.Latency.Milliseconds(), e.PromptTokens, e.CompletionTokens, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("recording usage event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, request_id, profile, language, step, style, model,
		        outcome, status, latency_ms, prompt_tokens, completion_tokens, created_at
		 FROM usage_events ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		var outcome string
		var latencyMS int64
		if err := rows.Scan(
			&e.ID, &e.RequestID, &e.Profile, &e.Language, &e.Step, &e.Style, &e.Model,
			&outcome, &e.Status, &latencyMS, &e.PromptTokens, &e.CompletionTokens, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.Outcome = Outcome(outcome)
		e.Latency = time.Duration(latencyMS) * time.Millisecond
		events = append(events, e)
	}
	return events, rows.Err()
}

// Summarize aggregates all recorded events.
func (s *Store) Summarize(ctx context.Context) (*Summary, error) {
	sum := &Summary{ByOutcome: make(map[Outcome]int)}

	rows, err := s.db.QueryContext(ctx,
		`SELECT outcome, COUNT(*) FROM usage_events GROUP BY outcome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		sum.ByOutcome[Outcome(outcome)] = n
		sum.Total += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if sum.Total == 0 {
		return sum, nil
	}

	var avgMS float64
	var tokens int
	err = s.db.QueryRowContext(ctx,
		`SELECT AVG(latency_ms), COALESCE(SUM(prompt_tokens + completion_tokens), 0)
		 FROM usage_events`).Scan(&avgMS, &tokens)
	if err != nil {
		return nil, err
	}
	sum.AvgLatency = time.Duration(avgMS * float64(time.Millisecond))
	sum.TotalTokens = tokens

	first, err := s.edgeEvent(ctx, "ASC")
	if err != nil {
		return nil, err
	}
	last, err := s.edgeEvent(ctx, "DESC")
	if err != nil {
		return nil, err
	}
	sum.FirstEventAt, sum.LastEventAt = first, last
	return sum, nil
}

func (s *Store) edgeEvent(ctx context.Context, order string) (time.Time, error) {
	var t time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at FROM usage_events ORDER BY created_at `+order+` LIMIT 1`).Scan(&t)
	return t, err
}
