package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yogeshsharma140781/Lingoa/internal/feedback"
)

// practice_days accumulates per-day speaking time; session_reviews keeps the
// end-of-session feedback as JSONB so the shape can evolve without schema
// churn.
const ddlProgress = `
CREATE TABLE IF NOT EXISTS practice_days (
    user_id TEXT             NOT NULL,
    day     DATE             NOT NULL,
    seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
    PRIMARY KEY (user_id, day)
);

CREATE TABLE IF NOT EXISTS session_reviews (
    session_id TEXT        PRIMARY KEY,
    user_id    TEXT        NOT NULL,
    review     JSONB       NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_session_reviews_user_id
    ON session_reviews (user_id);`

// PGStore is the PostgreSQL-backed [Store]. All methods are safe for
// concurrent use; they share a single [pgxpool.Pool].
type PGStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PGStore)(nil)

// NewPGStore connects to the database at dsn and ensures the progress tables
// exist.
func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("progress store: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("progress store: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, ddlProgress); err != nil {
		pool.Close()
		return nil, fmt.Errorf("progress store: migrate: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

// Ping verifies database connectivity, for readiness checks.
func (p *PGStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// RecordPractice implements [Store].
func (p *PGStore) RecordPractice(ctx context.Context, userID string, day time.Time, seconds float64) error {
	const q = `
		INSERT INTO practice_days (user_id, day, seconds)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, day)
		DO UPDATE SET seconds = practice_days.seconds + EXCLUDED.seconds`

	if _, err := p.pool.Exec(ctx, q, userID, dateOf(day), seconds); err != nil {
		return fmt.Errorf("progress store: record practice: %w", err)
	}
	return nil
}

// RecordReview implements [Store].
func (p *PGStore) RecordReview(ctx context.Context, userID, sessionID string, review *feedback.Review) error {
	payload, err := json.Marshal(review)
	if err != nil {
		return fmt.Errorf("progress store: marshal review: %w", err)
	}

	const q = `
		INSERT INTO session_reviews (session_id, user_id, review)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id) DO UPDATE SET review = EXCLUDED.review`

	if _, err := p.pool.Exec(ctx, q, sessionID, userID, payload); err != nil {
		return fmt.Errorf("progress store: record review: %w", err)
	}
	return nil
}

// ReviewForSession implements [Store].
func (p *PGStore) ReviewForSession(ctx context.Context, sessionID string) (*feedback.Review, error) {
	const q = `SELECT review FROM session_reviews WHERE session_id = $1`

	var payload []byte
	err := p.pool.QueryRow(ctx, q, sessionID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoReview
	}
	if err != nil {
		return nil, fmt.Errorf("progress store: review for session: %w", err)
	}

	var review feedback.Review
	if err := json.Unmarshal(payload, &review); err != nil {
		return nil, fmt.Errorf("progress store: decode review: %w", err)
	}
	return &review, nil
}

// Summary implements [Store].
func (p *PGStore) Summary(ctx context.Context, userID string, today time.Time) (*Summary, error) {
	const q = `SELECT day, seconds FROM practice_days WHERE user_id = $1`

	rows, err := p.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("progress store: summary: %w", err)
	}

	type dayRow struct {
		Day     time.Time
		Seconds float64
	}
	collected, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (dayRow, error) {
		var r dayRow
		err := row.Scan(&r.Day, &r.Seconds)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("progress store: scan summary: %w", err)
	}

	totals := make(map[time.Time]float64, len(collected))
	for _, r := range collected {
		totals[dateOf(r.Day)] = r.Seconds
	}
	return summarize(totals, today), nil
}

// Close implements [Store].
func (p *PGStore) Close() error {
	p.pool.Close()
	return nil
}
