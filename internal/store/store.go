package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthChecker is anything /readyz can ping.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Event describes one prediction submission. It carries counts and the
// outcome only; symptoms, keys and model output are never recorded.
type Event struct {
	ID              uuid.UUID
	SymptomCount    int
	HasFreeText     bool
	Outcome         string
	PredictionCount int
	Duration        time.Duration
	CreatedAt       time.Time
}

// Recorder stores submission events.
type Recorder interface {
	Record(ctx context.Context, e Event) error
}

// NopRecorder drops every event. Used when the database is disabled.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) error { return nil }

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const createTableSQL = `CREATE TABLE IF NOT EXISTS prediction_events (
	id               UUID PRIMARY KEY,
	symptom_count    INTEGER NOT NULL,
	has_free_text    BOOLEAN NOT NULL,
	outcome          TEXT NOT NULL,
	prediction_count INTEGER NOT NULL,
	duration_ms      BIGINT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL
)`

const insertEventSQL = `INSERT INTO prediction_events
	(id, symptom_count, has_free_text, outcome, prediction_count, duration_ms, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

// PostgresRecorder writes events to the prediction_events table.
type PostgresRecorder struct {
	db execer
}

func NewPostgresRecorder(db execer) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

// Migrate creates the events table if it does not exist.
func (r *PostgresRecorder) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create prediction_events: %w", err)
	}
	return nil
}

func (r *PostgresRecorder) Record(ctx context.Context, e Event) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx, insertEventSQL,
		e.ID,
		e.SymptomCount,
		e.HasFreeText,
		e.Outcome,
		e.PredictionCount,
		e.Duration.Milliseconds(),
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert prediction event: %w", err)
	}
	return nil
}

// Connect opens a pgx pool and pings it before returning.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}
