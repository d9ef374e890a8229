package trace

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSink appends Events to a durable table for operators who need
// trace history that outlives both the process and Redis's eviction.
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink connects to connString and verifies connectivity.
// It does not create the scheduler_trace_events table — migrations are
// the caller's responsibility.
func NewPostgresSink(ctx context.Context, connString string) (*PostgresSink, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, err
	}
	config.MaxConns = 20
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}
	return &PostgresSink{pool: pool}, nil
}

// Append inserts e into scheduler_trace_events.
func (s *PostgresSink) Append(ctx context.Context, e Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO scheduler_trace_events (task_id, stage, occurred_at, priority, from_status, to_status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.TaskID, e.Stage, e.Timestamp, e.Priority, e.From, e.To)
	return err
}

// Close closes the connection pool.
func (s *PostgresSink) Close() error {
	s.pool.Close()
	return nil
}
