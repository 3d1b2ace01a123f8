package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"cryptoStats/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS dashboard_cycles (
	id          BIGSERIAL PRIMARY KEY,
	coin        TEXT        NOT NULL,
	generation  BIGINT      NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL,
	outcome     TEXT        NOT NULL,
	error_kind  TEXT,
	error       TEXT,
	price       NUMERIC,
	market_cap  NUMERIC,
	change_24h  NUMERIC,
	deviation   NUMERIC,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store records dashboard cycles in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the dashboard_cycles table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// PutCycle inserts one cycle record.
func (s *Store) PutCycle(ctx context.Context, record model.CycleRecord) error {
	startedAt, err := time.Parse(time.RFC3339Nano, record.StartedAt)
	if err != nil {
		return fmt.Errorf("parse started_at: %w", err)
	}
	finishedAt, err := time.Parse(time.RFC3339Nano, record.FinishedAt)
	if err != nil {
		return fmt.Errorf("parse finished_at: %w", err)
	}

	var price, marketCap, change, deviation *string
	if record.Stats != nil {
		price = strPtr(record.Stats.Price.String())
		marketCap = strPtr(record.Stats.MarketCap.String())
		change = strPtr(record.Stats.Change24h.String())
	}
	if record.Deviation.Valid {
		deviation = strPtr(record.Deviation.Decimal.String())
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO dashboard_cycles (
			coin, generation, started_at, finished_at, outcome, error_kind, error,
			price, market_cap, change_24h, deviation
		) VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8::numeric, $9::numeric, $10::numeric, $11::numeric)
	`,
		record.Coin,
		int64(record.Generation),
		startedAt,
		finishedAt,
		record.Outcome,
		record.ErrorKind,
		record.Error,
		price,
		marketCap,
		change,
		deviation,
	)
	if err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}
	return nil
}

func strPtr(s string) *string {
	return &s
}
