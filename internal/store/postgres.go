package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool used by PostgresStore. pgxmock
// satisfies it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(5)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS pipeline_sessions (
	id         TEXT PRIMARY KEY,
	snapshot   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS api_usage (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	service     TEXT NOT NULL,
	endpoint    TEXT NOT NULL,
	method      TEXT NOT NULL,
	status_code INTEGER NOT NULL DEFAULT 0,
	credits     INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_api_usage_service_created ON api_usage(service, created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) GetSnapshot(ctx context.Context, sessionID string) ([]byte, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT snapshot FROM pipeline_sessions WHERE id = $1`, sessionID,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get snapshot %s", sessionID)
	}
	return data, nil
}

func (s *PostgresStore) PutSnapshot(ctx context.Context, sessionID string, data []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO pipeline_sessions (id, snapshot, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET snapshot = EXCLUDED.snapshot, updated_at = EXCLUDED.updated_at`,
		sessionID, data, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: put snapshot %s", sessionID)
}

func (s *PostgresStore) DeleteSnapshot(ctx context.Context, sessionID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM pipeline_sessions WHERE id = $1`, sessionID)
	return eris.Wrapf(err, "postgres: delete snapshot %s", sessionID)
}

func (s *PostgresStore) RecordUsage(ctx context.Context, rec model.UsageRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_usage (id, service, endpoint, method, status_code, credits, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, string(rec.Service), rec.Endpoint, rec.Method, rec.StatusCode, rec.Credits, rec.Timestamp,
	)
	return eris.Wrap(err, "postgres: insert usage")
}

func (s *PostgresStore) ListUsage(ctx context.Context, filter UsageFilter) ([]model.UsageRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, service, endpoint, method, status_code, credits, created_at FROM api_usage
		 WHERE ($1::text = '' OR service = $1) AND created_at >= $2
		 ORDER BY created_at ASC`,
		string(filter.Service), filter.Since,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list usage")
	}
	defer rows.Close()

	var out []model.UsageRecord
	for rows.Next() {
		var r model.UsageRecord
		var service string
		if err := rows.Scan(&r.ID, &service, &r.Endpoint, &r.Method, &r.StatusCode, &r.Credits, &r.Timestamp); err != nil {
			return nil, eris.Wrap(err, "postgres: scan usage")
		}
		r.Service = model.Service(service)
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list usage iterate")
}
