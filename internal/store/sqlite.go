package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/outreach-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Usage timestamps are unix milliseconds so range filters compare numerically.
const sqliteMigration = `
CREATE TABLE IF NOT EXISTS pipeline_sessions (
	id         TEXT PRIMARY KEY,
	snapshot   TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS api_usage (
	id          TEXT PRIMARY KEY,
	service     TEXT NOT NULL,
	endpoint    TEXT NOT NULL,
	method      TEXT NOT NULL,
	status_code INTEGER NOT NULL DEFAULT 0,
	credits     INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_api_usage_service_created ON api_usage(service, created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetSnapshot(ctx context.Context, sessionID string) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT snapshot FROM pipeline_sessions WHERE id = ?`, sessionID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get snapshot %s", sessionID)
	}
	return []byte(data), nil
}

func (s *SQLiteStore) PutSnapshot(ctx context.Context, sessionID string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pipeline_sessions (id, snapshot, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET snapshot = excluded.snapshot, updated_at = excluded.updated_at`,
		sessionID, string(data), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: put snapshot %s", sessionID)
}

func (s *SQLiteStore) DeleteSnapshot(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM pipeline_sessions WHERE id = ?`, sessionID)
	return eris.Wrapf(err, "sqlite: delete snapshot %s", sessionID)
}

func (s *SQLiteStore) RecordUsage(ctx context.Context, rec model.UsageRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO api_usage (id, service, endpoint, method, status_code, credits, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Service), rec.Endpoint, rec.Method, rec.StatusCode, rec.Credits, rec.Timestamp.UnixMilli(),
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert usage")
	}
	return checkRowsAffected(res, "usage", rec.ID)
}

func (s *SQLiteStore) ListUsage(ctx context.Context, filter UsageFilter) ([]model.UsageRecord, error) {
	query := `SELECT id, service, endpoint, method, status_code, credits, created_at FROM api_usage WHERE 1=1`
	var args []any

	if filter.Service != "" {
		query += ` AND service = ?`
		args = append(args, string(filter.Service))
	}
	if !filter.Since.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, filter.Since.UnixMilli())
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list usage")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.UsageRecord
	for rows.Next() {
		var r model.UsageRecord
		var service string
		var ms int64
		if err := rows.Scan(&r.ID, &service, &r.Endpoint, &r.Method, &r.StatusCode, &r.Credits, &ms); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan usage")
		}
		r.Service = model.Service(service)
		r.Timestamp = time.UnixMilli(ms).UTC()
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list usage iterate")
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not written: %s", entity, id)
	}
	return nil
}
