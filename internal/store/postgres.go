package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/recruit-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it in
// tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 5
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
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS overrides (
	email      TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) GetOverride(ctx context.Context, email string) (*model.Override, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT data FROM overrides WHERE email = $1`, email,
	)

	var data []byte
	err := row.Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get override %s", email)
	}

	var ov model.Override
	if err := json.Unmarshal(data, &ov); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal override %s", email)
	}
	return &ov, nil
}

func (s *PostgresStore) PutOverride(ctx context.Context, email string, ov model.Override) error {
	data, err := json.Marshal(ov)
	if err != nil {
		return eris.Wrapf(err, "postgres: marshal override %s", email)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO overrides (email, data, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		email, data, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: put override %s", email)
}

func (s *PostgresStore) ListOverrides(ctx context.Context) (map[string]model.Override, error) {
	rows, err := s.pool.Query(ctx, `SELECT email, data FROM overrides`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list overrides")
	}
	defer rows.Close()

	out := make(map[string]model.Override)
	for rows.Next() {
		var email string
		var data []byte
		if err := rows.Scan(&email, &data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan override")
		}
		var ov model.Override
		if err := json.Unmarshal(data, &ov); err != nil {
			return nil, eris.Wrapf(err, "postgres: unmarshal override %s", email)
		}
		out[email] = ov
	}
	return out, eris.Wrap(rows.Err(), "postgres: list overrides iterate")
}
