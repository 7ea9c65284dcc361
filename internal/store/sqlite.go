package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/recruit-cli/internal/model"
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
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS overrides (
	email      TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetOverride(ctx context.Context, email string) (*model.Override, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT data FROM overrides WHERE email = ?`, email,
	)

	var data string
	err := row.Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get override %s", email)
	}

	var ov model.Override
	if err := json.Unmarshal([]byte(data), &ov); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal override %s", email)
	}
	return &ov, nil
}

func (s *SQLiteStore) PutOverride(ctx context.Context, email string, ov model.Override) error {
	data, err := json.Marshal(ov)
	if err != nil {
		return eris.Wrapf(err, "sqlite: marshal override %s", email)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO overrides (email, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(email) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		email, string(data), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: put override %s", email)
}

func (s *SQLiteStore) ListOverrides(ctx context.Context) (map[string]model.Override, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT email, data FROM overrides`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list overrides")
	}
	defer rows.Close()

	out := make(map[string]model.Override)
	for rows.Next() {
		var email, data string
		if err := rows.Scan(&email, &data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan override")
		}
		var ov model.Override
		if err := json.Unmarshal([]byte(data), &ov); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal override %s", email)
		}
		out[email] = ov
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list overrides iterate")
}
