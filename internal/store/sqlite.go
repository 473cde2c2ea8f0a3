package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/adrecon/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string, ttl time.Duration) (*SQLiteStore, error) {
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
			_ = db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, ttl: ttlOrDefault(ttl), now: time.Now}, nil
}

// expires_at holds unix nanoseconds.
const sqliteMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	session_id  TEXT PRIMARY KEY,
	snapshot_id TEXT NOT NULL,
	payload     TEXT NOT NULL,
	row_count   INTEGER NOT NULL,
	created_at  INTEGER NOT NULL,
	expires_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_expires_at ON snapshots(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Put(ctx context.Context, sessionID string, snap *model.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal snapshot")
	}
	now := s.now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (session_id, snapshot_id, payload, row_count, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
			snapshot_id = excluded.snapshot_id,
			payload = excluded.payload,
			row_count = excluded.row_count,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`,
		sessionID, snap.ID, string(payload), snap.Len(), now.UnixNano(), now.Add(s.ttl).UnixNano(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: put snapshot for session %s", sessionID)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, sessionID string) (*model.Snapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE session_id = ? AND expires_at > ?`,
		sessionID, s.now().UnixNano(),
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "sqlite: get snapshot for session %s", sessionID)
	}

	var snap model.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal snapshot")
	}
	return &snap, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE session_id = ?`, sessionID)
	return eris.Wrapf(err, "sqlite: delete snapshot for session %s", sessionID)
}

func (s *SQLiteStore) DeleteExpired(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE expires_at <= ?`, s.now().UnixNano(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired snapshots")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}
