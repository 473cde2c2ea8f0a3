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

	"github.com/sells-group/adrecon/internal/model"
)

// pgPool is the subset of pgxpool.Pool the store uses.
type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool pgPool
	ttl  time.Duration
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, ttl time.Duration, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
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
	return &PostgresStore{pool: pool, ttl: ttlOrDefault(ttl)}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	session_id  TEXT PRIMARY KEY,
	snapshot_id TEXT NOT NULL,
	payload     JSONB NOT NULL,
	row_count   INTEGER NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_expires_at ON snapshots(expires_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Put(ctx context.Context, sessionID string, snap *model.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal snapshot")
	}
	now := time.Now().UTC()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO snapshots (session_id, snapshot_id, payload, row_count, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (session_id) DO UPDATE SET
			snapshot_id = EXCLUDED.snapshot_id,
			payload = EXCLUDED.payload,
			row_count = EXCLUDED.row_count,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at`,
		sessionID, snap.ID, payload, snap.Len(), now, now.Add(s.ttl),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: put snapshot for session %s", sessionID)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, sessionID string) (*model.Snapshot, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM snapshots WHERE session_id = $1 AND expires_at > now()`,
		sessionID,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "postgres: get snapshot for session %s", sessionID)
	}

	var snap model.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal snapshot")
	}
	return &snap, nil
}

func (s *PostgresStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM snapshots WHERE session_id = $1`, sessionID)
	return eris.Wrapf(err, "postgres: delete snapshot for session %s", sessionID)
}

func (s *PostgresStore) DeleteExpired(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM snapshots WHERE expires_at <= now()`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired snapshots")
	}
	return int(tag.RowsAffected()), nil
}
