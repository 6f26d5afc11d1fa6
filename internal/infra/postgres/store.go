// Package postgres stores snapshots in a single PostgreSQL table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clientkit/internal/config"
	"clientkit/internal/snapshot"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	poolHealthCheckPeriod = time.Minute
	poolMaxConnLifetime   = time.Hour
	poolMaxConnIdleTime   = 30 * time.Minute
	dbPingTimeout         = 5 * time.Second

	createTableSQL = `CREATE TABLE IF NOT EXISTS snapshots (
	key        TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	loadSQL   = `SELECT data FROM snapshots WHERE key = $1`
	upsertSQL = `INSERT INTO snapshots (key, data, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`
	deleteSQL = `DELETE FROM snapshots WHERE key = $1`

	errFailedParseDatabaseConfigFmt  = "failed to parse database config: %w"
	errFailedCreateConnectionPoolFmt = "failed to create connection pool: %w"
	errFailedPingDatabaseFmt         = "failed to ping database: %w"
	errFailedMigrateFmt              = "failed to create snapshots table: %w"
	errFailedLoadSnapshotFmt         = "failed to load snapshot: %w"
	errFailedSaveSnapshotFmt         = "failed to save snapshot: %w"
	errFailedDeleteSnapshotFmt       = "failed to delete snapshot: %w"
)

var (
	errFailedParseDatabaseConfig  = func(err error) error { return fmt.Errorf(errFailedParseDatabaseConfigFmt, err) }
	errFailedCreateConnectionPool = func(err error) error { return fmt.Errorf(errFailedCreateConnectionPoolFmt, err) }
	errFailedPingDatabase         = func(err error) error { return fmt.Errorf(errFailedPingDatabaseFmt, err) }
	errFailedMigrate              = func(err error) error { return fmt.Errorf(errFailedMigrateFmt, err) }
	errFailedLoadSnapshot         = func(err error) error { return fmt.Errorf(errFailedLoadSnapshotFmt, err) }
	errFailedSaveSnapshot         = func(err error) error { return fmt.Errorf(errFailedSaveSnapshotFmt, err) }
	errFailedDeleteSnapshot       = func(err error) error { return fmt.Errorf(errFailedDeleteSnapshotFmt, err) }
)

type Store struct {
	Pool *pgxpool.Pool
}

var _ snapshot.Store = (*Store)(nil)

func New(ctx context.Context, cfg *config.DatabaseConfig) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, errFailedParseDatabaseConfig(err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	poolConfig.MinConns = int32(cfg.MinConns)
	return connect(ctx, poolConfig)
}

func connect(ctx context.Context, poolConfig *pgxpool.Config) (*Store, error) {
	poolConfig.HealthCheckPeriod = poolHealthCheckPeriod
	poolConfig.MaxConnLifetime = poolMaxConnLifetime
	poolConfig.MaxConnIdleTime = poolMaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errFailedCreateConnectionPool(err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, errFailedPingDatabase(err)
	}

	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, errFailedMigrate(err)
	}

	return &Store{Pool: pool}, nil
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.Pool.QueryRow(ctx, loadSQL, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, snapshot.ErrNotFound
	}
	if err != nil {
		return nil, errFailedLoadSnapshot(err)
	}
	return data, nil
}

func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	if _, err := s.Pool.Exec(ctx, upsertSQL, key, data); err != nil {
		return errFailedSaveSnapshot(err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.Pool.Exec(ctx, deleteSQL, key); err != nil {
		return errFailedDeleteSnapshot(err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.Pool != nil {
		s.Pool.Close()
	}
	return nil
}
