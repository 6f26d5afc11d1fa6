// Package redis keeps each snapshot as one string value under a key prefix.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clientkit/internal/config"
	"clientkit/internal/snapshot"

	"github.com/go-redis/redis/v8"
)

const (
	pingTimeout = 5 * time.Second

	errFailedPingRedisFmt      = "failed to ping redis at %s: %w"
	errFailedLoadSnapshotFmt   = "failed to load snapshot %s: %w"
	errFailedSaveSnapshotFmt   = "failed to save snapshot %s: %w"
	errFailedDeleteSnapshotFmt = "failed to delete snapshot %s: %w"
)

type Store struct {
	client *redis.Client
	prefix string
}

var _ snapshot.Store = (*Store)(nil)

func New(ctx context.Context, cfg *config.RedisConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf(errFailedPingRedisFmt, cfg.Addr, err)
	}

	return NewWithClient(client, cfg.KeyPrefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, snapshot.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf(errFailedLoadSnapshotFmt, key, err)
	}
	return data, nil
}

func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.key(key), data, 0).Err(); err != nil {
		return fmt.Errorf(errFailedSaveSnapshotFmt, key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf(errFailedDeleteSnapshotFmt, key, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
