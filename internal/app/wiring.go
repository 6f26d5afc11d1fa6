package app

import (
	"context"
	"fmt"

	"clientkit/internal/config"
	"clientkit/internal/infra/mongo"
	"clientkit/internal/infra/postgres"
	"clientkit/internal/infra/redis"
	"clientkit/internal/infra/sqlite"
	"clientkit/internal/snapshot"
	"clientkit/internal/storage"
	"clientkit/internal/storage/s3"
)

// OpenStore connects the snapshot backend selected by the store driver.
func OpenStore(ctx context.Context, cfg *config.Config) (snapshot.Store, error) {
	var (
		store snapshot.Store
		err   error
	)

	switch cfg.Store.Driver {
	case config.StoreMemory:
		return snapshot.NewMemoryStore(), nil
	case config.StoreSQLite:
		store, err = sqlite.Open(ctx, cfg.Store.SQLitePath)
	case config.StorePostgres:
		store, err = postgres.New(ctx, &cfg.Database)
	case config.StoreRedis:
		store, err = redis.New(ctx, &cfg.Redis)
	case config.StoreMongo:
		store, err = mongo.New(ctx, &cfg.Mongo)
	default:
		return nil, fmt.Errorf(errUnknownStoreFmt, cfg.Store.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf(errOpenStoreFmt, cfg.Store.Driver, err)
	}
	return store, nil
}

// OpenBlobStore returns the store that holds uploaded file bodies.
func OpenBlobStore(cfg *config.Config) (storage.BlobStore, error) {
	switch cfg.Blob.Driver {
	case config.BlobMemory:
		return storage.NewMemoryBlobStore(), nil
	case config.BlobS3:
		client, err := s3.NewClient(&cfg.AWS, cfg.Blob.Bucket, cfg.App.PresignedURLExpiry)
		if err != nil {
			return nil, fmt.Errorf(errOpenBlobFmt, err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf(errUnknownBlobFmt, cfg.Blob.Driver)
	}
}

const (
	errUnknownStoreFmt = "unknown store driver %q"
	errOpenStoreFmt    = "failed to open %s store: %w"
	errUnknownBlobFmt  = "unknown blob driver %q"
	errOpenBlobFmt     = "failed to create S3 client: %w"
)
