// Package mongo stores snapshots as documents keyed by collection name.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clientkit/internal/config"
	"clientkit/internal/snapshot"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	collectionName = "snapshots"
	connectTimeout = 10 * time.Second

	errFailedConnectFmt        = "failed to connect to mongo: %w"
	errFailedPingFmt           = "failed to ping mongo: %w"
	errFailedLoadSnapshotFmt   = "failed to load snapshot %s: %w"
	errFailedSaveSnapshotFmt   = "failed to save snapshot %s: %w"
	errFailedDeleteSnapshotFmt = "failed to delete snapshot %s: %w"
)

type document struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ snapshot.Store = (*Store)(nil)

func New(ctx context.Context, cfg *config.MongoConfig) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf(errFailedConnectFmt, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf(errFailedPingFmt, err)
	}

	return &Store{
		client:     client,
		collection: client.Database(cfg.Database).Collection(collectionName),
	}, nil
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	var doc document
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, snapshot.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf(errFailedLoadSnapshotFmt, key, err)
	}
	return doc.Data, nil
}

func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	doc := document{Key: key, Data: data, UpdatedAt: time.Now().UTC()}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts); err != nil {
		return fmt.Errorf(errFailedSaveSnapshotFmt, key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf(errFailedDeleteSnapshotFmt, key, err)
	}
	return nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
