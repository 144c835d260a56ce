package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aarogyam/aarogyam/internal/config"
	"github.com/aarogyam/aarogyam/internal/repository"
	"github.com/aarogyam/aarogyam/internal/repository/memstore"
	"github.com/aarogyam/aarogyam/internal/storage"
)

// backend is the persistence selected by configuration.
type backend struct {
	store    *repository.Store
	files    storage.FileStore
	streamer storage.Streamer
	db       *mongo.Database
	ping     func(ctx context.Context) error
	close    func()
}

func openBackend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*backend, error) {
	b := &backend{close: func() {}}

	switch cfg.Store {
	case config.StoreMemory:
		logger.Warn().Msg("using in-memory store, data is lost on exit")
		b.store = memstore.New()
	default:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("connect to mongodb: %w", err)
		}
		if err := client.Ping(connectCtx, nil); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("ping mongodb: %w", err)
		}
		logger.Info().Str("database", cfg.MongoDatabase).Msg("connected to mongodb")

		b.db = client.Database(cfg.MongoDatabase)
		b.store = repository.NewMongoStore(b.db)
		b.ping = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		b.close = func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				logger.Error().Err(err).Msg("disconnect mongodb")
			}
		}
	}

	switch cfg.StorageBackend {
	case config.StorageGridFS:
		fs, err := storage.NewGridFSStore(b.db)
		if err != nil {
			b.close()
			return nil, err
		}
		b.files, b.streamer = fs, fs
	default:
		b.files = storage.NewLocalStore(cfg.UploadDir, "/uploads")
	}
	return b, nil
}

// migrate creates indexes when backed by MongoDB.
func (b *backend) migrate(ctx context.Context) error {
	if b.db == nil {
		return nil
	}
	if err := repository.EnsureIndexes(ctx, b.db); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	return nil
}
