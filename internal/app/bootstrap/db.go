// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/attendhub/internal/app/system/indexes"
	"github.com/dalemusser/attendhub/internal/app/system/validators"
	"github.com/dalemusser/attendhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB pool and builds the snapshot worker.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	pool := wafflemongo.DefaultPoolConfig()
	if appCfg.MongoMaxPoolSize > 0 {
		pool.MaxPoolSize = appCfg.MongoMaxPoolSize
	}
	if appCfg.MongoMinPoolSize > 0 {
		pool.MinPoolSize = appCfg.MongoMinPoolSize
	}
	if coreCfg.DBConnectTimeout > 0 {
		pool.ConnectTimeout = coreCfg.DBConnectTimeout
	}

	client, err := wafflemongo.ConnectWithPool(ctx, appCfg.MongoURI, appCfg.MongoDatabase, pool)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	db := client.Database(appCfg.MongoDatabase)

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", pool.MaxPoolSize),
		zap.Uint64("min_pool_size", pool.MinPoolSize))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		Snapshots:     workers.NewDefaulterSnapshot(db, logger, appCfg.SnapshotInterval, appCfg.DefaulterThreshold),
	}, nil
}

// EnsureSchema attaches collection validators and creates indexes. Unique
// indexes back the duplicate checks in every store, so a failure here
// aborts startup.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := validators.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Warn("collection validators incomplete", zap.Error(err))
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("index setup failed", zap.Error(err))
		return err
	}
	return nil
}
