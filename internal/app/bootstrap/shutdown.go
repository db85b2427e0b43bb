// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// OnReady starts background work once the server is accepting requests.
func OnReady(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) {
	if deps.Snapshots != nil {
		deps.Snapshots.Start()
	}
	logger.Info("attendhub ready")
}

// Shutdown stops background work and disconnects MongoDB.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Snapshots != nil {
		deps.Snapshots.Stop()
	}
	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
