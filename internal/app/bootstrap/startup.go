// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	userstore "github.com/dalemusser/attendhub/internal/app/store/users"
	"github.com/dalemusser/attendhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup applies configured timeouts and makes sure an admin can sign in.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})
	return ensureAdmin(ctx, coreCfg.Env, appCfg, deps, logger)
}

// ensureAdmin creates the bootstrap admin if no user holds AdminLoginID.
// An existing user is left untouched, including their password.
func ensureAdmin(ctx context.Context, env string, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	created, err := userstore.New(deps.MongoDatabase).EnsureAdmin(ctx, appCfg.AdminLoginID, appCfg.AdminPassword, appCfg.AdminEmail)
	if err != nil {
		logger.Error("bootstrap admin setup failed", zap.String("login_id", appCfg.AdminLoginID), zap.Error(err))
		return err
	}
	if created {
		logger.Info("bootstrap admin created", zap.String("login_id", appCfg.AdminLoginID))
		if env == "prod" && appCfg.AdminPassword == defaultAdminPassword {
			logger.Warn("bootstrap admin uses the default password; change it before go-live",
				zap.String("login_id", appCfg.AdminLoginID))
		}
	}
	return nil
}
