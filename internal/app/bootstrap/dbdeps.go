// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/attendhub/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the backends created in ConnectDB and shared by every hook.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Snapshots is started in OnReady and stopped in Shutdown.
	Snapshots *workers.DefaulterSnapshot
}
