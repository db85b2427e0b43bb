package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultTestMongoURI is used when ATTENDHUB_TEST_MONGO_URI is unset.
const DefaultTestMongoURI = "mongodb://localhost:27017"

var (
	clientOnce sync.Once
	client     *mongo.Client
	clientErr  error
)

func sharedClient() (*mongo.Client, error) {
	clientOnce.Do(func() {
		uri := os.Getenv("ATTENDHUB_TEST_MONGO_URI")
		if uri == "" {
			uri = DefaultTestMongoURI
		}
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(2*time.Second))
		if err != nil {
			clientErr = err
			return
		}
		if err := c.Ping(ctx, nil); err != nil {
			_ = c.Disconnect(context.Background())
			clientErr = err
			return
		}
		client = c
	})
	return client, clientErr
}

// SetupTestDB returns a fresh database unique to t. The database is
// dropped when the test finishes. Tests are skipped when MongoDB is not
// reachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	c, err := sharedClient()
	if err != nil {
		t.Skipf("mongodb not available: %v", err)
	}

	name := fmt.Sprintf("attendhub_test_%s", primitive.NewObjectID().Hex())
	db := c.Database(name)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
	})
	return db
}

// TestContext returns a context with a timeout suitable for one test.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
