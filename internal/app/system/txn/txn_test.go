package txn_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/attendhub/internal/app/system/txn"
	"github.com/dalemusser/attendhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestIsNotSupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("disk full"), false},
		{"code 20", mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"}, true},
		{"code 51", mongo.CommandError{Code: 51}, true},
		{"code 263", mongo.CommandError{Code: 263}, true},
		{"unrelated code", mongo.CommandError{Code: 11000, Message: "E11000 duplicate key"}, false},
		{"two keywords", errors.New("Transaction failed: not a Replica Set member"), true},
		{"session not supported", errors.New("sessions are not supported by this deployment"), true},
		{"single keyword", errors.New("session 65f0 2024-03-01 FN/0 is locked"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := txn.IsNotSupported(tt.err); got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRun_CommitsWrites(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := txn.Run(ctx, db, zap.NewNop(), func(ctx context.Context) error {
		if _, err := db.Collection("things").InsertOne(ctx, bson.M{"n": 1}); err != nil {
			return err
		}
		_, err := db.Collection("things").InsertOne(ctx, bson.M{"n": 2})
		return err
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	n, err := db.Collection("things").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 2 {
		t.Errorf("documents: got %d, want 2", n)
	}
}

func TestRun_ReturnsCallbackError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sentinel := errors.New("stop")
	err := txn.Run(ctx, db, zap.NewNop(), func(ctx context.Context) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("Run error: got %v, want %v", err, sentinel)
	}
}
