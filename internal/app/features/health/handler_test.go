package health_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/attendhub/internal/app/features/health"
	"github.com/dalemusser/attendhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type healthBody struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error"`
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := health.NewHandler(db.Client(), zap.NewNop())

	rec := httptest.NewRecorder()
	handler.Serve(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	testutil.AssertStatus(t, rec, http.StatusOK)
	var body healthBody
	testutil.DecodeJSON(t, rec, &body)
	if body.Status != "ok" || body.Database != "connected" {
		t.Errorf("body = %+v", body)
	}
}

func TestServe_DatabaseUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(200*time.Millisecond))
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	handler := health.NewHandler(client, zap.NewNop())
	rec := httptest.NewRecorder()
	handler.Serve(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	testutil.AssertStatus(t, rec, http.StatusServiceUnavailable)
	var body healthBody
	testutil.DecodeJSON(t, rec, &body)
	if body.Status != "error" || body.Error == "" {
		t.Errorf("body = %+v", body)
	}
}

func TestServe_Head(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := health.NewHandler(db.Client(), zap.NewNop())

	rec := httptest.NewRecorder()
	handler.Serve(rec, httptest.NewRequest(http.MethodHead, "/health", nil))

	testutil.AssertStatus(t, rec, http.StatusOK)
	if rec.Body.Len() != 0 {
		t.Errorf("HEAD wrote a body: %q", rec.Body.String())
	}
}
