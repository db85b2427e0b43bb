// Package health reports whether the service can reach MongoDB.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/attendhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/httputil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type Handler struct {
	Client *mongo.Client
	Log    *zap.Logger
}

func NewHandler(client *mongo.Client, logger *zap.Logger) *Handler {
	return &Handler{Client: client, Log: logger}
}

type healthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// Serve handles GET and HEAD /health: 200 when the primary answers a ping
// within the ping timeout, 503 otherwise.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	start := time.Now()
	err := h.Client.Ping(ctx, readpref.Primary())
	resp := healthResponse{Status: "ok", Database: "connected", LatencyMS: time.Since(start).Milliseconds()}
	status := http.StatusOK

	if err != nil {
		h.Log.Error("health check: mongo ping failed", zap.Error(err))
		resp.Status, resp.Database, resp.Error = "error", "disconnected", err.Error()
		status = http.StatusServiceUnavailable
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(status)
		return
	}
	httputil.WriteJSON(w, status, resp)
}
