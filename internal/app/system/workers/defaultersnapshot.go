// internal/app/system/workers/defaultersnapshot.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/attendhub/internal/app/store/queries/attendancequeries"
	settingsstore "github.com/dalemusser/attendhub/internal/app/store/settings"
	snapshotstore "github.com/dalemusser/attendhub/internal/app/store/snapshots"
	"github.com/dalemusser/attendhub/internal/app/system/timeouts"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// DefaulterSnapshot is a background worker that periodically stores the
// current defaulter list so trends can be reviewed later.
type DefaulterSnapshot struct {
	db        *mongo.Database
	settings  *settingsstore.Store
	snapshots *snapshotstore.Store
	log       *zap.Logger
	interval  time.Duration
	fallback  float64
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewDefaulterSnapshot creates the worker.
//
// Parameters:
//   - db: database holding students and the attendance ledger
//   - logger: zap logger for logging
//   - interval: how often to take a snapshot (e.g., 1 hour)
//   - fallback: threshold used when no defaulter_threshold setting is stored
func NewDefaulterSnapshot(db *mongo.Database, logger *zap.Logger, interval time.Duration, fallback float64) *DefaulterSnapshot {
	return &DefaulterSnapshot{
		db:        db,
		settings:  settingsstore.New(db),
		snapshots: snapshotstore.New(db),
		log:       logger,
		interval:  interval,
		fallback:  fallback,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the background snapshot loop.
func (w *DefaulterSnapshot) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("defaulter snapshot worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *DefaulterSnapshot) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("defaulter snapshot worker stopped")
}

func (w *DefaulterSnapshot) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), timeouts.Batch())
			if _, err := w.RunOnce(ctx); err != nil {
				w.log.Error("defaulter snapshot failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// RunOnce computes the defaulter list at the current threshold and stores it.
func (w *DefaulterSnapshot) RunOnce(ctx context.Context) (models.DefaulterSnapshot, error) {
	threshold, err := w.settings.DefaulterThreshold(ctx, w.fallback)
	if err != nil {
		return models.DefaulterSnapshot{}, err
	}
	rows, err := attendancequeries.Defaulters(ctx, w.db, threshold, attendancequeries.Cohort{})
	if err != nil {
		return models.DefaulterSnapshot{}, err
	}

	ids := make([]primitive.ObjectID, len(rows))
	for i, r := range rows {
		ids[i] = r.StudentID
	}
	snap, err := w.snapshots.Save(ctx, models.DefaulterSnapshot{
		TakenAt:    time.Now().UTC(),
		Threshold:  threshold,
		StudentIDs: ids,
	})
	if err != nil {
		return models.DefaulterSnapshot{}, err
	}
	w.log.Info("defaulter snapshot stored",
		zap.Float64("threshold", threshold),
		zap.Int("count", snap.Count))
	return snap, nil
}
