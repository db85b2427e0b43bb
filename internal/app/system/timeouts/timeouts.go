// Package timeouts provides the context deadlines used by handlers and
// background jobs.
//
//   - Ping: health checks
//   - Short: single-document reads and writes
//   - Medium: lists, roster lookups, recording one session
//   - Long: leave approval and ledger-wide aggregation
//   - Batch: background snapshot jobs
package timeouts

import (
	"sync"
	"time"
)

// Defaults used until Configure is called.
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultBatch  = 60 * time.Second
)

var (
	mu     sync.RWMutex
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
	batch  = DefaultBatch
)

func get(v *time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return *v
}

// Ping returns the health check timeout.
func Ping() time.Duration { return get(&ping) }

// Short returns the timeout for single-document operations.
func Short() time.Duration { return get(&short) }

// Medium returns the timeout for lists and single-session writes.
func Medium() time.Duration { return get(&medium) }

// Long returns the timeout for multi-collection writes and aggregation.
func Long() time.Duration { return get(&long) }

// Batch returns the timeout for background jobs.
func Batch() time.Duration { return get(&batch) }

// Config holds override values. Zero fields keep the current value.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Batch  time.Duration
}

// Configure applies non-zero values from cfg. Call it once at startup.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	set := func(dst *time.Duration, v time.Duration) {
		if v > 0 {
			*dst = v
		}
	}
	set(&ping, cfg.Ping)
	set(&short, cfg.Short)
	set(&medium, cfg.Medium)
	set(&long, cfg.Long)
	set(&batch, cfg.Batch)
}

// Reset restores the defaults. Intended for tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping, short, medium, long, batch = DefaultPing, DefaultShort, DefaultMedium, DefaultLong, DefaultBatch
}
