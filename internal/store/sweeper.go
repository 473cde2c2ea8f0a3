package store

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper deletes expired snapshots in the background.
type Sweeper struct {
	store    Store
	interval time.Duration
}

// NewSweeper creates a sweeper for s. A non-positive interval defaults to
// five minutes.
func NewSweeper(s Store, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{store: s, interval: interval}
}

// Run starts the sweep loop. It blocks until ctx is cancelled.
func (w *Sweeper) Run(ctx context.Context) {
	log := zap.L().With(zap.String("component", "store.sweeper"))
	log.Info("starting snapshot sweeper", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("snapshot sweeper stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs a single pass and returns the number of snapshots removed.
func (w *Sweeper) Sweep(ctx context.Context) int {
	n, err := w.store.DeleteExpired(ctx)
	if err != nil {
		zap.L().Error("store: sweep expired snapshots", zap.Error(err))
		return 0
	}
	if n > 0 {
		zap.L().Info("store: swept expired snapshots", zap.Int("deleted", n))
	}
	return n
}
