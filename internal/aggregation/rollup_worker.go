// Package aggregation periodically folds raw traffic events into the daily
// per-source rollups the analytics views read.
package aggregation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RollupStore recomputes daily rollups for events in [start, end).
type RollupStore interface {
	RollupTrafficDaily(ctx context.Context, start, end time.Time) (int64, error)
}

// Worker runs the traffic rollup on an interval.
type Worker struct {
	store    RollupStore
	logger   *zap.Logger
	interval time.Duration
	lookback int
	now      func() time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// Config holds worker configuration.
type Config struct {
	Store    RollupStore
	Logger   *zap.Logger
	Interval time.Duration
	// LookbackDays is how many completed days before today are recomputed on
	// every run, to absorb late events. Defaults to 1.
	LookbackDays int
}

// NewWorker creates a new rollup worker.
func NewWorker(cfg Config) *Worker {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 1
	}
	return &Worker{
		store:    cfg.Store,
		logger:   cfg.Logger,
		interval: cfg.Interval,
		lookback: cfg.LookbackDays,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs a rollup immediately and then on every tick until ctx is
// cancelled or Stop is called.
func (w *Worker) Start(ctx context.Context) error {
	defer close(w.doneCh)
	w.logger.Info("starting rollup worker", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	if err := w.RunOnce(ctx); err != nil {
		w.logger.Error("initial rollup failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("rollup worker stopping due to context cancellation")
			return nil
		case <-w.stopCh:
			w.logger.Info("rollup worker stopping")
			return nil
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil {
				w.logger.Error("rollup failed", zap.Error(err))
			}
		}
	}
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.doneCh
}

// Window is the range a run recomputes: from the start of the day
// LookbackDays ago up to the end of today, in UTC.
func (w *Worker) Window() (time.Time, time.Time) {
	now := w.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -w.lookback), today.AddDate(0, 0, 1)
}

// RunOnce recomputes the rollups for the current window.
func (w *Worker) RunOnce(ctx context.Context) error {
	start, end := w.Window()
	rows, err := w.store.RollupTrafficDaily(ctx, start, end)
	if err != nil {
		return fmt.Errorf("daily traffic rollup: %w", err)
	}
	w.logger.Info("traffic rollup completed",
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Int64("rows", rows),
	)
	return nil
}
