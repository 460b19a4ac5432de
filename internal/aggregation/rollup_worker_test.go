package aggregation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRollups struct {
	mu    sync.Mutex
	calls [][2]time.Time
	err   error
}

func (f *fakeRollups) RollupTrafficDaily(ctx context.Context, start, end time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, [2]time.Time{start, end})
	return 3, f.err
}

func (f *fakeRollups) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestWindow(t *testing.T) {
	w := NewWorker(Config{Store: &fakeRollups{}, LookbackDays: 2})
	w.now = func() time.Time { return time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC) }

	start, end := w.Window()
	assert.Equal(t, time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC), end)
}

func TestRunOnceWrapsErrors(t *testing.T) {
	w := NewWorker(Config{Store: &fakeRollups{err: errors.New("deadlock detected")}})
	err := w.RunOnce(context.Background())
	assert.ErrorContains(t, err, "daily traffic rollup")
}

func TestStartRunsImmediatelyAndStops(t *testing.T) {
	store := &fakeRollups{}
	w := NewWorker(Config{Store: store, Interval: 5 * time.Millisecond})

	go func() { _ = w.Start(context.Background()) }()
	require.Eventually(t, func() bool { return store.count() >= 2 }, 2*time.Second, 5*time.Millisecond)
	w.Stop()
}
