package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"glucofeed/internal/model"
)

// Refresher periodically re-runs the full feed refresh and tracks run
// statistics. One failing cycle records the error and keeps the loop
// alive; the next tick runs normally.
type Refresher struct {
	Run      func(ctx context.Context) error
	Interval time.Duration // used when run under the Manager

	mu     sync.Mutex
	ticker *time.Ticker
	done   chan struct{}
	status model.AutoRefreshStatus
}

func NewRefresher(run func(ctx context.Context) error) *Refresher {
	return &Refresher{Run: run}
}

// StartAuto begins the refresh loop at the given interval. A second
// call while active is a no-op; exactly one timer exists at a time. The
// first refresh fires immediately so callers do not wait a full
// interval for data.
func (r *Refresher) StartAuto(interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	r.mu.Lock()
	if r.status.Active {
		r.mu.Unlock()
		slog.Warn("refresher: already active, ignoring start", "interval", interval)
		return
	}
	r.status.Active = true
	r.status.Interval = interval
	r.status.NextRun = time.Now().Add(interval)
	r.ticker = time.NewTicker(interval)
	r.done = make(chan struct{})
	ticker, done := r.ticker, r.done
	r.mu.Unlock()

	go func() {
		r.cycle()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				r.cycle()
			}
		}
	}()
	slog.Info("refresher: started", "interval", interval)
}

// StopAuto stops the loop. Idempotent; an in-flight cycle is not
// cancelled, only future cycles are prevented.
func (r *Refresher) StopAuto() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.status.Active {
		return
	}
	r.ticker.Stop()
	close(r.done)
	r.ticker = nil
	r.done = nil
	r.status.Active = false
	r.status.NextRun = time.Time{}
	slog.Info("refresher: stopped")
}

// Status returns a snapshot of the scheduler state.
func (r *Refresher) Status() model.AutoRefreshStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// cycle runs one refresh, records its outcome, and always advances the
// next-run time so a bad cycle cannot kill the loop.
func (r *Refresher) cycle() {
	id := uuid.NewString()
	start := time.Now()
	err := r.Run(context.Background())
	elapsed := time.Since(start)

	r.mu.Lock()
	r.status.LastRun = start
	if r.status.Active {
		r.status.NextRun = time.Now().Add(r.status.Interval)
	}
	if err != nil {
		r.status.LastErr = err.Error()
	} else {
		r.status.LastErr = ""
		r.status.RunCount++
	}
	r.mu.Unlock()

	if err != nil {
		slog.Error("refresher: cycle failed", "cycle", id, "elapsed", elapsed, "error", err)
		return
	}
	slog.Info("refresher: cycle complete", "cycle", id, "elapsed", elapsed)
}

// Start runs the refresher under the worker Manager until ctx is done.
func (r *Refresher) Start(ctx context.Context) error {
	r.StartAuto(r.Interval)
	<-ctx.Done()
	r.StopAuto()
	return nil
}
