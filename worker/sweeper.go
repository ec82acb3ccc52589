package worker

import (
	"context"
	"log/slog"
	"time"

	"feedrank/internal/retention"
)

// Sweeper periodically runs both retention sweeps. It is the in-process
// scheduler slot for reclamation; one run is bounded page-at-a-time
// work, so cancellation between ticks is prompt.
type Sweeper struct {
	Sweeper    *retention.Sweeper
	MaxAge     time.Duration
	MaxReadAge time.Duration
	Interval   time.Duration
}

func (w *Sweeper) Start(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = time.Hour
	}
	t := time.NewTicker(w.Interval)
	defer t.Stop()

	// initial run
	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Sweeper) runOnce(ctx context.Context) {
	if aged, err := w.Sweeper.SweepAged(ctx, w.MaxAge); err != nil {
		slog.Error("aged sweep failed", "deleted", aged, "error", err)
	}
	if read, err := w.Sweeper.SweepRead(ctx, w.MaxReadAge); err != nil {
		slog.Error("read sweep failed", "deleted", read, "error", err)
	}
}
