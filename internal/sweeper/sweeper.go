// Package sweeper periodically purges expired trash entries and repairs
// half-applied lifecycle transitions.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/kazz187/teamboard/internal/lifecycle"
	"github.com/kazz187/teamboard/internal/trash"
	"github.com/kazz187/teamboard/pkg/clog"
)

type Result struct {
	Purged     []*trash.Entry         `json:"purged"`
	Reconciled []lifecycle.Resolution `json:"reconciled"`
}

type Sweeper struct {
	coord    *lifecycle.Coordinator
	interval time.Duration
}

// New creates a sweeper. A non-positive interval disables the periodic loop;
// RunOnce still works.
func New(coord *lifecycle.Coordinator, interval time.Duration) *Sweeper {
	return &Sweeper{coord: coord, interval: interval}
}

// RunOnce purges expired entries, then reconciles duplicates. Reconciliation
// still runs when the purge partially failed.
func (s *Sweeper) RunOnce(ctx context.Context) (*Result, error) {
	res := &Result{
		Purged:     []*trash.Entry{},
		Reconciled: []lifecycle.Resolution{},
	}
	purged, purgeErr := s.coord.PurgeExpired(ctx)
	res.Purged = append(res.Purged, purged...)

	resolved, err := s.coord.Reconcile(ctx)
	res.Reconciled = append(res.Reconciled, resolved...)
	if purgeErr != nil {
		return res, purgeErr
	}
	return res, err
}

// Start sweeps immediately and then on every tick until ctx is done.
func (s *Sweeper) Start(ctx context.Context) error {
	ctx = clog.ContextWithAttributes(ctx, map[string]any{"job": "sweep"})
	if s.interval <= 0 {
		slog.InfoContext(ctx, "trash sweeper disabled")
		return nil
	}

	slog.InfoContext(ctx, "trash sweeper started", "interval", s.interval.String())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		s.sweep(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	res, err := s.RunOnce(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "trash sweep failed", "error", err,
			"purged", len(res.Purged), "reconciled", len(res.Reconciled))
		return
	}
	if len(res.Purged) > 0 || len(res.Reconciled) > 0 {
		slog.InfoContext(ctx, "trash swept", "purged", len(res.Purged), "reconciled", len(res.Reconciled))
	}
}
