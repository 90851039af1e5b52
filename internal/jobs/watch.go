package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/jobs/domain"
)

// ActiveLister is the single indexed query the tracker polls.
type ActiveLister interface {
	ListByUser(ctx context.Context, userID string, statuses []domain.Status, limit int) ([]domain.Job, error)
}

// Snapshot is one observation of a user's non-terminal jobs.
type Snapshot struct {
	Jobs       []domain.Job `json:"jobs"`
	ObservedAt time.Time    `json:"observed_at"`
}

// WatcherConfig holds active-job watcher configuration
type WatcherConfig struct {
	Lister ActiveLister
	Logger *slog.Logger
	// ActiveInterval is used while the user holds at least one
	// non-terminal job; IdleInterval is the heartbeat otherwise.
	ActiveInterval time.Duration
	IdleInterval   time.Duration
}

// Watcher turns the owner+status query into a subscription: it polls at an
// adaptive frequency and delivers a snapshot whenever the set of active
// jobs changes.
type Watcher struct {
	lister         ActiveLister
	logger         *slog.Logger
	activeInterval time.Duration
	idleInterval   time.Duration
}

// NewWatcher creates a watcher with the adaptive polling policy as
// explicit configuration.
func NewWatcher(cfg *WatcherConfig) *Watcher {
	activeInterval := cfg.ActiveInterval
	if activeInterval <= 0 {
		activeInterval = 3 * time.Second
	}

	idleInterval := cfg.IdleInterval
	if idleInterval <= 0 {
		idleInterval = 60 * time.Second
	}

	return &Watcher{
		lister:         cfg.Lister,
		logger:         cfg.Logger,
		activeInterval: activeInterval,
		idleInterval:   idleInterval,
	}
}

// Watch emits snapshots of the user's non-terminal jobs until ctx is
// canceled. The first snapshot is delivered immediately; afterwards one is
// delivered on every observed change, plus an idle heartbeat so clients
// can confirm liveness without tight polling.
func (w *Watcher) Watch(ctx context.Context, userID string) <-chan Snapshot {
	out := make(chan Snapshot, 1)

	go func() {
		defer close(out)

		var lastKey string
		first := true

		for {
			jobs, err := w.lister.ListByUser(ctx, userID, domain.ActiveStatuses, 0)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				w.logger.Error("Active job poll failed",
					slog.String("user_id", userID),
					slog.String("error", err.Error()),
				)
			} else {
				key := snapshotKey(jobs)
				idle := len(jobs) == 0

				if first || key != lastKey || idle {
					snapshot := Snapshot{Jobs: jobs, ObservedAt: time.Now().UTC()}
					select {
					case out <- snapshot:
					case <-ctx.Done():
						return
					}
					lastKey = key
					first = false
				}
			}

			interval := w.idleInterval
			if len(jobs) > 0 {
				interval = w.activeInterval
			}

			select {
			case <-time.After(interval):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// snapshotKey folds the ids and statuses of active jobs into a comparable
// change marker.
func snapshotKey(jobs []domain.Job) string {
	key := ""
	for _, job := range jobs {
		key += job.ID + ":" + string(job.Status) + ";"
	}
	return key
}
