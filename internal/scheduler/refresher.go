// Package scheduler runs the periodic bargain refresh.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/strazyuk/ProjectSpara/internal/bargains"
)

type UserSource interface {
	UsersWithActiveSubscriptions(ctx context.Context) ([]uuid.UUID, error)
}

type Hunter interface {
	Hunt(ctx context.Context, userID uuid.UUID, opts bargains.HuntOptions) (*bargains.HuntResult, error)
}

// Refresher recomputes bargain caches older than maxAge for every user with
// an active subscription. Users are processed one at a time.
type Refresher struct {
	users  UserSource
	hunter Hunter
	maxAge time.Duration
	cron   *cron.Cron
	logger *slog.Logger
}

func NewRefresher(users UserSource, hunter Hunter, maxAge time.Duration, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		users:  users,
		hunter: hunter,
		maxAge: maxAge,
		logger: logger.With("component", "bargain_refresher"),
	}
}

// RefreshStats counts the outcome of one refresh pass.
type RefreshStats struct {
	Users     int
	Refreshed int
	Failed    int
}

// RunOnce walks every user once. A failure for one user does not stop the pass.
func (r *Refresher) RunOnce(ctx context.Context) (RefreshStats, error) {
	var stats RefreshStats

	users, err := r.users.UsersWithActiveSubscriptions(ctx)
	if err != nil {
		return stats, fmt.Errorf("refresh bargains: %w", err)
	}
	stats.Users = len(users)

	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		res, err := r.hunter.Hunt(ctx, userID, bargains.HuntOptions{MaxAge: r.maxAge})
		if err != nil {
			stats.Failed++
			r.logger.Error("bargain refresh failed", "user_id", userID.String(), "error", err)
			continue
		}
		if res.Source == bargains.SourceFresh {
			stats.Refreshed++
		}
	}

	r.logger.Info("bargain refresh complete", "users", stats.Users, "refreshed", stats.Refreshed, "failed", stats.Failed)
	return stats, nil
}

// Start schedules RunOnce on a standard five-field cron expression. Runs never
// overlap; a run still in progress causes the next tick to be skipped.
func (r *Refresher) Start(ctx context.Context, schedule string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, func() {
		if _, err := r.RunOnce(ctx); err != nil {
			r.logger.Error("scheduled bargain refresh failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	r.cron = c
	c.Start()
	r.logger.Info("bargain refresher scheduled", "schedule", schedule, "max_age", r.maxAge.String())
	return nil
}

// Stop halts scheduling and waits for a running pass to finish.
func (r *Refresher) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}
