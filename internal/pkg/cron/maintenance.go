package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// TokenPurger clears verification tokens that expired before now.
type TokenPurger interface {
	PurgeExpiredVerificationTokens(ctx context.Context, now time.Time) (int64, error)
}

// LimiterPruner drops per-client limiters idle for longer than idle.
type LimiterPruner interface {
	Prune(idle time.Duration) int
	Len() int
}

type MaintenanceJobs struct {
	tokens      TokenPurger
	limiters    []LimiterPruner
	limiterIdle time.Duration
	now         func() time.Time
}

func NewMaintenanceJobs(tokens TokenPurger, limiterIdle time.Duration, limiters ...LimiterPruner) *MaintenanceJobs {
	return &MaintenanceJobs{
		tokens:      tokens,
		limiters:    limiters,
		limiterIdle: limiterIdle,
		now:         time.Now,
	}
}

func (j *MaintenanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("purge_expired_verification_tokens", time.Hour, j.PurgeVerificationTokens)
	scheduler.AddJob("prune_rate_limiters", 10*time.Minute, j.PruneRateLimiters)
}

func (j *MaintenanceJobs) PurgeVerificationTokens(ctx context.Context) error {
	purged, err := j.tokens.PurgeExpiredVerificationTokens(ctx, j.now())
	if err != nil {
		return fmt.Errorf("purge verification tokens: %w", err)
	}
	if purged > 0 {
		slog.Info("cron: purged expired verification tokens", "count", purged)
	}
	return nil
}

func (j *MaintenanceJobs) PruneRateLimiters(ctx context.Context) error {
	removed, tracked := j.pruneLimiters()
	if removed > 0 {
		slog.Debug("cron: pruned idle rate limiters", "count", removed, "tracked", tracked)
	}
	return nil
}

// pruneLimiters returns how many clients were dropped and how many remain.
func (j *MaintenanceJobs) pruneLimiters() (removed, tracked int) {
	for _, l := range j.limiters {
		removed += l.Prune(j.limiterIdle)
		tracked += l.Len()
	}
	return removed, tracked
}
