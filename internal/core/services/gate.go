package services

import (
	"context"
	"fmt"
	"time"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
	"github.com/devops-actions/load-available-actions/internal/core/ports/driven"
	"github.com/devops-actions/load-available-actions/internal/logger"
)

// Gate tuning.
const (
	// LowWaterMark is the remaining count at or below which the gate waits.
	LowWaterMark = 2

	// MinResetWait is used when the reset time has already passed.
	MinResetWait = 7 * time.Second

	// ResetPadding is added to a future reset time.
	ResetPadding = time.Second
)

// RateLimitGate suspends the caller while a quota counter is nearly spent.
type RateLimitGate struct {
	api        driven.RateLimitAPI
	enterprise bool
	opts       options
}

// NewRateLimitGate creates a gate. On an enterprise host a missing
// rate limit endpoint disables the check instead of failing.
func NewRateLimitGate(api driven.RateLimitAPI, enterprise bool, opts ...Option) *RateLimitGate {
	return &RateLimitGate{
		api:        api,
		enterprise: enterprise,
		opts:       newOptions(opts),
	}
}

// CheckAndWait fetches a fresh snapshot for class and waits for the reset
// when the remaining count is at or below LowWaterMark.
func (g *RateLimitGate) CheckAndWait(ctx context.Context, class domain.ResourceClass) error {
	_, err := g.checkAndWait(ctx, class)
	return err
}

// checkAndWait returns how long it suspended.
func (g *RateLimitGate) checkAndWait(ctx context.Context, class domain.ResourceClass) (time.Duration, error) {
	snapshot, err := g.api.RateLimit(ctx, class)
	if err != nil {
		if g.enterprise && domain.KindOf(err) == domain.ErrorKindNotFound {
			logger.Debug("Rate limiting is not enabled on this host, skipping %s check", class)
			return 0, nil
		}
		return 0, fmt.Errorf("check %s rate limit: %w", class, err)
	}

	wait := WaitDuration(*snapshot, g.opts.now())
	if wait == 0 {
		logger.Debug("%s rate limit: %d remaining", class, snapshot.Remaining)
		return 0, nil
	}

	logger.Info("Waiting %s for the %s rate limit to reset (%d remaining)", wait, class, snapshot.Remaining)
	g.opts.recorder.RateLimitWait(class, wait)
	if err := g.opts.sleep(ctx, wait); err != nil {
		return 0, err
	}
	return wait, nil
}

// WaitDuration returns how long to wait before using the quota again, zero
// when enough calls remain.
func WaitDuration(snapshot domain.RateLimitSnapshot, now time.Time) time.Duration {
	if snapshot.Remaining > LowWaterMark {
		return 0
	}
	wait := snapshot.ResetAt.Sub(now)
	if wait <= 0 {
		return MinResetWait
	}
	return wait + ResetPadding
}
