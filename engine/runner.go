package engine

import (
	"context"
	"time"

	"github.com/tnqbao/gau-observability/infra"
)

// runPeriodic drives one component's repeating loop. The timer is re-armed
// only after run returns, so a slow run can never overlap the next tick.
// Cancelling ctx clears the pending timer; an in-flight run finishes.
func runPeriodic(ctx context.Context, logger *infra.LoggerClient, name string, interval time.Duration, run func(context.Context)) {
	go func() {
		timer := time.NewTimer(interval)
		defer timer.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.InfoWithContextf(ctx, "[%s] Shutting down...", name)
				return
			case <-timer.C:
				run(ctx)
				timer.Reset(interval)
			}
		}
	}()
}
