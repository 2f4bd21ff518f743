// Package clock holds the waiting helpers used between retries of remote calls.
package clock

import (
	"context"
	"time"
)

// Sleep blocks for d or until ctx is done. A non-positive d only reports ctx's state.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
