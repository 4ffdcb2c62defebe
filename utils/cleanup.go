package utils

import (
	"context"
	"time"
)

// SweepFunc removes expired files and reports how many were handled.
type SweepFunc func(ctx context.Context) (int, error)

// StartFileCleaner runs sweep every interval until ctx is cancelled. It is best-effort and logs failures.
func StartFileCleaner(ctx context.Context, interval time.Duration, sweep SweepFunc) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := sweep(ctx)
				if err != nil {
					Sugar.Warnf("file cleaner sweep failed: %v", err)
					continue
				}
				if n > 0 {
					Sugar.Infof("file cleaner removed %d released uploads", n)
				}
			}
		}
	}()
}
