package main

import (
	"context"
	"time"
)

// keepAlive calls ping every interval until ctx is done. Pings are independent
// of frames, whose dwell may exceed the watchdog timeout.
func keepAlive(ctx context.Context, interval time.Duration, ping func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ping()
		}
	}
}
