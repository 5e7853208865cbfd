package page

import (
	"context"
	"log/slog"
	"time"
)

// StartSweeper runs a background goroutine that periodically drops idle
// pages until ctx is done.
func StartSweeper(ctx context.Context, m *Manager, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Page sweeper started", "interval", interval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				if dropped := m.Sweep(ttl); dropped > 0 {
					slog.Info("Page sweeper dropped idle pages", "count", dropped, "remaining", m.Len())
				}
			case <-ctx.Done():
				slog.Info("Page sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
