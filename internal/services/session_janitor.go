package services

import (
	"context"
	"log/slog"
	"time"
)

type ExpiredPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// SessionJanitor periodically removes expired sessions and reset tokens.
// Expired rows are already invalid; this only reclaims storage.
type SessionJanitor struct {
	purger   ExpiredPurger
	interval time.Duration
}

func NewSessionJanitor(purger ExpiredPurger, interval time.Duration) *SessionJanitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SessionJanitor{purger: purger, interval: interval}
}

// Start runs one sweep immediately and then one per interval until ctx is
// cancelled. The returned channel closes once the loop has exited.
func (janitor *SessionJanitor) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	ticker := time.NewTicker(janitor.interval)
	go func() {
		defer close(done)
		defer ticker.Stop()

		janitor.run(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				janitor.run(ctx)
			}
		}
	}()
	return done
}

func (janitor *SessionJanitor) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	removed, err := janitor.purger.PurgeExpired(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "session janitor: purge failed", "error", err)
		return
	}
	if removed > 0 {
		slog.InfoContext(ctx, "session janitor: purged expired rows", "removed", removed)
	}
}
