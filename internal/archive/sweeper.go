package archive

import (
	"context"
	"log/slog"
	"time"
)

// StartSweeper launches a background goroutine that prunes each category's
// archive down to keep files, once at startup and then every interval. The
// goroutine exits when ctx is cancelled.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration, keep int) {
	logger := slog.With("component", "sweeper")

	if interval <= 0 || keep <= 0 {
		logger.Info("archive sweeper disabled", "interval", interval, "keep", keep)
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.sweepOnce(logger, keep)

		for {
			select {
			case <-ctx.Done():
				logger.Info("archive sweeper stopped")
				return
			case <-ticker.C:
				s.sweepOnce(logger, keep)
			}
		}
	}()

	logger.Info("archive sweeper started", "interval", interval, "keep", keep)
}

func (s *Store) sweepOnce(logger *slog.Logger, keep int) {
	removed, err := s.Sweep(keep)
	if err != nil {
		logger.Error("archive sweep failed", "error", err)
		return
	}
	if removed > 0 {
		logger.Info("archive sweep complete", "removed", removed, "keep", keep)
	}
}
