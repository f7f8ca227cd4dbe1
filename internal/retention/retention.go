package retention

import (
	"context"
	"time"

	"codeberg.org/studyhall/server/internal/logger"
)

const (
	DefaultInterval = time.Hour
	pruneTimeout    = 30 * time.Second
)

// deletes usage records older than a retention window
type Pruner interface {
	Prune(ctx context.Context, retentionDays int) (int64, error)
}

// handles periodic removal of expired usage records
type CleanupService struct {
	pruner        Pruner
	interval      time.Duration
	retentionDays int
	onPruned      func(n int64)
}

// onPruned is optional and receives the number of removed records after each pass
func NewCleanupService(pruner Pruner, interval time.Duration, retentionDays int, onPruned func(n int64)) *CleanupService {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &CleanupService{
		pruner:        pruner,
		interval:      interval,
		retentionDays: retentionDays,
		onPruned:      onPruned,
	}
}

// runs one pass immediately, then one per interval until ctx is cancelled
func (s *CleanupService) Start(ctx context.Context) {
	if s.retentionDays <= 0 {
		logger.Info("usage retention disabled")
		return
	}

	logger.Info("starting usage retention service",
		"check_interval", s.interval,
		"retention_days", s.retentionDays,
	)

	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("usage retention service stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce prunes expired records and reports how many were removed
func (s *CleanupService) RunOnce(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, pruneTimeout)
	defer cancel()

	removed, err := s.pruner.Prune(ctx, s.retentionDays)
	if err != nil {
		logger.ErrorErr(err, "failed to prune usage records", "retention_days", s.retentionDays)
		return 0
	}

	if removed > 0 {
		logger.Info("pruned expired usage records", "count", removed)
	}

	if s.onPruned != nil {
		s.onPruned(removed)
	}

	return removed
}
