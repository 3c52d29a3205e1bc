package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/league-sync/internal/platform/logging"
)

type batchSyncer interface {
	SyncAll(ctx context.Context) (BatchSyncResult, error)
}

// SyncScheduler triggers SyncAll on a fixed interval. Passes never overlap: a slow pass
// delays the next tick instead of running concurrently with it.
type SyncScheduler struct {
	syncer   batchSyncer
	interval time.Duration
	logger   *logging.Logger
}

func NewSyncScheduler(syncer batchSyncer, interval time.Duration, logger *logging.Logger) *SyncScheduler {
	if logger == nil {
		logger = logging.Default()
	}
	return &SyncScheduler{syncer: syncer, interval: interval, logger: logger.Named("scheduler")}
}

func (s *SyncScheduler) Enabled() bool {
	return s != nil && s.interval > 0 && s.syncer != nil
}

// Run blocks until ctx is done. It returns immediately when the interval is not positive.
func (s *SyncScheduler) Run(ctx context.Context) {
	if !s.Enabled() {
		return
	}

	s.logger.InfoContext(ctx, "scheduled sync started", "interval", s.interval.String())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "scheduled sync stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *SyncScheduler) runOnce(ctx context.Context) {
	result, err := s.syncer.SyncAll(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.ErrorContext(ctx, "scheduled sync failed", "error", err)
		return
	}
	s.logger.InfoContext(ctx, "scheduled sync pass done",
		"linkages", result.LinkageCount,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)
}
