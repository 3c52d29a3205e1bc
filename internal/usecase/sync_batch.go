package usecase

import (
	"context"
	"sort"
	"time"

	crerr "github.com/cockroachdb/errors"
)

type BatchSyncRun struct {
	ProfileID   string `json:"profile_id"`
	Username    string `json:"username"`
	RunID       string `json:"run_id,omitempty"`
	TotalCount  int    `json:"total_count"`
	SyncedCount int    `json:"synced_count"`
	ErrorCount  int    `json:"error_count"`
	Error       string `json:"error,omitempty"`
}

type BatchSyncResult struct {
	LinkageCount int            `json:"linkage_count"`
	Succeeded    int            `json:"succeeded"`
	Failed       int            `json:"failed"`
	Runs         []BatchSyncRun `json:"runs"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at"`
}

// SyncAll runs Sync for every stored linkage, one account at a time so the per-league pool
// remains the only fan-out against the remote API. A fatal error for one account is recorded
// and the batch continues; only cancellation stops it early.
func (c *SyncCoordinator) SyncAll(ctx context.Context) (BatchSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncCoordinator.SyncAll")
	defer span.End()

	result := BatchSyncResult{StartedAt: c.now(), Runs: []BatchSyncRun{}}

	linkages, err := c.users.List(ctx)
	if err != nil {
		err = persistenceErr(err, "list platform users")
		recordSpanError(span, err)
		return BatchSyncResult{}, err
	}
	sort.SliceStable(linkages, func(i, j int) bool { return linkages[i].ProfileID < linkages[j].ProfileID })
	result.LinkageCount = len(linkages)

	for _, linkage := range linkages {
		if err := ctx.Err(); err != nil {
			result.FinishedAt = c.now()
			return result, crerr.Wrap(err, "sync all interrupted")
		}

		run := BatchSyncRun{ProfileID: linkage.ProfileID, Username: linkage.Username}
		res, err := c.Sync(ctx, linkage.ProfileID, linkage.Username)
		if err != nil {
			run.Error = err.Error()
			result.Failed++
			result.Runs = append(result.Runs, run)
			continue
		}

		run.RunID = res.RunID
		run.TotalCount = res.TotalCount
		run.SyncedCount = res.SyncedCount
		run.ErrorCount = len(res.Errors)
		result.Succeeded++
		result.Runs = append(result.Runs, run)
	}

	result.FinishedAt = c.now()
	c.logger.InfoContext(ctx, "sync all finished",
		"linkages", result.LinkageCount,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)
	return result, nil
}
