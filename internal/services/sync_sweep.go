package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"claims-service/internal/models"
	"claims-service/internal/worker"

	"github.com/google/uuid"
)

// SyncSweeper runs the periodic batch refresh over every filed, syncable
// claim. Claims are fanned out over a worker pool so one carrier's outage
// cannot block sync of claims from other carriers; individual failures are
// retried with backoff and never abort the sweep.
type SyncSweeper struct {
	claims  ClaimStore
	sync    *SyncOrchestrator
	workers int
	retries int
	backoff time.Duration
}

func NewSyncSweeper(claims ClaimStore, sync *SyncOrchestrator, workers, retries int, backoff time.Duration) *SyncSweeper {
	if workers < 1 {
		workers = 1
	}
	return &SyncSweeper{
		claims:  claims,
		sync:    sync,
		workers: workers,
		retries: retries,
		backoff: backoff,
	}
}

// Run performs one full sweep and reports aggregate counts. Cancellation
// mid-sweep stops the workers, writes off the claims that never ran as
// failed, and returns; it never waits on jobs that will not execute.
func (s *SyncSweeper) Run(ctx context.Context) (*models.SweepResult, error) {
	claims, err := s.claims.GetSyncable(ctx)
	if err != nil {
		return nil, err
	}
	if len(claims) == 0 {
		return &models.SweepResult{}, nil
	}

	slog.Info("Starting claim sync sweep", "claims", len(claims), "workers", s.workers)

	poolCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		failed     bool
		conflicted bool
	}
	// Buffered to the claim count so a finishing job never blocks reporting,
	// even after the collector has given up on the sweep.
	outcomes := make(chan outcome, len(claims))

	// All jobs are queued before the pool starts; the job channel is sized to
	// hold them, so submission never races the pool's shutdown close.
	pool := worker.NewWorkingPool(s.workers, len(claims))
	for _, claim := range claims {
		claimID := claim.ID
		pool.SubmitJob(func(jobCtx context.Context) error {
			resp, err := s.syncWithRetry(jobCtx, claimID)
			outcomes <- outcome{
				failed:     err != nil,
				conflicted: err == nil && resp.Conflict != nil,
			}
			return err
		})
	}

	var managerWg sync.WaitGroup
	managerWg.Add(1)
	go pool.Start(poolCtx, &managerWg)

	result := &models.SweepResult{Attempted: len(claims)}
	apply := func(o outcome) {
		switch {
		case o.failed:
			result.Failed++
		case o.conflicted:
			result.Synced++
			result.Conflicts++
		default:
			result.Synced++
		}
	}

	collected := 0
	cancelled := false
	for collected < len(claims) && !cancelled {
		select {
		case o := <-outcomes:
			apply(o)
			collected++
		case <-ctx.Done():
			cancelled = true
		}
	}

	cancel()
	managerWg.Wait()

	// Workers are stopped. Collect jobs that finished during shutdown, then
	// write off the ones that never ran.
	for collected < len(claims) {
		select {
		case o := <-outcomes:
			apply(o)
			collected++
		default:
			result.Failed += len(claims) - collected
			collected = len(claims)
		}
	}

	slog.Info("Claim sync sweep finished",
		"attempted", result.Attempted,
		"synced", result.Synced,
		"conflicts", result.Conflicts,
		"failed", result.Failed,
		"cancelled", cancelled)

	if cancelled {
		return result, ctx.Err()
	}
	return result, nil
}

// syncWithRetry retries carrier-side failures with linear backoff. Caller
// errors (unsupported operation, not filed, invariant violations) are final
// on the first attempt.
func (s *SyncSweeper) syncWithRetry(ctx context.Context, claimID uuid.UUID) (*models.SyncClaimResponse, error) {
	var lastErr error
	attempts := s.retries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := s.sync.Sync(ctx, claimID, "sync-sweep")
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) {
			slog.Warn("Skipping claim in sweep", "claim_id", claimID, "error", err)
			return nil, err
		}

		if attempt < attempts {
			select {
			case <-time.After(time.Duration(attempt) * s.backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	slog.Error("Claim sync failed after retries", "claim_id", claimID, "attempts", attempts, "error", lastErr)
	return nil, lastErr
}

// retryable reports whether a sync failure is worth another attempt inside
// the same sweep. Only carrier-side failures and timeouts qualify.
func retryable(err error) bool {
	var carrierErr *models.CarrierError
	if errors.As(err, &carrierErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
