package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"claims-service/internal/carrier"
	"claims-service/internal/event"
	"claims-service/internal/models"

	"github.com/google/uuid"
)

// SyncOrchestrator refreshes a local claim from its carrier. Carriers are
// authoritative for money once a claim is filed, but their status feeds can
// be stale, so status only ever moves forward: a snapshot reporting earlier
// pipeline progress is recorded as a conflict note, never applied. Terminal
// claims and post-payment denials are conflicts too; see
// CanApplyCarrierStatus.
type SyncOrchestrator struct {
	claims    ClaimStore
	registry  *carrier.Registry
	locks     *ClaimLocker
	cache     ClaimCache
	publisher *event.ClaimEventPublisher
	timeout   time.Duration
}

func NewSyncOrchestrator(
	claims ClaimStore,
	registry *carrier.Registry,
	locks *ClaimLocker,
	cache ClaimCache,
	publisher *event.ClaimEventPublisher,
	timeout time.Duration,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		claims:    claims,
		registry:  registry,
		locks:     locks,
		cache:     cache,
		publisher: publisher,
		timeout:   timeout,
	}
}

// Sync pulls the carrier's view of the claim and applies forward-compatible
// updates. carrier_last_sync is recorded on every attempt, success or not,
// so staleness stays observable.
func (o *SyncOrchestrator) Sync(ctx context.Context, claimID uuid.UUID, actor string) (*models.SyncClaimResponse, error) {
	o.locks.Lock(claimID)
	defer o.locks.Unlock(claimID)

	claim, err := o.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if !claim.FiledWithCarrier || claim.CarrierClaimID == nil {
		return nil, fmt.Errorf("%w: claim %s", models.ErrClaimNotFiled, claimID)
	}

	adapter, err := o.registry.SyncAdapter(claim.Carrier)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	now := time.Now()
	snapshot, err := adapter.FetchStatus(callCtx, *claim.CarrierClaimID)
	if err != nil {
		// The attempt still counts: record it so staleness is visible, then
		// surface the carrier error as retryable.
		if touchErr := o.claims.TouchLastSync(ctx, claimID, now); touchErr != nil {
			slog.Error("Failed to record sync attempt", "claim_id", claimID, "error", touchErr)
		}
		o.invalidate(ctx, claimID)
		return nil, err
	}

	working := claim.Clone()
	working.CarrierLastSync = &now
	applySnapshotMoney(working, snapshot)

	var events []models.StatusEvent
	var conflict *models.SyncConflict

	mapped, known := carrier.MapStatus(snapshot.Status)
	switch {
	case !known:
		note := fmt.Sprintf("carrier reported unrecognized status %q; status kept at %s", snapshot.Status, working.Status)
		events = append(events, noteEvent(working.ID, working.Status, note, actor))
		slog.Warn("Unmapped carrier status during sync",
			"claim_id", claimID, "carrier", working.Carrier, "raw_status", snapshot.Status)

	case mapped == working.Status:
		// Same-state refresh: money and adjuster info only.

	case CanApplyCarrierStatus(working.Status, mapped):
		ev, err := syncTransition(working, mapped, actor, snapshot.Status)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)

	default:
		conflict = &models.SyncConflict{
			LocalStatus:   working.Status,
			CarrierStatus: mapped,
			RawStatus:     snapshot.Status,
		}
		note := conflict.Note()
		events = append(events, noteEvent(working.ID, working.Status, note, actor))
	}

	if err := Reconcile(working); err != nil {
		// Carrier money that breaks invariants is not applied; the attempt
		// timestamp still lands.
		if touchErr := o.claims.TouchLastSync(ctx, claimID, now); touchErr != nil {
			slog.Error("Failed to record sync attempt", "claim_id", claimID, "error", touchErr)
		}
		o.invalidate(ctx, claimID)
		return nil, err
	}

	if err := o.claims.UpdateWithHistory(ctx, working, events...); err != nil {
		return nil, err
	}
	o.invalidate(ctx, claimID)

	slog.Info("Claim synced from carrier",
		"claim_id", working.ID,
		"carrier", working.Carrier,
		"carrier_status", snapshot.Status,
		"local_status", working.Status,
		"conflict", conflict != nil)

	eventType := event.ClaimEventSynced
	if conflict != nil {
		eventType = event.ClaimEventSyncConflict
	}
	o.publisher.Publish(ctx, event.ClaimEvent{
		Type:       eventType,
		ClaimID:    working.ID,
		CustomerID: working.CustomerID,
		Carrier:    working.Carrier,
		Status:     working.Status,
		PrevStatus: claim.Status,
		Actor:      actor,
	})

	resp := &models.SyncClaimResponse{Claim: working, Conflict: conflict}
	if conflict != nil {
		resp.Warning = conflict.Note()
	}
	return resp, nil
}

// syncTransition applies a carrier-reported forward move. Unlike user
// transitions it is rank-gated rather than edge-gated: carriers often skip
// the granular adjustment states between two polls.
func syncTransition(claim *models.Claim, target models.ClaimStatus, actor, rawStatus string) (*models.StatusEvent, error) {
	if target == models.ClaimSupplement {
		claim.SupplementCount++
	}
	claim.Status = target
	note := fmt.Sprintf("carrier reported status %q", rawStatus)
	ev := models.StatusEvent{
		ID:        uuid.New(),
		ClaimID:   claim.ID,
		Status:    target,
		Note:      &note,
		Actor:     actor,
		CreatedAt: time.Now(),
	}
	return &ev, nil
}

// applySnapshotMoney overwrites local money with the carrier's figures.
// Fields the carrier did not report keep their local values.
func applySnapshotMoney(claim *models.Claim, snapshot *carrier.StatusSnapshot) {
	if snapshot.ApprovedValue != nil {
		claim.ApprovedValue = snapshot.ApprovedValue
	}
	if snapshot.ACV != nil {
		claim.ACV = snapshot.ACV
	}
	if snapshot.PaidToDate != nil {
		claim.TotalPaid = *snapshot.PaidToDate
	}
	if snapshot.AdjusterName != nil {
		claim.AdjusterName = snapshot.AdjusterName
	}
	if snapshot.AdjusterPhone != nil {
		claim.AdjusterPhone = snapshot.AdjusterPhone
	}
	if snapshot.AdjusterEmail != nil {
		claim.AdjusterEmail = snapshot.AdjusterEmail
	}
}

func noteEvent(claimID uuid.UUID, status models.ClaimStatus, note, actor string) models.StatusEvent {
	return models.StatusEvent{
		ID:        uuid.New(),
		ClaimID:   claimID,
		Status:    status,
		Note:      &note,
		Actor:     actor,
		CreatedAt: time.Now(),
	}
}

func (o *SyncOrchestrator) invalidate(ctx context.Context, claimID uuid.UUID) {
	if o.cache == nil {
		return
	}
	if err := o.cache.InvalidateClaim(ctx, claimID); err != nil {
		slog.Warn("Failed to invalidate claim cache", "claim_id", claimID, "error", err)
	}
}
