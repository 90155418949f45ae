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

const photoURLExpiry = 72 * time.Hour

// FilingOrchestrator drives "submit this claim to its carrier". The adapter
// call is the only suspension point; nothing is persisted until the carrier
// has confirmed, so a failed or cancelled filing leaves the claim exactly as
// it was.
type FilingOrchestrator struct {
	claims    ClaimStore
	customers CustomerStore
	photos    PhotoResolver
	registry  *carrier.Registry
	locks     *ClaimLocker
	cache     ClaimCache
	publisher *event.ClaimEventPublisher
	timeout   time.Duration
}

func NewFilingOrchestrator(
	claims ClaimStore,
	customers CustomerStore,
	photos PhotoResolver,
	registry *carrier.Registry,
	locks *ClaimLocker,
	cache ClaimCache,
	publisher *event.ClaimEventPublisher,
	timeout time.Duration,
) *FilingOrchestrator {
	return &FilingOrchestrator{
		claims:    claims,
		customers: customers,
		photos:    photos,
		registry:  registry,
		locks:     locks,
		cache:     cache,
		publisher: publisher,
		timeout:   timeout,
	}
}

// File validates the request, submits it through the carrier adapter, and on
// success atomically records the carrier ids, the filed flag, and the status
// transition. Filing an already-filed claim is permitted as an audited
// re-filing path (carrier-side rejections sometimes require it); the response
// carries a warning and every attempt lands in history.
func (o *FilingOrchestrator) File(ctx context.Context, claimID uuid.UUID, req models.FileClaimRequest, actor string) (*models.FileClaimResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	o.locks.Lock(claimID)
	defer o.locks.Unlock(claimID)

	claim, err := o.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim.Status.IsTerminal() {
		return nil, &models.InvalidTransitionError{From: claim.Status, To: models.ClaimFiled}
	}

	adapter, err := o.registry.FilingAdapter(claim.Carrier)
	if err != nil {
		return nil, err
	}

	customer, err := o.customers.GetByID(ctx, claim.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve customer: %w", err)
	}

	photoURLs, err := o.resolvePhotos(ctx, req.PhotoIDs)
	if err != nil {
		return nil, err
	}

	refiled := claim.FiledWithCarrier
	if refiled {
		slog.Warn("Re-filing claim that is already filed with carrier",
			"claim_id", claim.ID, "carrier", claim.Carrier, "actor", actor)
	}

	filing := carrier.FilingRequest{
		PolicyNumber:        req.PolicyNumber,
		CauseOfLoss:         req.CauseOfLoss,
		LossDescription:     req.LossDescription,
		DateOfLoss:          claim.DateOfLoss,
		ClaimType:           claim.ClaimType,
		DamageAreas:         req.DamageAreas,
		EmergencyRepair:     req.EmergencyRepair,
		EmergencyRepairCost: req.EmergencyRepairCost,
		PhotoURLs:           photoURLs,
		InsuredName:         customer.Name,
		PropertyAddress:     customer.Address,
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	result, err := adapter.FileClaim(callCtx, filing)
	if err != nil {
		// Claim untouched; the carrier error carries code/message for retry.
		return nil, err
	}

	working := claim.Clone()
	working.CarrierClaimID = &result.CarrierClaimID
	working.ClaimNumber = &result.ClaimNumber
	working.FiledWithCarrier = true
	if result.AdjusterName != nil {
		working.AdjusterName = result.AdjusterName
	}
	if result.AdjusterPhone != nil {
		working.AdjusterPhone = result.AdjusterPhone
	}
	if result.AdjusterEmail != nil {
		working.AdjusterEmail = result.AdjusterEmail
	}

	note := filingNote(result, refiled)
	var events []models.StatusEvent
	if working.Status == models.ClaimPending {
		ev, err := Transition(working, models.ClaimFiled, actor, &note)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	} else {
		// Re-filing on a claim already past pending: record the attempt
		// without moving the pipeline.
		if err := Reconcile(working); err != nil {
			return nil, err
		}
		events = append(events, models.StatusEvent{
			ID:        uuid.New(),
			ClaimID:   working.ID,
			Status:    working.Status,
			Note:      &note,
			Actor:     actor,
			CreatedAt: time.Now(),
		})
	}

	if err := o.claims.UpdateWithHistory(ctx, working, events...); err != nil {
		return nil, err
	}
	o.invalidate(ctx, claimID)

	slog.Info("Claim filed with carrier",
		"claim_id", working.ID,
		"carrier", working.Carrier,
		"carrier_claim_id", result.CarrierClaimID,
		"claim_number", result.ClaimNumber,
		"refiled", refiled)

	o.publisher.Publish(ctx, event.ClaimEvent{
		Type:       event.ClaimEventFiled,
		ClaimID:    working.ID,
		CustomerID: working.CustomerID,
		Carrier:    working.Carrier,
		Status:     working.Status,
		Note:       note,
		Actor:      actor,
	})

	resp := &models.FileClaimResponse{
		Claim:          working,
		CarrierClaimID: result.CarrierClaimID,
		ClaimNumber:    result.ClaimNumber,
		Refiled:        refiled,
	}
	if refiled {
		resp.Warning = "claim was already filed with the carrier; this attempt was submitted and recorded"
	}
	return resp, nil
}

func (o *FilingOrchestrator) resolvePhotos(ctx context.Context, photoIDs []uuid.UUID) ([]string, error) {
	if len(photoIDs) == 0 || o.photos == nil {
		return nil, nil
	}
	urls := make([]string, 0, len(photoIDs))
	for _, id := range photoIDs {
		url, err := o.photos.PresignedPhotoURL(ctx, id.String(), photoURLExpiry)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", models.ErrPhotoNotFound, id)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func filingNote(result *carrier.FilingResult, refiled bool) string {
	note := fmt.Sprintf("filed with carrier, claim number %s", result.ClaimNumber)
	if refiled {
		note = fmt.Sprintf("re-filed with carrier, claim number %s", result.ClaimNumber)
	}
	if result.EstimatedResponseDays > 0 {
		note += fmt.Sprintf(", response expected within %d days", result.EstimatedResponseDays)
	}
	if result.AdjusterName != nil {
		note += fmt.Sprintf(", adjuster %s assigned", *result.AdjusterName)
	}
	if result.Message != "" {
		note += ": " + result.Message
	}
	return note
}

func (o *FilingOrchestrator) invalidate(ctx context.Context, claimID uuid.UUID) {
	if o.cache == nil {
		return
	}
	if err := o.cache.InvalidateClaim(ctx, claimID); err != nil {
		slog.Warn("Failed to invalidate claim cache", "claim_id", claimID, "error", err)
	}
}
