package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"claims-service/internal/event"
	"claims-service/internal/models"

	"github.com/google/uuid"
)

// ClaimService owns the non-carrier claim operations: create, read, field
// updates, user-driven transitions, and deletion. Carrier-facing flows live
// in the filing and sync orchestrators, which share the same locker so all
// writes to one claim are serialized.
type ClaimService struct {
	claims    ClaimStore
	customers CustomerStore
	cache     ClaimCache
	locks     *ClaimLocker
	publisher *event.ClaimEventPublisher
}

func NewClaimService(
	claims ClaimStore,
	customers CustomerStore,
	cache ClaimCache,
	locks *ClaimLocker,
	publisher *event.ClaimEventPublisher,
) *ClaimService {
	return &ClaimService{
		claims:    claims,
		customers: customers,
		cache:     cache,
		locks:     locks,
		publisher: publisher,
	}
}

// CreateClaim starts a new claim in pending status for a customer. No carrier
// contact happens here.
func (s *ClaimService) CreateClaim(ctx context.Context, req models.CreateClaimRequest, actor string) (*models.Claim, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.customers.GetByID(ctx, req.CustomerID); err != nil {
		return nil, fmt.Errorf("failed to resolve customer: %w", err)
	}

	now := time.Now()
	claim := &models.Claim{
		ID:              uuid.New(),
		CustomerID:      req.CustomerID,
		Carrier:         req.Carrier,
		ClaimType:       req.ClaimType,
		Status:          models.ClaimPending,
		DateOfLoss:      req.DateOfLoss,
		InitialEstimate: req.InitialEstimate,
		Deductible:      req.Deductible,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := Reconcile(claim); err != nil {
		return nil, err
	}

	initial := models.StatusEvent{
		ID:        uuid.New(),
		ClaimID:   claim.ID,
		Status:    models.ClaimPending,
		Actor:     actor,
		CreatedAt: now,
	}
	if err := s.claims.Create(ctx, claim, initial); err != nil {
		return nil, fmt.Errorf("failed to create claim: %w", err)
	}
	claim.StatusHistory = []models.StatusEvent{initial}

	s.publisher.Publish(ctx, event.ClaimEvent{
		Type:       event.ClaimEventCreated,
		ClaimID:    claim.ID,
		CustomerID: claim.CustomerID,
		Carrier:    claim.Carrier,
		Status:     claim.Status,
		Actor:      actor,
	})

	return claim, nil
}

// GetClaim retrieves a claim, serving from cache when possible.
func (s *ClaimService) GetClaim(ctx context.Context, claimID uuid.UUID) (*models.Claim, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetClaim(ctx, claimID); err == nil && cached != nil {
			return cached, nil
		}
	}

	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetClaim(ctx, claim); err != nil {
			slog.Warn("Failed to cache claim", "claim_id", claimID, "error", err)
		}
	}
	return claim, nil
}

// GetClaimsByCustomer retrieves all claims belonging to one customer.
func (s *ClaimService) GetClaimsByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Claim, error) {
	claims, err := s.claims.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get claims: %w", err)
	}
	return claims, nil
}

// GetAllClaims retrieves claims with optional filters.
func (s *ClaimService) GetAllClaims(ctx context.Context, filters map[string]interface{}) ([]models.Claim, error) {
	claims, err := s.claims.GetAll(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get claims: %w", err)
	}
	return claims, nil
}

// StatusCounts returns per-status claim counts for the dashboard.
func (s *ClaimService) StatusCounts(ctx context.Context) (models.ClaimStatusCounts, error) {
	return s.claims.CountsByStatus(ctx)
}

// UpdateClaim patches claim fields under the per-claim lock. Financial
// patches go through the reconciler; a violating update is rejected whole
// and the stored claim is untouched.
func (s *ClaimService) UpdateClaim(ctx context.Context, claimID uuid.UUID, req models.UpdateClaimRequest, actor string) (*models.Claim, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.locks.Lock(claimID)
	defer s.locks.Unlock(claimID)

	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	working := claim.Clone()
	applyPatch(working, req)

	if err := Reconcile(working); err != nil {
		return nil, err
	}

	if err := s.claims.UpdateWithHistory(ctx, working); err != nil {
		return nil, err
	}
	s.invalidate(ctx, claimID)

	return working, nil
}

func applyPatch(claim *models.Claim, req models.UpdateClaimRequest) {
	if req.ClaimType != nil {
		claim.ClaimType = *req.ClaimType
	}
	if req.DateOfLoss != nil {
		claim.DateOfLoss = *req.DateOfLoss
	}
	if req.InspectionDate != nil {
		claim.InspectionDate = req.InspectionDate
	}
	if req.ReinspectionDate != nil {
		claim.ReinspectionDate = req.ReinspectionDate
	}
	if req.InitialEstimate != nil {
		claim.InitialEstimate = req.InitialEstimate
	}
	if req.ApprovedValue != nil {
		claim.ApprovedValue = req.ApprovedValue
	}
	if req.ACV != nil {
		claim.ACV = req.ACV
	}
	if req.Deductible != nil {
		claim.Deductible = req.Deductible
	}
	if req.SupplementValue != nil {
		claim.SupplementValue = *req.SupplementValue
	}
	if req.SupplementCount != nil {
		claim.SupplementCount = *req.SupplementCount
	}
	if req.TotalPaid != nil {
		claim.TotalPaid = *req.TotalPaid
	}
	if req.AdjusterName != nil {
		claim.AdjusterName = req.AdjusterName
	}
	if req.AdjusterPhone != nil {
		claim.AdjusterPhone = req.AdjusterPhone
	}
	if req.AdjusterEmail != nil {
		claim.AdjusterEmail = req.AdjusterEmail
	}
	if req.AdjusterCompany != nil {
		claim.AdjusterCompany = req.AdjusterCompany
	}
}

// TransitionClaim applies a user-requested status change through the
// lifecycle table. Requesting the current status is a no-op success.
func (s *ClaimService) TransitionClaim(ctx context.Context, claimID uuid.UUID, target models.ClaimStatus, note *string, actor string) (*models.Claim, error) {
	s.locks.Lock(claimID)
	defer s.locks.Unlock(claimID)

	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	working := claim.Clone()
	ev, err := Transition(working, target, actor, note)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		// Same-state retry, nothing to persist.
		return claim, nil
	}

	prev := claim.Status
	if err := s.claims.UpdateWithHistory(ctx, working, *ev); err != nil {
		return nil, err
	}
	s.invalidate(ctx, claimID)

	slog.Info("Claim transitioned",
		"claim_id", claimID, "from", prev, "to", working.Status, "actor", actor)

	s.publisher.Publish(ctx, event.ClaimEvent{
		Type:       event.ClaimEventStatusChanged,
		ClaimID:    working.ID,
		CustomerID: working.CustomerID,
		Carrier:    working.Carrier,
		Status:     working.Status,
		PrevStatus: prev,
		Actor:      actor,
	})

	return working, nil
}

// DeleteClaim hard-deletes a claim and its history. Explicit user action
// only; there is no soft delete.
func (s *ClaimService) DeleteClaim(ctx context.Context, claimID uuid.UUID, actor string) error {
	s.locks.Lock(claimID)
	defer s.locks.Unlock(claimID)

	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return err
	}

	if err := s.claims.Delete(ctx, claimID); err != nil {
		return fmt.Errorf("failed to delete claim: %w", err)
	}
	s.invalidate(ctx, claimID)

	slog.Info("Claim deleted", "claim_id", claimID, "deleted_by", actor)

	s.publisher.Publish(ctx, event.ClaimEvent{
		Type:       event.ClaimEventDeleted,
		ClaimID:    claim.ID,
		CustomerID: claim.CustomerID,
		Carrier:    claim.Carrier,
		Status:     claim.Status,
		Actor:      actor,
	})

	return nil
}

func (s *ClaimService) invalidate(ctx context.Context, claimID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateClaim(ctx, claimID); err != nil {
		slog.Warn("Failed to invalidate claim cache", "claim_id", claimID, "error", err)
	}
}
