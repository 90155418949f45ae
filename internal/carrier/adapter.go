package carrier

import (
	"context"
	"time"

	"claims-service/internal/models"
)

// FilingRequest is the engine-side shape handed to an adapter. Each adapter
// translates it into its carrier's wire format; no carrier detail leaks out.
type FilingRequest struct {
	PolicyNumber        string
	CauseOfLoss         models.CauseOfLoss
	LossDescription     string
	DateOfLoss          time.Time
	ClaimType           models.ClaimType
	DamageAreas         []models.DamageArea
	EmergencyRepair     bool
	EmergencyRepairCost *int64
	PhotoURLs           []string
	InsuredName         string
	PropertyAddress     string
}

// FilingResult is the carrier's confirmation of a new claim.
type FilingResult struct {
	CarrierClaimID        string
	ClaimNumber           string
	Status                string
	EstimatedResponseDays int
	AdjusterName          *string
	AdjusterPhone         *string
	AdjusterEmail         *string
	Message               string
}

// StatusSnapshot is a point-in-time view of a claim as the carrier sees it.
// Carrier systems are treated as possibly stale; the sync orchestrator
// decides what to apply. Money is minor units.
type StatusSnapshot struct {
	Status        string
	ApprovedValue *int64
	ACV           *int64
	PaidToDate    *int64
	AdjusterName  *string
	AdjusterPhone *string
	AdjusterEmail *string
	RetrievedAt   time.Time
}

// Adapter is the per-carrier translation layer. Implementations must only be
// called through the Registry, which gates on declared capabilities.
type Adapter interface {
	Name() string
	FileClaim(ctx context.Context, req FilingRequest) (*FilingResult, error)
	FetchStatus(ctx context.Context, carrierClaimID string) (*StatusSnapshot, error)
}
