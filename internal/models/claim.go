package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// CLAIM (CENTRAL ENTITY)
// ============================================================================

// All monetary fields are minor units (cents). Optional amounts are pointers
// so "not yet known" is distinguishable from zero. Depreciation is derived
// (RCV - ACV) and never set directly.
type Claim struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	CustomerID uuid.UUID   `json:"customer_id" db:"customer_id"`
	Carrier    string      `json:"carrier" db:"carrier"`
	ClaimType  ClaimType   `json:"claim_type" db:"claim_type"`
	Status     ClaimStatus `json:"status" db:"status"`

	CarrierClaimID   *string `json:"carrier_claim_id,omitempty" db:"carrier_claim_id"`
	ClaimNumber      *string `json:"claim_number,omitempty" db:"claim_number"`
	FiledWithCarrier bool    `json:"filed_with_carrier" db:"filed_with_carrier"`

	DateOfLoss       time.Time  `json:"date_of_loss" db:"date_of_loss"`
	InspectionDate   *time.Time `json:"inspection_date,omitempty" db:"inspection_date"`
	ReinspectionDate *time.Time `json:"reinspection_date,omitempty" db:"reinspection_date"`

	InitialEstimate *int64 `json:"initial_estimate,omitempty" db:"initial_estimate"`
	ApprovedValue   *int64 `json:"approved_value,omitempty" db:"approved_value"`
	ACV             *int64 `json:"acv,omitempty" db:"acv"`
	Depreciation    *int64 `json:"depreciation,omitempty" db:"depreciation"`
	Deductible      *int64 `json:"deductible,omitempty" db:"deductible"`
	SupplementValue int64  `json:"supplement_value" db:"supplement_value"`
	SupplementCount int    `json:"supplement_count" db:"supplement_count"`
	TotalPaid       int64  `json:"total_paid" db:"total_paid"`

	AdjusterName    *string `json:"adjuster_name,omitempty" db:"adjuster_name"`
	AdjusterPhone   *string `json:"adjuster_phone,omitempty" db:"adjuster_phone"`
	AdjusterEmail   *string `json:"adjuster_email,omitempty" db:"adjuster_email"`
	AdjusterCompany *string `json:"adjuster_company,omitempty" db:"adjuster_company"`

	CarrierLastSync *time.Time `json:"carrier_last_sync,omitempty" db:"carrier_last_sync"`

	Version   int       `json:"version" db:"version"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Loaded alongside the row; append-only, ordered by applied transition.
	StatusHistory []StatusEvent `json:"status_history,omitempty" db:"-"`
}

// StatusEvent is one entry in a claim's append-only status history.
type StatusEvent struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	ClaimID   uuid.UUID   `json:"claim_id" db:"claim_id"`
	Status    ClaimStatus `json:"status" db:"status"`
	Note      *string     `json:"note,omitempty" db:"note"`
	Actor     string      `json:"actor" db:"actor"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

// Customer is the read-only collaborator used to pre-fill filing requests.
type Customer struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Address          string    `json:"address" db:"address"`
	PolicyNumber     *string   `json:"policy_number,omitempty" db:"policy_number"`
	InsuranceCarrier *string   `json:"insurance_carrier,omitempty" db:"insurance_carrier"`
}

// CurrentHistoryStatus returns the status of the last history entry, or ""
// when no history has been loaded.
func (c *Claim) CurrentHistoryStatus() ClaimStatus {
	if len(c.StatusHistory) == 0 {
		return ""
	}
	return c.StatusHistory[len(c.StatusHistory)-1].Status
}

func (c *Claim) Clone() *Claim {
	out := *c
	if len(c.StatusHistory) > 0 {
		out.StatusHistory = make([]StatusEvent, len(c.StatusHistory))
		copy(out.StatusHistory, c.StatusHistory)
	}
	clonePtr := func(p *int64) *int64 {
		if p == nil {
			return nil
		}
		v := *p
		return &v
	}
	out.InitialEstimate = clonePtr(c.InitialEstimate)
	out.ApprovedValue = clonePtr(c.ApprovedValue)
	out.ACV = clonePtr(c.ACV)
	out.Depreciation = clonePtr(c.Depreciation)
	out.Deductible = clonePtr(c.Deductible)
	return &out
}
