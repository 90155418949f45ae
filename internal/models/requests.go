package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// CLAIM REQUEST / RESPONSE MODELS
// ============================================================================

type CreateClaimRequest struct {
	CustomerID      uuid.UUID `json:"customer_id"`
	Carrier         string    `json:"carrier"`
	ClaimType       ClaimType `json:"claim_type"`
	DateOfLoss      time.Time `json:"date_of_loss"`
	InitialEstimate *int64    `json:"initial_estimate,omitempty"`
	Deductible      *int64    `json:"deductible,omitempty"`
}

func (r *CreateClaimRequest) Validate() error {
	if r.CustomerID == uuid.Nil {
		return &ValidationError{Field: "customer_id", Message: "customer_id is required"}
	}
	if r.Carrier == "" {
		return &ValidationError{Field: "carrier", Message: "carrier is required"}
	}
	if !ValidClaimType(r.ClaimType) {
		return &ValidationError{Field: "claim_type", Message: "unknown claim type"}
	}
	if r.DateOfLoss.IsZero() {
		return &ValidationError{Field: "date_of_loss", Message: "date_of_loss is required"}
	}
	if r.DateOfLoss.After(time.Now()) {
		return &ValidationError{Field: "date_of_loss", Message: "date_of_loss cannot be in the future"}
	}
	if r.InitialEstimate != nil && *r.InitialEstimate < 0 {
		return &ValidationError{Field: "initial_estimate", Message: "initial_estimate cannot be negative"}
	}
	if r.Deductible != nil && *r.Deductible < 0 {
		return &ValidationError{Field: "deductible", Message: "deductible cannot be negative"}
	}
	return nil
}

// UpdateClaimRequest patches informational and financial fields. Nil means
// "leave unchanged". Depreciation is absent on purpose: it is derived.
type UpdateClaimRequest struct {
	ClaimType        *ClaimType `json:"claim_type,omitempty"`
	DateOfLoss       *time.Time `json:"date_of_loss,omitempty"`
	InspectionDate   *time.Time `json:"inspection_date,omitempty"`
	ReinspectionDate *time.Time `json:"reinspection_date,omitempty"`
	InitialEstimate  *int64     `json:"initial_estimate,omitempty"`
	ApprovedValue    *int64     `json:"approved_value,omitempty"`
	ACV              *int64     `json:"acv,omitempty"`
	Deductible       *int64     `json:"deductible,omitempty"`
	SupplementValue  *int64     `json:"supplement_value,omitempty"`
	SupplementCount  *int       `json:"supplement_count,omitempty"`
	TotalPaid        *int64     `json:"total_paid,omitempty"`
	AdjusterName     *string    `json:"adjuster_name,omitempty"`
	AdjusterPhone    *string    `json:"adjuster_phone,omitempty"`
	AdjusterEmail    *string    `json:"adjuster_email,omitempty"`
	AdjusterCompany  *string    `json:"adjuster_company,omitempty"`
}

func (r *UpdateClaimRequest) Validate() error {
	if r.ClaimType != nil && !ValidClaimType(*r.ClaimType) {
		return &ValidationError{Field: "claim_type", Message: "unknown claim type"}
	}
	if r.DateOfLoss != nil {
		if r.DateOfLoss.IsZero() {
			return &ValidationError{Field: "date_of_loss", Message: "date_of_loss cannot be empty"}
		}
		if r.DateOfLoss.After(time.Now()) {
			return &ValidationError{Field: "date_of_loss", Message: "date_of_loss cannot be in the future"}
		}
	}
	if r.SupplementCount != nil && *r.SupplementCount < 0 {
		return &ValidationError{Field: "supplement_count", Message: "supplement_count cannot be negative"}
	}
	return nil
}

type TransitionRequest struct {
	Status ClaimStatus `json:"status"`
	Note   *string     `json:"note,omitempty"`
}

// DamageArea describes one damaged section of the property on a filing.
type DamageArea struct {
	DamageType  string         `json:"damage_type"`
	Severity    DamageSeverity `json:"severity"`
	Description *string        `json:"description,omitempty"`
}

type FileClaimRequest struct {
	PolicyNumber        string       `json:"policy_number"`
	CauseOfLoss         CauseOfLoss  `json:"cause_of_loss"`
	LossDescription     string       `json:"loss_description"`
	DamageAreas         []DamageArea `json:"damage_areas"`
	EmergencyRepair     bool         `json:"emergency_repair"`
	EmergencyRepairCost *int64       `json:"emergency_repair_cost,omitempty"`
	PhotoIDs            []uuid.UUID  `json:"photo_ids,omitempty"`
}

func (r *FileClaimRequest) Validate() error {
	if r.PolicyNumber == "" {
		return &ValidationError{Field: "policy_number", Message: "policy_number is required"}
	}
	if !ValidCauseOfLoss(r.CauseOfLoss) {
		return &ValidationError{Field: "cause_of_loss", Message: "unknown cause of loss"}
	}
	if r.LossDescription == "" {
		return &ValidationError{Field: "loss_description", Message: "loss_description is required"}
	}
	if len(r.DamageAreas) == 0 {
		return &ValidationError{Field: "damage_areas", Message: "at least one damage area is required"}
	}
	for _, area := range r.DamageAreas {
		if area.DamageType == "" {
			return &ValidationError{Field: "damage_areas", Message: "damage_type is required on every damage area"}
		}
		if !ValidDamageSeverity(area.Severity) {
			return &ValidationError{Field: "damage_areas", Message: "unknown severity on damage area " + area.DamageType}
		}
	}
	if r.EmergencyRepairCost != nil && *r.EmergencyRepairCost < 0 {
		return &ValidationError{Field: "emergency_repair_cost", Message: "emergency_repair_cost cannot be negative"}
	}
	return nil
}

// FileClaimResponse reports a completed filing, including whether this was a
// repeat attempt on an already-filed claim.
type FileClaimResponse struct {
	Claim          *Claim `json:"claim"`
	CarrierClaimID string `json:"carrier_claim_id"`
	ClaimNumber    string `json:"claim_number"`
	Refiled        bool   `json:"refiled"`
	Warning        string `json:"warning,omitempty"`
}

// SyncClaimResponse carries the refreshed claim plus an optional non-fatal
// conflict when the carrier reported stale progress.
type SyncClaimResponse struct {
	Claim    *Claim        `json:"claim"`
	Conflict *SyncConflict `json:"conflict,omitempty"`
	Warning  string        `json:"warning,omitempty"`
}

// SweepResult summarizes one batch sync pass.
type SweepResult struct {
	Attempted int `json:"attempted"`
	Synced    int `json:"synced"`
	Conflicts int `json:"conflicts"`
	Failed    int `json:"failed"`
}

// ClaimStatusCounts feeds the dashboard cards.
type ClaimStatusCounts map[ClaimStatus]int
