package services

import (
	"fmt"

	"claims-service/internal/models"
)

// Reconcile recomputes derived monetary fields and validates the claim's
// financial invariants. Pure in-memory computation, no I/O. It is called
// after every transition and after every direct financial edit; violations
// are rejected with a typed error, never clamped.
//
// Rules:
//   - every monetary field is non-negative
//   - depreciation = approvedValue - acv when both are present, cleared otherwise
//   - approvedValue >= acv when both are present
//   - totalPaid <= approvedValue + supplementValue
func Reconcile(claim *models.Claim) error {
	for _, check := range []struct {
		name  string
		value *int64
	}{
		{"initial_estimate", claim.InitialEstimate},
		{"approved_value", claim.ApprovedValue},
		{"acv", claim.ACV},
		{"deductible", claim.Deductible},
	} {
		if check.value != nil && *check.value < 0 {
			return &models.InvariantViolationError{
				Rule:    "non-negative",
				Message: fmt.Sprintf("%s cannot be negative, got %d", check.name, *check.value),
			}
		}
	}
	if claim.SupplementValue < 0 {
		return &models.InvariantViolationError{
			Rule:    "non-negative",
			Message: fmt.Sprintf("supplement_value cannot be negative, got %d", claim.SupplementValue),
		}
	}
	if claim.SupplementCount < 0 {
		return &models.InvariantViolationError{
			Rule:    "non-negative",
			Message: fmt.Sprintf("supplement_count cannot be negative, got %d", claim.SupplementCount),
		}
	}
	if claim.TotalPaid < 0 {
		return &models.InvariantViolationError{
			Rule:    "non-negative",
			Message: fmt.Sprintf("total_paid cannot be negative, got %d", claim.TotalPaid),
		}
	}

	if claim.ApprovedValue != nil && claim.ACV != nil {
		if *claim.ApprovedValue < *claim.ACV {
			return &models.InvariantViolationError{
				Rule: "rcv-gte-acv",
				Message: fmt.Sprintf("approved value %d is below ACV %d",
					*claim.ApprovedValue, *claim.ACV),
			}
		}
		depreciation := *claim.ApprovedValue - *claim.ACV
		claim.Depreciation = &depreciation
	} else {
		// Depreciation is derived; without both inputs it is unknown.
		claim.Depreciation = nil
	}

	var approved int64
	if claim.ApprovedValue != nil {
		approved = *claim.ApprovedValue
	}
	if claim.TotalPaid > approved+claim.SupplementValue {
		return &models.InvariantViolationError{
			Rule: "paid-within-approved",
			Message: fmt.Sprintf("total paid %d exceeds approved %d plus supplements %d",
				claim.TotalPaid, approved, claim.SupplementValue),
		}
	}

	return nil
}
