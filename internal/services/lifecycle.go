package services

import (
	"time"

	"claims-service/internal/models"

	"github.com/google/uuid"
)

// allowedTransitions is the lifecycle edge table. Forward skips inside the
// adjustment phase are legal because carriers report coarse-grained progress;
// paid is only reachable once something has been approved.
var allowedTransitions = map[models.ClaimStatus][]models.ClaimStatus{
	models.ClaimPending: {models.ClaimFiled},
	models.ClaimFiled: {
		models.ClaimAdjusterAssigned,
		models.ClaimInspectionScheduled,
		models.ClaimApproved,
		models.ClaimDenied,
	},
	models.ClaimAdjusterAssigned: {
		models.ClaimInspectionScheduled,
		models.ClaimApproved,
		models.ClaimDenied,
	},
	models.ClaimInspectionScheduled: {
		models.ClaimApproved,
		models.ClaimDenied,
	},
	models.ClaimApproved: {
		models.ClaimSupplement,
		models.ClaimPaid,
		models.ClaimDenied,
	},
	models.ClaimSupplement: {
		models.ClaimApproved,
		models.ClaimPaid,
	},
	models.ClaimPaid: {
		models.ClaimSupplement,
		models.ClaimClosed,
	},
	models.ClaimClosed: {},
	models.ClaimDenied: {},
}

// statusRank orders the pipeline for the sync forward-progress rule. Denied
// outranks everything non-terminal: a carrier denial is new information, not
// a regression.
var statusRank = map[models.ClaimStatus]int{
	models.ClaimPending:             0,
	models.ClaimFiled:               1,
	models.ClaimAdjusterAssigned:    2,
	models.ClaimInspectionScheduled: 3,
	models.ClaimApproved:            4,
	models.ClaimSupplement:          5,
	models.ClaimPaid:                6,
	models.ClaimClosed:              7,
	models.ClaimDenied:              8,
}

// CanTransition reports whether from -> to is an edge in the lifecycle table.
func CanTransition(from, to models.ClaimStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// StatusRank returns the pipeline position used by the sync reconciliation
// policy. Unknown statuses rank lowest.
func StatusRank(s models.ClaimStatus) int {
	return statusRank[s]
}

// CanApplyCarrierStatus reports whether a carrier-reported status may be
// applied during sync. Sync moves claims forward by rank rather than through
// the edge table, but a terminal claim never moves again, and a denial is only
// applied where the edge table has a denied edge: once money has gone out
// (paid, or a supplement round after payment) a carrier-reported denial is a
// disagreement to surface, not a state to adopt.
func CanApplyCarrierStatus(from, to models.ClaimStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if StatusRank(to) <= StatusRank(from) {
		return false
	}
	if to == models.ClaimDenied {
		return CanTransition(from, models.ClaimDenied)
	}
	return true
}

// ValidClaimStatus reports whether s is a known lifecycle status.
func ValidClaimStatus(s models.ClaimStatus) bool {
	_, ok := statusRank[s]
	return ok
}

// Transition applies a status change to the claim in memory: validates the
// edge, updates the status, appends a history event, and reconciles the
// financial fields. Persistence is the caller's job so the write stays atomic
// with whatever else the operation changed.
//
// Requesting the claim's current status is a no-op success (nil event) so
// retried requests are tolerated.
func Transition(claim *models.Claim, target models.ClaimStatus, actor string, note *string) (*models.StatusEvent, error) {
	if !ValidClaimStatus(target) {
		return nil, &models.ValidationError{Field: "status", Message: "unknown claim status"}
	}
	if target == claim.Status {
		return nil, nil
	}
	if !CanTransition(claim.Status, target) {
		return nil, &models.InvalidTransitionError{From: claim.Status, To: target}
	}

	if target == models.ClaimSupplement {
		claim.SupplementCount++
	}

	claim.Status = target
	event := models.StatusEvent{
		ID:        uuid.New(),
		ClaimID:   claim.ID,
		Status:    target,
		Note:      note,
		Actor:     actor,
		CreatedAt: time.Now(),
	}

	if err := Reconcile(claim); err != nil {
		return nil, err
	}

	return &event, nil
}
