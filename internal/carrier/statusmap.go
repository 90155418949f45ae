package carrier

import (
	"strings"

	"claims-service/internal/models"
)

// carrierStatusTable maps the vocabulary carriers use in status responses
// onto the local lifecycle. Fixed lookup, no structural inference: a status
// the table does not know is reported as unmapped rather than guessed.
var carrierStatusTable = map[string]models.ClaimStatus{
	"received":             models.ClaimFiled,
	"submitted":            models.ClaimFiled,
	"open":                 models.ClaimFiled,
	"under_review":         models.ClaimFiled,
	"adjuster_assigned":    models.ClaimAdjusterAssigned,
	"assigned":             models.ClaimAdjusterAssigned,
	"inspection_scheduled": models.ClaimInspectionScheduled,
	"inspection_pending":   models.ClaimInspectionScheduled,
	"approved":             models.ClaimApproved,
	"accepted":             models.ClaimApproved,
	"supplement_review":    models.ClaimSupplement,
	"supplement":           models.ClaimSupplement,
	"payment_issued":       models.ClaimPaid,
	"paid":                 models.ClaimPaid,
	"closed":               models.ClaimClosed,
	"settled":              models.ClaimClosed,
	"denied":               models.ClaimDenied,
	"rejected":             models.ClaimDenied,
}

// MapStatus translates a carrier status label to a local status. The second
// return is false when the label is unknown.
func MapStatus(raw string) (models.ClaimStatus, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	status, ok := carrierStatusTable[key]
	return status, ok
}
