package models

type ClaimStatus string

const (
	ClaimPending             ClaimStatus = "pending"
	ClaimFiled               ClaimStatus = "filed"
	ClaimAdjusterAssigned    ClaimStatus = "adjuster_assigned"
	ClaimInspectionScheduled ClaimStatus = "inspection_scheduled"
	ClaimApproved            ClaimStatus = "approved"
	ClaimSupplement          ClaimStatus = "supplement"
	ClaimPaid                ClaimStatus = "paid"
	ClaimClosed              ClaimStatus = "closed"
	ClaimDenied              ClaimStatus = "denied"
)

// IsTerminal reports whether no further transitions are allowed from s.
func (s ClaimStatus) IsTerminal() bool {
	return s == ClaimClosed || s == ClaimDenied
}

type ClaimType string

const (
	ClaimTypeRoof         ClaimType = "roof"
	ClaimTypeSiding       ClaimType = "siding"
	ClaimTypeGutters      ClaimType = "gutters"
	ClaimTypeFullExterior ClaimType = "full_exterior"
	ClaimTypeInterior     ClaimType = "interior"
)

type CauseOfLoss string

const (
	CauseHail       CauseOfLoss = "hail"
	CauseWind       CauseOfLoss = "wind"
	CauseTornado    CauseOfLoss = "tornado"
	CauseHurricane  CauseOfLoss = "hurricane"
	CauseFire       CauseOfLoss = "fire"
	CauseWater      CauseOfLoss = "water"
	CauseLightning  CauseOfLoss = "lightning"
	CauseFallenTree CauseOfLoss = "fallen_tree"
	CauseOther      CauseOfLoss = "other"
)

type DamageSeverity string

const (
	SeverityMinor    DamageSeverity = "minor"
	SeverityModerate DamageSeverity = "moderate"
	SeveritySevere   DamageSeverity = "severe"
)

func ValidClaimType(t ClaimType) bool {
	switch t {
	case ClaimTypeRoof, ClaimTypeSiding, ClaimTypeGutters, ClaimTypeFullExterior, ClaimTypeInterior:
		return true
	}
	return false
}

func ValidCauseOfLoss(c CauseOfLoss) bool {
	switch c {
	case CauseHail, CauseWind, CauseTornado, CauseHurricane, CauseFire,
		CauseWater, CauseLightning, CauseFallenTree, CauseOther:
		return true
	}
	return false
}

func ValidDamageSeverity(s DamageSeverity) bool {
	switch s {
	case SeverityMinor, SeverityModerate, SeveritySevere:
		return true
	}
	return false
}
