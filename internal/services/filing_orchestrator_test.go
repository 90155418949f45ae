package services

import (
	"context"
	"testing"
	"time"

	"claims-service/internal/carrier"
	"claims-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFilingOrchestratorForTest(store *memClaimStore, customers *memCustomerStore, adapter *fakeAdapter, supportsFiling bool) *FilingOrchestrator {
	return NewFilingOrchestrator(
		store, customers, nil,
		testRegistry(adapter, supportsFiling, true),
		NewClaimLocker(), nil, nil,
		5*time.Second,
	)
}

// ============================================================================
// TEST SUITE 1: SUCCESSFUL FILING
// ============================================================================

func TestFile_PendingClaimBecomesFiled(t *testing.T) {
	claim := newTestClaim(models.ClaimPending)
	customer := &models.Customer{ID: claim.CustomerID, Name: "Dana Whitfield", Address: "412 Maple Ct"}
	store := newMemClaimStore(claim)
	adapter := &fakeAdapter{
		name: "meridian-mutual",
		fileResult: &carrier.FilingResult{
			CarrierClaimID:        "MER-2026-000123",
			ClaimNumber:           "CLM-1001",
			Status:                "received",
			EstimatedResponseDays: 5,
		},
	}
	orch := newFilingOrchestratorForTest(store, newMemCustomerStore(customer), adapter, true)

	resp, err := orch.File(context.Background(), claim.ID, validFilingRequest(), "desk-user")

	require.NoError(t, err)
	assert.Equal(t, "MER-2026-000123", resp.CarrierClaimID)
	assert.Equal(t, "CLM-1001", resp.ClaimNumber)
	assert.False(t, resp.Refiled)

	stored := store.stored(claim.ID)
	assert.Equal(t, models.ClaimFiled, stored.Status)
	assert.True(t, stored.FiledWithCarrier)
	require.NotNil(t, stored.CarrierClaimID)
	assert.Equal(t, "MER-2026-000123", *stored.CarrierClaimID)
	require.Len(t, stored.StatusHistory, 1)
	assert.Equal(t, models.ClaimFiled, stored.StatusHistory[0].Status)
	assert.Equal(t, 1, adapter.fileCalls)
}

// ============================================================================
// TEST SUITE 2: CAPABILITY GATE
// ============================================================================

func TestFile_SyncOnlyCarrierRejectedBeforeNetwork(t *testing.T) {
	claim := newTestClaim(models.ClaimPending)
	customer := &models.Customer{ID: claim.CustomerID, Name: "Dana Whitfield", Address: "412 Maple Ct"}
	store := newMemClaimStore(claim)
	adapter := &fakeAdapter{name: "meridian-mutual"}
	orch := newFilingOrchestratorForTest(store, newMemCustomerStore(customer), adapter, false)

	_, err := orch.File(context.Background(), claim.ID, validFilingRequest(), "desk-user")

	var unsupportedErr *models.UnsupportedOperationError
	require.ErrorAs(t, err, &unsupportedErr)
	assert.Equal(t, "direct filing", unsupportedErr.Operation)
	assert.Equal(t, 0, adapter.fileCalls, "gate must reject before any carrier contact")

	stored := store.stored(claim.ID)
	assert.Equal(t, models.ClaimPending, stored.Status)
	assert.False(t, stored.FiledWithCarrier)
}

func TestFile_ManualCarrierRejected(t *testing.T) {
	claim := newTestClaim(models.ClaimPending)
	claim.Carrier = "heartland-underwriters"
	customer := &models.Customer{ID: claim.CustomerID, Name: "Dana Whitfield", Address: "412 Maple Ct"}
	store := newMemClaimStore(claim)
	orch := newFilingOrchestratorForTest(store, newMemCustomerStore(customer), &fakeAdapter{name: "meridian-mutual"}, true)

	_, err := orch.File(context.Background(), claim.ID, validFilingRequest(), "desk-user")

	var unsupportedErr *models.UnsupportedOperationError
	require.ErrorAs(t, err, &unsupportedErr)
	assert.Equal(t, "heartland-underwriters", unsupportedErr.Carrier)
}

// ============================================================================
// TEST SUITE 3: FAILURE LEAVES THE CLAIM UNTOUCHED
// ============================================================================

func TestFile_CarrierRejectionChangesNothing(t *testing.T) {
	claim := newTestClaim(models.ClaimPending)
	customer := &models.Customer{ID: claim.CustomerID, Name: "Dana Whitfield", Address: "412 Maple Ct"}
	store := newMemClaimStore(claim)
	adapter := &fakeAdapter{
		name:    "meridian-mutual",
		fileErr: &models.CarrierError{Carrier: "meridian-mutual", Code: "POLICY_LAPSED", Message: "policy not in force"},
	}
	orch := newFilingOrchestratorForTest(store, newMemCustomerStore(customer), adapter, true)

	_, err := orch.File(context.Background(), claim.ID, validFilingRequest(), "desk-user")

	var carrierErr *models.CarrierError
	require.ErrorAs(t, err, &carrierErr)
	assert.Equal(t, "POLICY_LAPSED", carrierErr.Code)

	stored := store.stored(claim.ID)
	assert.Equal(t, models.ClaimPending, stored.Status)
	assert.False(t, stored.FiledWithCarrier)
	assert.Nil(t, stored.CarrierClaimID)
	assert.Empty(t, stored.StatusHistory)
}

func TestFile_InvalidRequestRejectedBeforeLoad(t *testing.T) {
	claim := newTestClaim(models.ClaimPending)
	store := newMemClaimStore(claim)
	adapter := &fakeAdapter{name: "meridian-mutual"}
	orch := newFilingOrchestratorForTest(store, newMemCustomerStore(), adapter, true)

	req := validFilingRequest()
	req.DamageAreas = nil
	_, err := orch.File(context.Background(), claim.ID, req, "desk-user")

	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "damage_areas", validationErr.Field)
	assert.Equal(t, 0, adapter.fileCalls)
}

func TestFile_TerminalClaimRejected(t *testing.T) {
	claim := newTestClaim(models.ClaimDenied)
	customer := &models.Customer{ID: claim.CustomerID, Name: "Dana Whitfield", Address: "412 Maple Ct"}
	store := newMemClaimStore(claim)
	adapter := &fakeAdapter{name: "meridian-mutual"}
	orch := newFilingOrchestratorForTest(store, newMemCustomerStore(customer), adapter, true)

	_, err := orch.File(context.Background(), claim.ID, validFilingRequest(), "desk-user")

	var transitionErr *models.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, 0, adapter.fileCalls)
}

// ============================================================================
// TEST SUITE 4: RE-FILING
// ============================================================================

func TestFile_RefilingWarnsAndKeepsStatus(t *testing.T) {
	claim := newFiledTestClaim()
	claim.Status = models.ClaimAdjusterAssigned
	customer := &models.Customer{ID: claim.CustomerID, Name: "Dana Whitfield", Address: "412 Maple Ct"}
	store := newMemClaimStore(claim)
	adapter := &fakeAdapter{
		name: "meridian-mutual",
		fileResult: &carrier.FilingResult{
			CarrierClaimID: "MER-2026-000456",
			ClaimNumber:    "CLM-1002",
			Status:         "received",
		},
	}
	orch := newFilingOrchestratorForTest(store, newMemCustomerStore(customer), adapter, true)

	resp, err := orch.File(context.Background(), claim.ID, validFilingRequest(), "desk-user")

	require.NoError(t, err)
	assert.True(t, resp.Refiled)
	assert.NotEmpty(t, resp.Warning)

	stored := store.stored(claim.ID)
	assert.Equal(t, models.ClaimAdjusterAssigned, stored.Status, "re-filing must not move the pipeline")
	assert.True(t, stored.FiledWithCarrier, "filed flag is monotonic")
	assert.Equal(t, "MER-2026-000456", *stored.CarrierClaimID)
	require.Len(t, stored.StatusHistory, 1, "the attempt still lands in history")
	assert.Equal(t, models.ClaimAdjusterAssigned, stored.StatusHistory[0].Status)
}
