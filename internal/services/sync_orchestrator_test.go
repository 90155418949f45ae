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

func newSyncOrchestratorForTest(store *memClaimStore, adapter *fakeAdapter, supportsSync bool) *SyncOrchestrator {
	return NewSyncOrchestrator(
		store,
		testRegistry(adapter, true, supportsSync),
		NewClaimLocker(), nil, nil,
		5*time.Second,
	)
}

// ============================================================================
// TEST SUITE 1: FORWARD PROGRESS
// ============================================================================

func TestSync_AppliesForwardStatusAndMoney(t *testing.T) {
	// Carrier reports approved with RCV $18,000 / ACV $16,000 while the claim
	// is still at filed. Status skips forward and depreciation is derived.
	claim := newFiledTestClaim()
	store := newMemClaimStore(claim)
	adapter := &fakeAdapter{
		name: "meridian-mutual",
		snapshot: &carrier.StatusSnapshot{
			Status:        "approved",
			ApprovedValue: ptrInt64(1800000),
			ACV:           ptrInt64(1600000),
			RetrievedAt:   time.Now(),
		},
	}
	orch := newSyncOrchestratorForTest(store, adapter, true)

	resp, err := orch.Sync(context.Background(), claim.ID, "desk-user")

	require.NoError(t, err)
	assert.Nil(t, resp.Conflict)

	stored := store.stored(claim.ID)
	assert.Equal(t, models.ClaimApproved, stored.Status)
	assert.Equal(t, int64(1800000), *stored.ApprovedValue)
	assert.Equal(t, int64(1600000), *stored.ACV)
	require.NotNil(t, stored.Depreciation)
	assert.Equal(t, int64(200000), *stored.Depreciation)
	require.NotNil(t, stored.CarrierLastSync)
	require.Len(t, stored.StatusHistory, 1)
	assert.Equal(t, models.ClaimApproved, stored.StatusHistory[0].Status)
}

func TestSync_SameStatusRefreshesMoneyOnly(t *testing.T) {
	claim := newFiledTestClaim()
	store := newMemClaimStore(claim)
	adapter := &fakeAdapter{
		name: "meridian-mutual",
		snapshot: &carrier.StatusSnapshot{
			Status:       "under_review",
			AdjusterName: ptrString("R. Calloway"),
			RetrievedAt:  time.Now(),
		},
	}
	orch := newSyncOrchestratorForTest(store, adapter, true)

	resp, err := orch.Sync(context.Background(), claim.ID, "desk-user")

	require.NoError(t, err)
	assert.Nil(t, resp.Conflict)

	stored := store.stored(claim.ID)
	assert.Equal(t, models.ClaimFiled, stored.Status)
	require.NotNil(t, stored.AdjusterName)
	assert.Equal(t, "R. Calloway", *stored.AdjusterName)
	assert.Empty(t, stored.StatusHistory, "no transition, no history entry")
}

// ============================================================================
// TEST SUITE 2: NEVER REGRESS
// ============================================================================

func TestSync_StaleCarrierStatusIsConflictNotRegression(t *testing.T) {
	claim := newFiledTestClaim()
	claim.Status = models.ClaimApproved
	claim.ApprovedValue = ptrInt64(1800000)
	store := newMemClaimStore(claim)
	adapter := &fakeAdapter{
		name: "meridian-mutual",
		snapshot: &carrier.StatusSnapshot{
			Status:      "under_review",
			RetrievedAt: time.Now(),
		},
	}
	orch := newSyncOrchestratorForTest(store, adapter, true)

	resp, err := orch.Sync(context.Background(), claim.ID, "desk-user")

	require.NoError(t, err, "a stale carrier feed is not an error")
	require.NotNil(t, resp.Conflict)
	assert.Equal(t, models.ClaimApproved, resp.Conflict.LocalStatus)
	assert.Equal(t, models.ClaimFiled, resp.Conflict.CarrierStatus)
	assert.NotEmpty(t, resp.Warning)

	stored := store.stored(claim.ID)
	assert.Equal(t, models.ClaimApproved, stored.Status, "status must never move backward")
	require.Len(t, stored.StatusHistory, 1, "the conflict is recorded as a note")
	assert.Equal(t, models.ClaimApproved, stored.StatusHistory[0].Status)
}

func TestSync_ConflictStillRefreshesMoney(t *testing.T) {
	claim := newFiledTestClaim()
	claim.Status = models.ClaimPaid
	claim.ApprovedValue = ptrInt64(1800000)
	claim.TotalPaid = 1800000
	store := newMemClaimStore(claim)
	adapter := &fakeAdapter{
		name: "meridian-mutual",
		snapshot: &carrier.StatusSnapshot{
			Status:        "approved",
			ApprovedValue: ptrInt64(1900000),
			RetrievedAt:   time.Now(),
		},
	}
	orch := newSyncOrchestratorForTest(store, adapter, true)

	resp, err := orch.Sync(context.Background(), claim.ID, "desk-user")

	require.NoError(t, err)
	require.NotNil(t, resp.Conflict)

	stored := store.stored(claim.ID)
	assert.Equal(t, models.ClaimPaid, stored.Status)
	assert.Equal(t, int64(1900000), *stored.ApprovedValue, "carrier money is authoritative even on conflict")
}

func TestSync_ClosedClaimStaysClosedOnCarrierDenial(t *testing.T) {
	// The carrier reports a denial long after the claim was paid and closed.
	// Denied outranks closed, but a terminal claim never moves again: the
	// report is recorded as a conflict, not applied.
	claim := newFiledTestClaim()
	claim.Status = models.ClaimClosed
	store := newMemClaimStore(claim)
	adapter := &fakeAdapter{
		name: "meridian-mutual",
		snapshot: &carrier.StatusSnapshot{
			Status:      "rejected",
			RetrievedAt: time.Now(),
		},
	}
	orch := newSyncOrchestratorForTest(store, adapter, true)

	resp, err := orch.Sync(context.Background(), claim.ID, "desk-user")

	require.NoError(t, err)
	require.NotNil(t, resp.Conflict)
	assert.Equal(t, models.ClaimClosed, resp.Conflict.LocalStatus)
	assert.Equal(t, models.ClaimDenied, resp.Conflict.CarrierStatus)

	stored := store.stored(claim.ID)
	assert.Equal(t, models.ClaimClosed, stored.Status, "terminal claims are never reopened by sync")
	require.Len(t, stored.StatusHistory, 1, "the disagreement is noted for review")
	assert.Equal(t, models.ClaimClosed, stored.StatusHistory[0].Status)
}

func TestSync_PaidClaimDenialIsConflictNotApplied(t *testing.T) {
	// Once money has gone out a carrier-reported denial is a dispute to
	// surface, not a state to adopt.
	claim := newFiledTestClaim()
	claim.Status = models.ClaimPaid
	claim.ApprovedValue = ptrInt64(1800000)
	claim.TotalPaid = 1800000
	store := newMemClaimStore(claim)
	adapter := &fakeAdapter{
		name: "meridian-mutual",
		snapshot: &carrier.StatusSnapshot{
			Status:      "rejected",
			RetrievedAt: time.Now(),
		},
	}
	orch := newSyncOrchestratorForTest(store, adapter, true)

	resp, err := orch.Sync(context.Background(), claim.ID, "desk-user")

	require.NoError(t, err)
	require.NotNil(t, resp.Conflict)
	assert.Equal(t, models.ClaimPaid, resp.Conflict.LocalStatus)
	assert.Equal(t, models.ClaimDenied, resp.Conflict.CarrierStatus)
	assert.Equal(t, models.ClaimPaid, store.stored(claim.ID).Status)
}

func TestSync_DenialAppliedDuringAdjustment(t *testing.T) {
	// Before anything is paid a denial is a legal lifecycle edge, so sync
	// applies it.
	claim := newFiledTestClaim()
	store := newMemClaimStore(claim)
	adapter := &fakeAdapter{
		name: "meridian-mutual",
		snapshot: &carrier.StatusSnapshot{
			Status:      "rejected",
			RetrievedAt: time.Now(),
		},
	}
	orch := newSyncOrchestratorForTest(store, adapter, true)

	resp, err := orch.Sync(context.Background(), claim.ID, "desk-user")

	require.NoError(t, err)
	assert.Nil(t, resp.Conflict)
	assert.Equal(t, models.ClaimDenied, store.stored(claim.ID).Status)
}

// ============================================================================
// TEST SUITE 3: GATES AND FAILURES
// ============================================================================

func TestSync_UnfiledClaimRejected(t *testing.T) {
	claim := newTestClaim(models.ClaimPending)
	store := newMemClaimStore(claim)
	adapter := &fakeAdapter{name: "meridian-mutual"}
	orch := newSyncOrchestratorForTest(store, adapter, true)

	_, err := orch.Sync(context.Background(), claim.ID, "desk-user")

	require.ErrorIs(t, err, models.ErrClaimNotFiled)
	assert.Equal(t, 0, adapter.fetchCalls)
}

func TestSync_UnsupportedCarrierRejectedBeforeNetwork(t *testing.T) {
	claim := newFiledTestClaim()
	store := newMemClaimStore(claim)
	adapter := &fakeAdapter{name: "meridian-mutual"}
	orch := newSyncOrchestratorForTest(store, adapter, false)

	_, err := orch.Sync(context.Background(), claim.ID, "desk-user")

	var unsupportedErr *models.UnsupportedOperationError
	require.ErrorAs(t, err, &unsupportedErr)
	assert.Equal(t, "status sync", unsupportedErr.Operation)
	assert.Equal(t, 0, adapter.fetchCalls)
}

func TestSync_FailedFetchStillRecordsAttempt(t *testing.T) {
	claim := newFiledTestClaim()
	store := newMemClaimStore(claim)
	adapter := &fakeAdapter{
		name:     "meridian-mutual",
		fetchErr: &models.CarrierError{Carrier: "meridian-mutual", Message: "gateway timeout"},
	}
	orch := newSyncOrchestratorForTest(store, adapter, true)

	_, err := orch.Sync(context.Background(), claim.ID, "desk-user")

	var carrierErr *models.CarrierError
	require.ErrorAs(t, err, &carrierErr)

	stored := store.stored(claim.ID)
	require.NotNil(t, stored.CarrierLastSync, "the attempt timestamp lands even on failure")
	assert.Equal(t, models.ClaimFiled, stored.Status)
	assert.Equal(t, 1, store.lastSyncTouches)
}

func TestSync_InvariantBreakingMoneyNotApplied(t *testing.T) {
	claim := newFiledTestClaim()
	store := newMemClaimStore(claim)
	adapter := &fakeAdapter{
		name: "meridian-mutual",
		snapshot: &carrier.StatusSnapshot{
			Status:        "approved",
			ApprovedValue: ptrInt64(1000000),
			ACV:           ptrInt64(1200000), // ACV above RCV
			RetrievedAt:   time.Now(),
		},
	}
	orch := newSyncOrchestratorForTest(store, adapter, true)

	_, err := orch.Sync(context.Background(), claim.ID, "desk-user")

	var invariantErr *models.InvariantViolationError
	require.ErrorAs(t, err, &invariantErr)

	stored := store.stored(claim.ID)
	assert.Equal(t, models.ClaimFiled, stored.Status, "nothing from the bad snapshot is applied")
	assert.Nil(t, stored.ApprovedValue)
	require.NotNil(t, stored.CarrierLastSync, "the attempt is still recorded")
}

func TestSync_UnknownCarrierStatusKeepsLocalStatus(t *testing.T) {
	claim := newFiledTestClaim()
	store := newMemClaimStore(claim)
	adapter := &fakeAdapter{
		name: "meridian-mutual",
		snapshot: &carrier.StatusSnapshot{
			Status:      "pending_subrogation_review",
			RetrievedAt: time.Now(),
		},
	}
	orch := newSyncOrchestratorForTest(store, adapter, true)

	resp, err := orch.Sync(context.Background(), claim.ID, "desk-user")

	require.NoError(t, err)
	assert.Nil(t, resp.Conflict)

	stored := store.stored(claim.ID)
	assert.Equal(t, models.ClaimFiled, stored.Status)
	require.Len(t, stored.StatusHistory, 1, "the unmapped status is noted for review")
	require.NotNil(t, stored.StatusHistory[0].Note)
	assert.Contains(t, *stored.StatusHistory[0].Note, "pending_subrogation_review")
}

// ============================================================================
// TEST SUITE 4: FILE THEN SYNC (END TO END OVER FAKES)
// ============================================================================

func TestFileThenSync_FullScenario(t *testing.T) {
	claim := newTestClaim(models.ClaimPending)
	customer := &models.Customer{ID: claim.CustomerID, Name: "Dana Whitfield", Address: "412 Maple Ct"}
	store := newMemClaimStore(claim)
	adapter := &fakeAdapter{
		name: "meridian-mutual",
		fileResult: &carrier.FilingResult{
			CarrierClaimID: "MER-2026-000123",
			ClaimNumber:    "CLM-1001",
			Status:         "received",
		},
		snapshot: &carrier.StatusSnapshot{
			Status:        "approved",
			ApprovedValue: ptrInt64(1800000),
			ACV:           ptrInt64(1600000),
			RetrievedAt:   time.Now(),
		},
	}
	registry := testRegistry(adapter, true, true)
	locks := NewClaimLocker()
	filing := NewFilingOrchestrator(store, newMemCustomerStore(customer), nil, registry, locks, nil, nil, 5*time.Second)
	syncer := NewSyncOrchestrator(store, registry, locks, nil, nil, 5*time.Second)

	fileResp, err := filing.File(context.Background(), claim.ID, validFilingRequest(), "desk-user")
	require.NoError(t, err)
	assert.Equal(t, "CLM-1001", fileResp.ClaimNumber)
	assert.Equal(t, models.ClaimFiled, fileResp.Claim.Status)

	syncResp, err := syncer.Sync(context.Background(), claim.ID, "desk-user")
	require.NoError(t, err)
	assert.Nil(t, syncResp.Conflict)

	stored := store.stored(claim.ID)
	assert.Equal(t, models.ClaimApproved, stored.Status)
	assert.Equal(t, int64(1800000), *stored.ApprovedValue)
	assert.Equal(t, int64(1600000), *stored.ACV)
	assert.Equal(t, int64(200000), *stored.Depreciation)
	require.Len(t, stored.StatusHistory, 2)
	assert.Equal(t, models.ClaimFiled, stored.StatusHistory[0].Status)
	assert.Equal(t, models.ClaimApproved, stored.StatusHistory[1].Status)
}
