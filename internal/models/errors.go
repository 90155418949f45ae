package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the engine. Handlers map these to HTTP codes;
// orchestrators never retry caller errors.
var (
	ErrClaimNotFound    = errors.New("claim not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrPhotoNotFound    = errors.New("photo not found")
	ErrClaimNotFiled    = errors.New("claim has not been filed with a carrier")
	ErrVersionConflict  = errors.New("claim was modified concurrently")
	ErrCarrierUnknown   = errors.New("carrier is not registered")
)

// ValidationError reports bad caller input on a named field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// InvalidTransitionError is returned when a requested status change is not an
// edge in the lifecycle table.
type InvalidTransitionError struct {
	From ClaimStatus
	To   ClaimStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid claim transition %s -> %s", e.From, e.To)
}

// InvariantViolationError is returned by the financial reconciler when a
// monetary update would break a claim invariant. Nothing is clamped.
type InvariantViolationError struct {
	Rule    string
	Message string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("financial invariant %s violated: %s", e.Rule, e.Message)
}

// UnsupportedOperationError is returned by the capability gate before any
// network call is attempted.
type UnsupportedOperationError struct {
	Carrier   string
	Operation string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("carrier %s does not support %s", e.Carrier, e.Operation)
}

// CarrierError preserves a carrier-side rejection so the caller can correct
// and retry. Retryable from the caller's point of view; the engine never
// retries inside a single orchestrator call.
type CarrierError struct {
	Carrier string
	Code    string
	Message string
	Err     error
}

func (e *CarrierError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("carrier %s rejected request (%s): %s", e.Carrier, e.Code, e.Message)
	}
	return fmt.Sprintf("carrier %s request failed: %s", e.Carrier, e.Message)
}

func (e *CarrierError) Unwrap() error { return e.Err }

// SyncConflict records a carrier snapshot that would move a claim backward in
// the pipeline. Non-fatal: the claim is returned unchanged alongside it.
type SyncConflict struct {
	LocalStatus   ClaimStatus `json:"local_status"`
	CarrierStatus ClaimStatus `json:"carrier_status"`
	RawStatus     string      `json:"raw_status"`
}

func (c *SyncConflict) Note() string {
	return fmt.Sprintf("carrier reported %q (maps to %s) but claim is already %s; status kept",
		c.RawStatus, c.CarrierStatus, c.LocalStatus)
}
