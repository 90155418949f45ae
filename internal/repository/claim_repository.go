package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"claims-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const claimColumns = `
	id, customer_id, carrier, claim_type, status, carrier_claim_id, claim_number,
	filed_with_carrier, date_of_loss, inspection_date, reinspection_date,
	initial_estimate, approved_value, acv, depreciation, deductible,
	supplement_value, supplement_count, total_paid,
	adjuster_name, adjuster_phone, adjuster_email, adjuster_company,
	carrier_last_sync, version, created_at, updated_at
`

type ClaimRepository struct {
	db *sqlx.DB
}

func NewClaimRepository(db *sqlx.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// GetByID retrieves a claim with its full status history.
func (r *ClaimRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	var claim models.Claim
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = $1`

	err := r.db.GetContext(ctx, &claim, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrClaimNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get claim by id: %w", err)
	}

	history, err := r.historyFor(ctx, id)
	if err != nil {
		return nil, err
	}
	claim.StatusHistory = history

	return &claim, nil
}

func (r *ClaimRepository) historyFor(ctx context.Context, claimID uuid.UUID) ([]models.StatusEvent, error) {
	var history []models.StatusEvent
	query := `
		SELECT id, claim_id, status, note, actor, created_at
		FROM claim_status_history
		WHERE claim_id = $1
		ORDER BY seq ASC
	`
	if err := r.db.SelectContext(ctx, &history, query, claimID); err != nil {
		return nil, fmt.Errorf("failed to get claim history: %w", err)
	}
	return history, nil
}

// GetByCustomerID retrieves all claims for a customer, newest first.
func (r *ClaimRepository) GetByCustomerID(ctx context.Context, customerID uuid.UUID) ([]models.Claim, error) {
	var claims []models.Claim
	query := `SELECT ` + claimColumns + ` FROM claims WHERE customer_id = $1 ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &claims, query, customerID); err != nil {
		return nil, fmt.Errorf("failed to get claims by customer id: %w", err)
	}
	return claims, nil
}

// GetAll retrieves claims with optional status/carrier filters.
func (r *ClaimRepository) GetAll(ctx context.Context, filters map[string]interface{}) ([]models.Claim, error) {
	var claims []models.Claim
	query := `SELECT ` + claimColumns + ` FROM claims WHERE 1=1`

	args := []interface{}{}
	argCount := 1

	if status, ok := filters["status"].(models.ClaimStatus); ok {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, status)
		argCount++
	}

	if carrier, ok := filters["carrier"].(string); ok {
		query += fmt.Sprintf(" AND carrier = $%d", argCount)
		args = append(args, carrier)
		argCount++
	}

	query += " ORDER BY created_at DESC"

	if err := r.db.SelectContext(ctx, &claims, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get claims: %w", err)
	}
	return claims, nil
}

// GetSyncable retrieves claims eligible for a batch status sweep: filed with
// a carrier and not yet terminal.
func (r *ClaimRepository) GetSyncable(ctx context.Context) ([]models.Claim, error) {
	var claims []models.Claim
	query := `SELECT ` + claimColumns + `
		FROM claims
		WHERE filed_with_carrier = TRUE
		  AND carrier_claim_id IS NOT NULL
		  AND status NOT IN ('closed', 'denied')
		ORDER BY carrier_last_sync ASC NULLS FIRST`

	if err := r.db.SelectContext(ctx, &claims, query); err != nil {
		return nil, fmt.Errorf("failed to get syncable claims: %w", err)
	}
	return claims, nil
}

// Create inserts the claim row and its initial history event atomically.
func (r *ClaimRepository) Create(ctx context.Context, claim *models.Claim, initial models.StatusEvent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO claims (
			id, customer_id, carrier, claim_type, status, carrier_claim_id, claim_number,
			filed_with_carrier, date_of_loss, inspection_date, reinspection_date,
			initial_estimate, approved_value, acv, depreciation, deductible,
			supplement_value, supplement_count, total_paid,
			adjuster_name, adjuster_phone, adjuster_email, adjuster_company,
			carrier_last_sync, version, created_at, updated_at
		) VALUES (
			:id, :customer_id, :carrier, :claim_type, :status, :carrier_claim_id, :claim_number,
			:filed_with_carrier, :date_of_loss, :inspection_date, :reinspection_date,
			:initial_estimate, :approved_value, :acv, :depreciation, :deductible,
			:supplement_value, :supplement_count, :total_paid,
			:adjuster_name, :adjuster_phone, :adjuster_email, :adjuster_company,
			:carrier_last_sync, :version, :created_at, :updated_at
		)
	`
	if _, err := tx.NamedExecContext(ctx, query, claim); err != nil {
		return fmt.Errorf("failed to insert claim: %w", err)
	}

	if err := insertHistoryTx(ctx, tx, initial); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit claim insert: %w", err)
	}
	return nil
}

// UpdateWithHistory writes the claim and appends history events in one
// transaction, guarded by an optimistic version check. The caller's claim has
// the version it was read at; a concurrent writer bumps it and this write
// fails with ErrVersionConflict.
func (r *ClaimRepository) UpdateWithHistory(ctx context.Context, claim *models.Claim, events ...models.StatusEvent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	claim.UpdatedAt = time.Now()

	query := `
		UPDATE claims SET
			carrier = :carrier,
			claim_type = :claim_type,
			status = :status,
			carrier_claim_id = :carrier_claim_id,
			claim_number = :claim_number,
			filed_with_carrier = :filed_with_carrier,
			date_of_loss = :date_of_loss,
			inspection_date = :inspection_date,
			reinspection_date = :reinspection_date,
			initial_estimate = :initial_estimate,
			approved_value = :approved_value,
			acv = :acv,
			depreciation = :depreciation,
			deductible = :deductible,
			supplement_value = :supplement_value,
			supplement_count = :supplement_count,
			total_paid = :total_paid,
			adjuster_name = :adjuster_name,
			adjuster_phone = :adjuster_phone,
			adjuster_email = :adjuster_email,
			adjuster_company = :adjuster_company,
			carrier_last_sync = :carrier_last_sync,
			version = :version + 1,
			updated_at = :updated_at
		WHERE id = :id AND version = :version
	`
	result, err := tx.NamedExecContext(ctx, query, claim)
	if err != nil {
		return fmt.Errorf("failed to update claim: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: claim %s at version %d", models.ErrVersionConflict, claim.ID, claim.Version)
	}

	for _, ev := range events {
		if err := insertHistoryTx(ctx, tx, ev); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit claim update: %w", err)
	}

	claim.Version++
	claim.StatusHistory = append(claim.StatusHistory, events...)
	return nil
}

func insertHistoryTx(ctx context.Context, tx *sqlx.Tx, ev models.StatusEvent) error {
	query := `
		INSERT INTO claim_status_history (id, claim_id, status, note, actor, created_at)
		VALUES (:id, :claim_id, :status, :note, :actor, :created_at)
	`
	if _, err := tx.NamedExecContext(ctx, query, ev); err != nil {
		return fmt.Errorf("failed to append history event: %w", err)
	}
	return nil
}

// TouchLastSync records a sync attempt timestamp without bumping the version,
// so staleness stays observable even when the sync itself failed.
func (r *ClaimRepository) TouchLastSync(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE claims SET carrier_last_sync = $1, updated_at = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, at, id); err != nil {
		return fmt.Errorf("failed to update carrier_last_sync: %w", err)
	}
	return nil
}

// Delete hard-deletes a claim and its history.
func (r *ClaimRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM claim_status_history WHERE claim_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete claim history: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM claims WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete claim: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", models.ErrClaimNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit claim delete: %w", err)
	}
	return nil
}

// CountsByStatus feeds the dashboard cards.
func (r *ClaimRepository) CountsByStatus(ctx context.Context) (models.ClaimStatusCounts, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT status, COUNT(*) FROM claims GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count claims by status: %w", err)
	}
	defer rows.Close()

	counts := make(models.ClaimStatusCounts)
	for rows.Next() {
		var status models.ClaimStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
