package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"claims-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// CustomerRepository is a read-only lookup used to pre-fill filing requests.
// Customer CRUD lives with the dashboard, not the claims engine.
type CustomerRepository struct {
	db *sqlx.DB
}

func NewCustomerRepository(db *sqlx.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	query := `
		SELECT id, name, address, policy_number, insurance_carrier
		FROM customers
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &customer, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrCustomerNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer by id: %w", err)
	}

	return &customer, nil
}
