package services

import (
	"context"
	"sync"
	"time"

	"claims-service/internal/models"

	"github.com/google/uuid"
)

// ClaimStore is the persistence boundary for claims. Implemented by
// repository.ClaimRepository; tests substitute in-memory fakes.
type ClaimStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error)
	GetByCustomerID(ctx context.Context, customerID uuid.UUID) ([]models.Claim, error)
	GetAll(ctx context.Context, filters map[string]interface{}) ([]models.Claim, error)
	GetSyncable(ctx context.Context) ([]models.Claim, error)
	Create(ctx context.Context, claim *models.Claim, initial models.StatusEvent) error
	UpdateWithHistory(ctx context.Context, claim *models.Claim, events ...models.StatusEvent) error
	TouchLastSync(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountsByStatus(ctx context.Context) (models.ClaimStatusCounts, error)
}

// CustomerStore is the read-only customer lookup for pre-filling filings.
type CustomerStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

// PhotoResolver turns stored photo ids into URLs a carrier can fetch.
type PhotoResolver interface {
	PresignedPhotoURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// ClaimCache is the optional read cache in front of the store.
type ClaimCache interface {
	GetClaim(ctx context.Context, id uuid.UUID) (*models.Claim, error)
	SetClaim(ctx context.Context, claim *models.Claim) error
	InvalidateClaim(ctx context.Context, id uuid.UUID) error
}

// ClaimLocker serializes mutating operations per claim id. Operations on
// different claims proceed in parallel; there is no global lock. Entries are
// refcounted so the map does not grow with claim count.
type ClaimLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewClaimLocker() *ClaimLocker {
	return &ClaimLocker{locks: make(map[uuid.UUID]*lockEntry)}
}

func (l *ClaimLocker) Lock(id uuid.UUID) {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &lockEntry{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

func (l *ClaimLocker) Unlock(id uuid.UUID) {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		l.mu.Unlock()
		return
	}
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, id)
	}
	l.mu.Unlock()

	entry.mu.Unlock()
}
