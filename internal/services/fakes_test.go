package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"claims-service/internal/carrier"
	"claims-service/internal/models"

	"github.com/google/uuid"
)

// ============================================================================
// TEST FAKES
// ============================================================================

// memClaimStore is an in-memory ClaimStore mirroring the repository's
// version-check semantics.
type memClaimStore struct {
	mu     sync.Mutex
	claims map[uuid.UUID]*models.Claim

	lastSyncTouches int
}

func newMemClaimStore(claims ...*models.Claim) *memClaimStore {
	s := &memClaimStore{claims: make(map[uuid.UUID]*models.Claim)}
	for _, c := range claims {
		s.claims[c.ID] = c.Clone()
	}
	return s
}

func (s *memClaimStore) GetByID(_ context.Context, id uuid.UUID) (*models.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.claims[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrClaimNotFound, id)
	}
	return c.Clone(), nil
}

func (s *memClaimStore) GetByCustomerID(_ context.Context, customerID uuid.UUID) ([]models.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Claim
	for _, c := range s.claims {
		if c.CustomerID == customerID {
			out = append(out, *c.Clone())
		}
	}
	return out, nil
}

func (s *memClaimStore) GetAll(_ context.Context, filters map[string]interface{}) ([]models.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Claim
	for _, c := range s.claims {
		if status, ok := filters["status"].(models.ClaimStatus); ok && c.Status != status {
			continue
		}
		if carrierSlug, ok := filters["carrier"].(string); ok && c.Carrier != carrierSlug {
			continue
		}
		out = append(out, *c.Clone())
	}
	return out, nil
}

func (s *memClaimStore) GetSyncable(_ context.Context) ([]models.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Claim
	for _, c := range s.claims {
		if c.FiledWithCarrier && c.CarrierClaimID != nil && !c.Status.IsTerminal() {
			out = append(out, *c.Clone())
		}
	}
	return out, nil
}

func (s *memClaimStore) Create(_ context.Context, claim *models.Claim, initial models.StatusEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := claim.Clone()
	stored.StatusHistory = []models.StatusEvent{initial}
	s.claims[claim.ID] = stored
	return nil
}

func (s *memClaimStore) UpdateWithHistory(_ context.Context, claim *models.Claim, events ...models.StatusEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.claims[claim.ID]
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrClaimNotFound, claim.ID)
	}
	if current.Version != claim.Version {
		return fmt.Errorf("%w: claim %s at version %d", models.ErrVersionConflict, claim.ID, claim.Version)
	}

	stored := claim.Clone()
	stored.Version++
	stored.UpdatedAt = time.Now()
	stored.StatusHistory = append(append([]models.StatusEvent{}, current.StatusHistory...), events...)
	s.claims[claim.ID] = stored

	claim.Version++
	claim.StatusHistory = append(claim.StatusHistory, events...)
	return nil
}

func (s *memClaimStore) TouchLastSync(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.claims[id]
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrClaimNotFound, id)
	}
	c.CarrierLastSync = &at
	s.lastSyncTouches++
	return nil
}

func (s *memClaimStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claims[id]; !ok {
		return fmt.Errorf("%w: %s", models.ErrClaimNotFound, id)
	}
	delete(s.claims, id)
	return nil
}

func (s *memClaimStore) CountsByStatus(_ context.Context) (models.ClaimStatusCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(models.ClaimStatusCounts)
	for _, c := range s.claims {
		counts[c.Status]++
	}
	return counts, nil
}

// stored returns the persisted state of a claim, bypassing clone semantics.
func (s *memClaimStore) stored(id uuid.UUID) *models.Claim {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claims[id]
}

// memCustomerStore holds a fixed customer set.
type memCustomerStore struct {
	customers map[uuid.UUID]*models.Customer
}

func newMemCustomerStore(customers ...*models.Customer) *memCustomerStore {
	s := &memCustomerStore{customers: make(map[uuid.UUID]*models.Customer)}
	for _, c := range customers {
		s.customers[c.ID] = c
	}
	return s
}

func (s *memCustomerStore) GetByID(_ context.Context, id uuid.UUID) (*models.Customer, error) {
	c, ok := s.customers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrCustomerNotFound, id)
	}
	return c, nil
}

// fakeAdapter is a scriptable carrier adapter that counts calls, so tests can
// assert the capability gate prevented any carrier contact.
type fakeAdapter struct {
	name string

	fileResult *carrier.FilingResult
	fileErr    error
	fileCalls  int

	snapshot   *carrier.StatusSnapshot
	fetchErr   error
	fetchCalls int
}

func (a *fakeAdapter) Name() string { return a.name }

func (a *fakeAdapter) FileClaim(_ context.Context, _ carrier.FilingRequest) (*carrier.FilingResult, error) {
	a.fileCalls++
	if a.fileErr != nil {
		return nil, a.fileErr
	}
	return a.fileResult, nil
}

func (a *fakeAdapter) FetchStatus(_ context.Context, _ string) (*carrier.StatusSnapshot, error) {
	a.fetchCalls++
	if a.fetchErr != nil {
		return nil, a.fetchErr
	}
	return a.snapshot, nil
}

// ============================================================================
// TEST FIXTURES
// ============================================================================

func ptrInt64(v int64) *int64    { return &v }
func ptrString(v string) *string { return &v }

func newTestClaim(status models.ClaimStatus) *models.Claim {
	now := time.Now()
	return &models.Claim{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		Carrier:    "meridian-mutual",
		ClaimType:  models.ClaimTypeRoof,
		Status:     status,
		DateOfLoss: now.AddDate(0, 0, -14),
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func newFiledTestClaim() *models.Claim {
	claim := newTestClaim(models.ClaimFiled)
	claim.CarrierClaimID = ptrString("MER-2026-000123")
	claim.ClaimNumber = ptrString("CLM-1001")
	claim.FiledWithCarrier = true
	return claim
}

func testRegistry(adapter carrier.Adapter, supportsFiling, supportsSync bool) *carrier.Registry {
	registry := carrier.NewRegistry()
	if err := registry.Register(carrier.Capability{
		Slug:                 "meridian-mutual",
		DisplayName:          "Meridian Mutual",
		SupportsDirectFiling: supportsFiling,
		SupportsStatusSync:   supportsSync,
	}, adapter); err != nil {
		panic(err)
	}
	if err := registry.Register(carrier.Capability{
		Slug:        "heartland-underwriters",
		DisplayName: "Heartland Underwriters",
	}, nil); err != nil {
		panic(err)
	}
	return registry
}

func validFilingRequest() models.FileClaimRequest {
	return models.FileClaimRequest{
		PolicyNumber:    "HO-445566",
		CauseOfLoss:     models.CauseHail,
		LossDescription: "Hail damage across south-facing roof slope",
		DamageAreas: []models.DamageArea{
			{DamageType: "roof", Severity: models.SeveritySevere},
		},
	}
}
