package company

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	store map[uuid.UUID]*Company
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[uuid.UUID]*Company)}
}

func (m *mockRepo) Create(_ context.Context, c *Company) error {
	c.ID = uuid.New()
	m.store[c.ID] = c
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Company, error) {
	c, ok := m.store[id]
	if !ok || c.DeletedAt != nil {
		return nil, ErrNotFound
	}
	return c, nil
}

func (m *mockRepo) GetByCode(_ context.Context, code string) (*Company, error) {
	for _, c := range m.store {
		if c.Code == code && c.DeletedAt == nil {
			return c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) GetByTaxNumber(_ context.Context, taxNumber string) (*Company, error) {
	for _, c := range m.store {
		if c.TaxNumber != nil && *c.TaxNumber == taxNumber && c.DeletedAt == nil {
			return c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) List(_ context.Context, f Filters, _, _ int) ([]*Company, int, error) {
	var items []*Company
	for _, c := range m.store {
		if c.DeletedAt != nil {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		items = append(items, c)
	}
	return items, len(items), nil
}

func (m *mockRepo) Update(_ context.Context, id uuid.UUID, in UpdateInput, updatedBy uuid.UUID) error {
	c, ok := m.store[id]
	if !ok || c.DeletedAt != nil {
		return ErrNotFound
	}
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.TaxNumber != nil {
		c.TaxNumber = in.TaxNumber
	}
	if in.Status != nil {
		c.Status = *in.Status
	}
	c.UpdatedBy = &updatedBy
	return nil
}

func (m *mockRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	c, ok := m.store[id]
	if !ok || c.DeletedAt != nil {
		return ErrNotFound
	}
	now := time.Now()
	c.DeletedAt = &now
	return nil
}

func (m *mockRepo) Restore(_ context.Context, id uuid.UUID) error {
	c, ok := m.store[id]
	if !ok || c.DeletedAt == nil {
		return ErrNotFound
	}
	c.DeletedAt = nil
	return nil
}

func (m *mockRepo) HardDelete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *mockRepo) ListByServiceLevel(_ context.Context, level string) ([]*Company, error) {
	var items []*Company
	for _, c := range m.store {
		if c.ServiceLevel != nil && *c.ServiceLevel == level && c.DeletedAt == nil {
			items = append(items, c)
		}
	}
	return items, nil
}

func (m *mockRepo) ExpiringLicenses(_ context.Context, _ int) ([]*Company, error) {
	return nil, nil
}

func (m *mockRepo) ExpiringContracts(_ context.Context, _ int) ([]*Company, error) {
	return nil, nil
}

func (m *mockRepo) Statistics(_ context.Context) (*Statistics, error) {
	stats := &Statistics{StatusCount: make(map[string]int)}
	for _, c := range m.store {
		if c.DeletedAt != nil {
			continue
		}
		stats.Total++
		stats.StatusCount[c.Status]++
		if c.Status == StatusActive {
			stats.ActiveCount++
		}
	}
	return stats, nil
}

func createAcme(t *testing.T, svc *Service) *Company {
	t.Helper()
	c, err := svc.Create(context.Background(), CreateInput{
		Title: "Acme Teleradiology Inc.",
		Name:  "Acme",
		Code:  "ACME",
	}, uuid.New())
	if err != nil {
		t.Fatalf("create company: %v", err)
	}
	return c
}

func TestCreate_Defaults(t *testing.T) {
	svc := NewService(newMockRepo())
	c := createAcme(t, svc)

	if c.Status != StatusPending {
		t.Errorf("status = %q, want %q", c.Status, StatusPending)
	}
	if c.Currency != "TRY" {
		t.Errorf("currency = %q, want TRY", c.Currency)
	}
	if c.Timezone != "Europe/Istanbul" {
		t.Errorf("timezone = %q", c.Timezone)
	}
	if c.CreatedBy == nil {
		t.Error("created_by not stamped")
	}
}

func TestCreate_MissingFields(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.Create(context.Background(), CreateInput{Name: "Acme"}, uuid.New())
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestCreate_DuplicateCode(t *testing.T) {
	svc := NewService(newMockRepo())
	createAcme(t, svc)

	_, err := svc.Create(context.Background(), CreateInput{
		Title: "Other", Name: "Other", Code: "ACME",
	}, uuid.New())
	if !errors.Is(err, ErrDuplicateCode) {
		t.Fatalf("err = %v, want ErrDuplicateCode", err)
	}
}

func TestCreate_DuplicateTaxNumber(t *testing.T) {
	svc := NewService(newMockRepo())
	tax := "1234567890"
	_, err := svc.Create(context.Background(), CreateInput{
		Title: "A", Name: "A", Code: "A1", TaxNumber: &tax,
	}, uuid.New())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Create(context.Background(), CreateInput{
		Title: "B", Name: "B", Code: "B1", TaxNumber: &tax,
	}, uuid.New())
	if !errors.Is(err, ErrDuplicateTaxNumber) {
		t.Fatalf("err = %v, want ErrDuplicateTaxNumber", err)
	}
}

func TestCreate_InvalidDate(t *testing.T) {
	svc := NewService(newMockRepo())
	bad := "31-12-2026"
	_, err := svc.Create(context.Background(), CreateInput{
		Title: "A", Name: "A", Code: "A1", LicenseExpiryDate: &bad,
	}, uuid.New())
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestUpdate_TaxNumberConflict(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	tax := "1234567890"
	_, err := svc.Create(context.Background(), CreateInput{
		Title: "A", Name: "A", Code: "A1", TaxNumber: &tax,
	}, uuid.New())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b := createAcme(t, svc)

	_, err = svc.Update(context.Background(), b.ID, UpdateInput{TaxNumber: &tax}, uuid.New())
	if !errors.Is(err, ErrDuplicateTaxNumber) {
		t.Fatalf("err = %v, want ErrDuplicateTaxNumber", err)
	}

	// Re-submitting the company's own tax number is not a conflict.
	a, _ := repo.GetByTaxNumber(context.Background(), tax)
	_, err = svc.Update(context.Background(), a.ID, UpdateInput{TaxNumber: &tax}, uuid.New())
	if err != nil {
		t.Fatalf("update with own tax number: %v", err)
	}
}

func TestSoftDeleteRestoreLifecycle(t *testing.T) {
	svc := NewService(newMockRepo())
	c := createAcme(t, svc)
	ctx := context.Background()

	if err := svc.Delete(ctx, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete err = %v, want ErrNotFound", err)
	}

	restored, err := svc.Restore(ctx, c.ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.DeletedAt != nil {
		t.Error("restored company still marked deleted")
	}

	if err := svc.PermanentlyDelete(ctx, c.ID); err != nil {
		t.Fatalf("permanent delete: %v", err)
	}
	if _, err := svc.Get(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after permanent delete err = %v", err)
	}
}

func TestExpiringWindowDefaults(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	// Zero and negative windows fall back to 30 days.
	if _, err := svc.ExpiringLicenses(context.Background(), 0); err != nil {
		t.Fatalf("expiring licenses: %v", err)
	}
	if _, err := svc.ExpiringContracts(context.Background(), -5); err != nil {
		t.Fatalf("expiring contracts: %v", err)
	}
}

func TestStatistics(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	createAcme(t, svc)
	active := StatusActive
	c := createAcme2(t, svc, "BETA")
	if _, err := svc.Update(context.Background(), c.ID, UpdateInput{Status: &active}, uuid.New()); err != nil {
		t.Fatalf("update: %v", err)
	}

	stats, err := svc.Statistics(context.Background())
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.Total != 2 {
		t.Errorf("total = %d, want 2", stats.Total)
	}
	if stats.ActiveCount != 1 {
		t.Errorf("active = %d, want 1", stats.ActiveCount)
	}
}

func createAcme2(t *testing.T, svc *Service, code string) *Company {
	t.Helper()
	c, err := svc.Create(context.Background(), CreateInput{
		Title: "Beta Imaging", Name: "Beta", Code: code,
	}, uuid.New())
	if err != nil {
		t.Fatalf("create company: %v", err)
	}
	return c
}
