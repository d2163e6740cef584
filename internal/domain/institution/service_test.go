package institution

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	store map[uuid.UUID]*Institution
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[uuid.UUID]*Institution)}
}

func (m *mockRepo) Create(_ context.Context, inst *Institution) error {
	inst.ID = uuid.New()
	m.store[inst.ID] = inst
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Institution, error) {
	inst, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	return inst, nil
}

func (m *mockRepo) GetByCode(_ context.Context, code string) (*Institution, error) {
	for _, inst := range m.store {
		if inst.Code == code {
			return inst, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) List(_ context.Context, f Filters, _, _ int) ([]*Institution, int, error) {
	var items []*Institution
	for _, inst := range m.store {
		if f.Type != "" && inst.Type != f.Type {
			continue
		}
		if f.IsActive != nil && inst.IsActive != *f.IsActive {
			continue
		}
		items = append(items, inst)
	}
	return items, len(items), nil
}

func (m *mockRepo) ListByType(_ context.Context, instType string) ([]*Institution, error) {
	var items []*Institution
	for _, inst := range m.store {
		if inst.Type == instType && inst.IsActive {
			items = append(items, inst)
		}
	}
	return items, nil
}

func (m *mockRepo) Update(_ context.Context, id uuid.UUID, in UpdateInput) error {
	inst, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	if in.Name != nil {
		inst.Name = *in.Name
	}
	if in.IsActive != nil {
		inst.IsActive = *in.IsActive
	}
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *mockRepo) Statistics(_ context.Context, _ uuid.UUID) (*Statistics, error) {
	return &Statistics{}, nil
}

func TestCreate(t *testing.T) {
	svc := NewService(newMockRepo())
	inst, err := svc.Create(context.Background(), CreateInput{
		Name: "City Hospital",
		Type: TypeHospital,
	}, uuid.New())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(inst.Code, "INST-") {
		t.Errorf("code = %q, want INST- prefix", inst.Code)
	}
	if !inst.IsActive {
		t.Error("new institution not active")
	}
	if inst.Country != "Türkiye" {
		t.Errorf("country = %q", inst.Country)
	}
}

func TestCreate_Invalid(t *testing.T) {
	svc := NewService(newMockRepo())
	if _, err := svc.Create(context.Background(), CreateInput{Type: TypeClinic}, uuid.New()); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing name err = %v, want ErrValidation", err)
	}
	if _, err := svc.Create(context.Background(), CreateInput{Name: "X", Type: "garage"}, uuid.New()); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad type err = %v, want ErrValidation", err)
	}
}

func TestListByType(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()
	if _, err := svc.Create(ctx, CreateInput{Name: "A", Type: TypeHospital}, uuid.New()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Name: "B", Type: TypeClinic}, uuid.New()); err != nil {
		t.Fatalf("create: %v", err)
	}

	hospitals, err := svc.ListByType(ctx, TypeHospital)
	if err != nil {
		t.Fatalf("list by type: %v", err)
	}
	if len(hospitals) != 1 {
		t.Errorf("hospitals = %d, want 1", len(hospitals))
	}

	if _, err := svc.ListByType(ctx, "garage"); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()
	inst, err := svc.Create(ctx, CreateInput{Name: "A", Type: TypeHospital}, uuid.New())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Renamed"
	updated, err := svc.Update(ctx, inst.ID, UpdateInput{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Errorf("name = %q", updated.Name)
	}

	if err := svc.Delete(ctx, inst.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, inst.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete err = %v", err)
	}
}

func TestStatistics_UnknownInstitution(t *testing.T) {
	svc := NewService(newMockRepo())
	if _, err := svc.Statistics(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
