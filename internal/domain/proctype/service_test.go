package proctype

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	store map[uuid.UUID]*ProcedureType
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[uuid.UUID]*ProcedureType)}
}

func (m *mockRepo) Create(_ context.Context, pt *ProcedureType) error {
	pt.ID = uuid.New()
	m.store[pt.ID] = pt
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*ProcedureType, error) {
	pt, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	return pt, nil
}

func (m *mockRepo) GetByIDWithCreator(ctx context.Context, id uuid.UUID) (*WithCreator, error) {
	pt, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &WithCreator{ProcedureType: *pt}, nil
}

func (m *mockRepo) GetByCode(_ context.Context, code string) (*ProcedureType, error) {
	for _, pt := range m.store {
		if pt.Code == code {
			return pt, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) List(_ context.Context, f Filters, _, _ int) ([]*WithCreator, int, error) {
	var items []*WithCreator
	for _, pt := range m.store {
		if f.Modality != "" && pt.Modality != f.Modality {
			continue
		}
		if f.Category != "" && pt.Category != f.Category {
			continue
		}
		if f.MinPrice != nil && (pt.Price == nil || *pt.Price < *f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && (pt.Price == nil || *pt.Price > *f.MaxPrice) {
			continue
		}
		items = append(items, &WithCreator{ProcedureType: *pt})
	}
	return items, len(items), nil
}

func (m *mockRepo) ListEmergency(_ context.Context) ([]*WithCreator, error) {
	var items []*WithCreator
	for _, pt := range m.store {
		if pt.IsEmergency && pt.IsActive {
			items = append(items, &WithCreator{ProcedureType: *pt})
		}
	}
	return items, nil
}

func (m *mockRepo) ListMostUsed(_ context.Context, _ int) ([]*WithCreator, error) {
	return nil, nil
}

func (m *mockRepo) Update(_ context.Context, id uuid.UUID, in UpdateInput) error {
	pt, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	if in.Code != nil {
		pt.Code = *in.Code
	}
	if in.Name != nil {
		pt.Name = *in.Name
	}
	if in.Price != nil {
		pt.Price = in.Price
	}
	return nil
}

func (m *mockRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	pt, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	pt.IsActive = active
	return nil
}

func (m *mockRepo) RecordUsage(_ context.Context, id uuid.UUID) error {
	pt, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	pt.UsageCount++
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *mockRepo) Statistics(_ context.Context) (*Statistics, error) {
	stats := &Statistics{
		ByModality: make(map[string]int),
		ByCategory: make(map[string]int),
	}
	var totalDuration int
	for _, pt := range m.store {
		stats.Total++
		totalDuration += pt.TypicalDuration
		stats.ByModality[pt.Modality]++
		stats.ByCategory[pt.Category]++
		if pt.IsEmergency {
			stats.EmergencyCount++
		}
		if pt.IsContrast {
			stats.ContrastCount++
		}
	}
	if stats.Total > 0 {
		stats.AverageDuration = float64(totalDuration) / float64(stats.Total)
	}
	return stats, nil
}

func newInput(code string) CreateInput {
	return CreateInput{
		Code:     code,
		Name:     "Beyin BT",
		Modality: "CT",
	}
}

func TestCreate_Defaults(t *testing.T) {
	svc := NewService(newMockRepo())

	pt, err := svc.Create(context.Background(), newInput("CT-HEAD"), uuid.New())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if pt.Category != CategoryDiagnostic {
		t.Errorf("category = %q, want %q", pt.Category, CategoryDiagnostic)
	}
	if pt.TypicalDuration != DefaultDurationMinutes {
		t.Errorf("typical_duration = %d, want %d", pt.TypicalDuration, DefaultDurationMinutes)
	}
	if !pt.IsActive {
		t.Error("new procedure type should be active")
	}
}

func TestCreate_DuplicateCode(t *testing.T) {
	svc := NewService(newMockRepo())

	if _, err := svc.Create(context.Background(), newInput("CT-HEAD"), uuid.New()); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(context.Background(), newInput("CT-HEAD"), uuid.New())
	if !errors.Is(err, ErrDuplicateCode) {
		t.Fatalf("err = %v, want ErrDuplicateCode", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMockRepo())

	badDose := newInput("CT-1")
	dose := "extreme"
	badDose.RadiationDose = &dose
	if _, err := svc.Create(context.Background(), badDose, uuid.New()); !errors.Is(err, ErrValidation) {
		t.Errorf("bad dose: err = %v, want ErrValidation", err)
	}

	badPrice := newInput("CT-2")
	price := -10.0
	badPrice.Price = &price
	if _, err := svc.Create(context.Background(), badPrice, uuid.New()); !errors.Is(err, ErrValidation) {
		t.Errorf("negative price: err = %v, want ErrValidation", err)
	}

	badDuration := newInput("CT-3")
	duration := 0
	badDuration.TypicalDuration = &duration
	if _, err := svc.Create(context.Background(), badDuration, uuid.New()); !errors.Is(err, ErrValidation) {
		t.Errorf("zero duration: err = %v, want ErrValidation", err)
	}

	badCategory := newInput("CT-4")
	badCategory.Category = "cosmetic"
	if _, err := svc.Create(context.Background(), badCategory, uuid.New()); !errors.Is(err, ErrValidation) {
		t.Errorf("bad category: err = %v, want ErrValidation", err)
	}
}

func TestUpdate_CodeConflict(t *testing.T) {
	svc := NewService(newMockRepo())

	first, err := svc.Create(context.Background(), newInput("CT-HEAD"), uuid.New())
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if _, err := svc.Create(context.Background(), newInput("CT-CHEST"), uuid.New()); err != nil {
		t.Fatalf("create second: %v", err)
	}

	taken := "CT-CHEST"
	if _, err := svc.Update(context.Background(), first.ID, UpdateInput{Code: &taken}); !errors.Is(err, ErrDuplicateCode) {
		t.Fatalf("err = %v, want ErrDuplicateCode", err)
	}
}

func TestRecordUsage(t *testing.T) {
	svc := NewService(newMockRepo())

	pt, err := svc.Create(context.Background(), newInput("CT-HEAD"), uuid.New())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if pt, err = svc.RecordUsage(context.Background(), pt.ID); err != nil {
		t.Fatalf("record usage: %v", err)
	}
	if pt.UsageCount != 1 {
		t.Fatalf("usage_count = %d, want 1", pt.UsageCount)
	}
}

func TestEmergencyList(t *testing.T) {
	svc := NewService(newMockRepo())

	emergency := newInput("CT-TRAUMA")
	yes := true
	emergency.IsEmergency = &yes
	if _, err := svc.Create(context.Background(), emergency, uuid.New()); err != nil {
		t.Fatalf("create emergency: %v", err)
	}
	if _, err := svc.Create(context.Background(), newInput("CT-ROUTINE"), uuid.New()); err != nil {
		t.Fatalf("create routine: %v", err)
	}

	items, err := svc.Emergency(context.Background())
	if err != nil {
		t.Fatalf("emergency: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if items[0].Code != "CT-TRAUMA" {
		t.Errorf("code = %q, want CT-TRAUMA", items[0].Code)
	}
}

func TestStatistics(t *testing.T) {
	svc := NewService(newMockRepo())

	contrast := newInput("CT-ABD-C")
	yes := true
	contrast.IsContrast = &yes
	duration := 45
	contrast.TypicalDuration = &duration
	if _, err := svc.Create(context.Background(), contrast, uuid.New()); err != nil {
		t.Fatalf("create contrast: %v", err)
	}
	mr := newInput("MR-BRAIN")
	mr.Modality = "MR"
	if _, err := svc.Create(context.Background(), mr, uuid.New()); err != nil {
		t.Fatalf("create mr: %v", err)
	}

	stats, err := svc.Statistics(context.Background())
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.Total != 2 || stats.ContrastCount != 1 {
		t.Errorf("total = %d, contrast = %d", stats.Total, stats.ContrastCount)
	}
	if stats.ByModality["CT"] != 1 || stats.ByModality["MR"] != 1 {
		t.Errorf("by_modality = %v", stats.ByModality)
	}
	want := float64(45+DefaultDurationMinutes) / 2
	if stats.AverageDuration != want {
		t.Errorf("average_duration = %v, want %v", stats.AverageDuration, want)
	}
}
