package template

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	store map[uuid.UUID]*Template
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[uuid.UUID]*Template)}
}

func (m *mockRepo) Create(_ context.Context, t *Template) error {
	t.ID = uuid.New()
	m.store[t.ID] = t
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Template, error) {
	t, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

func (m *mockRepo) GetByIDWithCreator(ctx context.Context, id uuid.UUID) (*WithCreator, error) {
	t, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &WithCreator{Template: *t}, nil
}

func (m *mockRepo) GetByCode(_ context.Context, code string) (*Template, error) {
	for _, t := range m.store {
		if t.Code == code {
			return t, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) List(_ context.Context, f Filters, _, _ int) ([]*WithCreator, int, error) {
	var items []*WithCreator
	for _, t := range m.store {
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		if f.Modality != "" && t.Modality != f.Modality {
			continue
		}
		items = append(items, &WithCreator{Template: *t})
	}
	return items, len(items), nil
}

func (m *mockRepo) ListDefaults(_ context.Context) ([]*WithCreator, error) {
	var items []*WithCreator
	for _, t := range m.store {
		if t.IsDefault && t.IsActive {
			items = append(items, &WithCreator{Template: *t})
		}
	}
	return items, nil
}

func (m *mockRepo) ListMostUsed(_ context.Context, limit int) ([]*WithCreator, error) {
	var items []*WithCreator
	for _, t := range m.store {
		if t.IsActive {
			items = append(items, &WithCreator{Template: *t})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].UsageCount > items[j].UsageCount })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *mockRepo) ListRecent(_ context.Context, limit int) ([]*WithCreator, error) {
	return m.ListMostUsed(context.Background(), limit)
}

func (m *mockRepo) Update(_ context.Context, id uuid.UUID, in UpdateInput) error {
	t, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	if in.Name != nil {
		t.Name = *in.Name
	}
	if in.Code != nil {
		t.Code = *in.Code
	}
	if in.Content != nil {
		t.Content = *in.Content
	}
	return nil
}

func (m *mockRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	t, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	t.IsActive = active
	return nil
}

func (m *mockRepo) SetDefault(_ context.Context, id uuid.UUID) error {
	target, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	for _, t := range m.store {
		if t.Modality == target.Modality && t.Category == target.Category {
			t.IsDefault = t.ID == id
		}
	}
	return nil
}

func (m *mockRepo) UnsetDefault(_ context.Context, id uuid.UUID) error {
	t, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	t.IsDefault = false
	return nil
}

func (m *mockRepo) RecordUsage(_ context.Context, id uuid.UUID) error {
	t, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	t.UsageCount++
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
		ByCategory: make(map[string]int),
		ByModality: make(map[string]int),
	}
	for _, t := range m.store {
		stats.Total++
		stats.TotalUsage += t.UsageCount
		stats.ByCategory[t.Category]++
		stats.ByModality[t.Modality]++
		if t.IsActive {
			stats.Active++
		}
	}
	return stats, nil
}

func newInput(code string) CreateInput {
	return CreateInput{
		Name:     "Normal chest CT",
		Code:     code,
		Modality: "CT",
		Content:  "Lungs are clear. No pleural effusion.",
	}
}

func TestCreate_Defaults(t *testing.T) {
	svc := NewService(newMockRepo())

	tpl, err := svc.Create(context.Background(), newInput("TPL-001"), uuid.New())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tpl.Category != CategoryNormal {
		t.Errorf("category = %q, want %q", tpl.Category, CategoryNormal)
	}
	if tpl.Language != DefaultLanguage {
		t.Errorf("language = %q, want %q", tpl.Language, DefaultLanguage)
	}
	if !tpl.IsActive {
		t.Error("new template should be active")
	}
	if tpl.CreatedBy == nil {
		t.Error("created_by should be set")
	}
}

func TestCreate_DuplicateCode(t *testing.T) {
	svc := NewService(newMockRepo())

	if _, err := svc.Create(context.Background(), newInput("TPL-001"), uuid.New()); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(context.Background(), newInput("TPL-001"), uuid.New())
	if !errors.Is(err, ErrDuplicateCode) {
		t.Fatalf("err = %v, want ErrDuplicateCode", err)
	}
}

func TestCreate_InvalidCategory(t *testing.T) {
	svc := NewService(newMockRepo())

	in := newInput("TPL-001")
	in.Category = "experimental"
	if _, err := svc.Create(context.Background(), in, uuid.New()); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestUpdate_CodeConflict(t *testing.T) {
	svc := NewService(newMockRepo())

	first, err := svc.Create(context.Background(), newInput("TPL-001"), uuid.New())
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if _, err := svc.Create(context.Background(), newInput("TPL-002"), uuid.New()); err != nil {
		t.Fatalf("create second: %v", err)
	}

	taken := "TPL-002"
	if _, err := svc.Update(context.Background(), first.ID, UpdateInput{Code: &taken}); !errors.Is(err, ErrDuplicateCode) {
		t.Fatalf("err = %v, want ErrDuplicateCode", err)
	}

	// Re-submitting the template's own code is not a conflict.
	own := "TPL-001"
	if _, err := svc.Update(context.Background(), first.ID, UpdateInput{Code: &own}); err != nil {
		t.Fatalf("update with own code: %v", err)
	}
}

func TestSetDefault_DemotesPrevious(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	first, err := svc.Create(context.Background(), newInput("TPL-001"), uuid.New())
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.Create(context.Background(), newInput("TPL-002"), uuid.New())
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	if _, err := svc.SetDefault(context.Background(), first.ID); err != nil {
		t.Fatalf("set first default: %v", err)
	}
	if _, err := svc.SetDefault(context.Background(), second.ID); err != nil {
		t.Fatalf("set second default: %v", err)
	}

	if repo.store[first.ID].IsDefault {
		t.Error("first template should no longer be default")
	}
	if !repo.store[second.ID].IsDefault {
		t.Error("second template should be default")
	}
}

func TestRecordUsage(t *testing.T) {
	svc := NewService(newMockRepo())

	tpl, err := svc.Create(context.Background(), newInput("TPL-001"), uuid.New())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 3; i++ {
		if tpl, err = svc.RecordUsage(context.Background(), tpl.ID); err != nil {
			t.Fatalf("record usage: %v", err)
		}
	}
	if tpl.UsageCount != 3 {
		t.Fatalf("usage_count = %d, want 3", tpl.UsageCount)
	}
}

func TestActivateDeactivate(t *testing.T) {
	svc := NewService(newMockRepo())

	tpl, err := svc.Create(context.Background(), newInput("TPL-001"), uuid.New())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	tpl, err = svc.Deactivate(context.Background(), tpl.ID)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if tpl.IsActive {
		t.Error("template should be inactive")
	}
	tpl, err = svc.Activate(context.Background(), tpl.ID)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !tpl.IsActive {
		t.Error("template should be active")
	}
}

func TestStatistics(t *testing.T) {
	svc := NewService(newMockRepo())

	in := newInput("TPL-001")
	if _, err := svc.Create(context.Background(), in, uuid.New()); err != nil {
		t.Fatalf("create: %v", err)
	}
	other := newInput("TPL-002")
	other.Modality = "MR"
	other.Category = CategoryEmergency
	if _, err := svc.Create(context.Background(), other, uuid.New()); err != nil {
		t.Fatalf("create other: %v", err)
	}

	stats, err := svc.Statistics(context.Background())
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.Total != 2 || stats.Active != 2 {
		t.Errorf("total = %d, active = %d, want 2, 2", stats.Total, stats.Active)
	}
	if stats.ByModality["CT"] != 1 || stats.ByModality["MR"] != 1 {
		t.Errorf("by_modality = %v", stats.ByModality)
	}
	if stats.ByCategory[CategoryEmergency] != 1 {
		t.Errorf("by_category = %v", stats.ByCategory)
	}
}
