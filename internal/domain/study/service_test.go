package study

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	store map[uuid.UUID]*Study
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[uuid.UUID]*Study)}
}

func (m *mockRepo) Create(_ context.Context, s *Study) error {
	s.ID = uuid.New()
	m.store[s.ID] = s
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Study, error) {
	s, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *mockRepo) GetByIDWithDetails(ctx context.Context, id uuid.UUID) (*WithDetails, error) {
	s, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &WithDetails{Study: *s}, nil
}

func (m *mockRepo) GetByStudyInstanceUID(_ context.Context, uid string) (*Study, error) {
	for _, s := range m.store {
		if s.StudyInstanceUID == uid {
			return s, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) List(_ context.Context, f Filters, _, _ int) ([]*WithDetails, int, error) {
	var items []*WithDetails
	for _, s := range m.store {
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		if f.Modality != "" && s.Modality != f.Modality {
			continue
		}
		items = append(items, &WithDetails{Study: *s})
	}
	return items, len(items), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID string) ([]*WithDetails, error) {
	var items []*WithDetails
	for _, s := range m.store {
		if s.PatientID == patientID {
			items = append(items, &WithDetails{Study: *s})
		}
	}
	return items, nil
}

func (m *mockRepo) ListByRadiologist(_ context.Context, radiologistID uuid.UUID) ([]*WithDetails, error) {
	var items []*WithDetails
	for _, s := range m.store {
		if s.AssignedTo != nil && *s.AssignedTo == radiologistID {
			items = append(items, &WithDetails{Study: *s})
		}
	}
	return items, nil
}

func (m *mockRepo) ListUrgentOpen(_ context.Context) ([]*WithDetails, error) {
	var items []*WithDetails
	for _, s := range m.store {
		if !s.IsUrgent || s.Status == StatusCompleted || s.Status == StatusCancelled {
			continue
		}
		items = append(items, &WithDetails{Study: *s})
	}
	return items, nil
}

func (m *mockRepo) Update(_ context.Context, id uuid.UUID, in UpdateInput) error {
	s, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	if in.PatientName != nil {
		s.PatientName = *in.PatientName
	}
	if in.Priority != nil {
		s.Priority = *in.Priority
	}
	if in.IsUrgent != nil {
		s.IsUrgent = *in.IsUrgent
	}
	return nil
}

func (m *mockRepo) Assign(_ context.Context, id, radiologistID uuid.UUID) error {
	s, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	s.AssignedTo = &radiologistID
	s.Status = StatusAssigned
	return nil
}

func (m *mockRepo) SetStatus(_ context.Context, id uuid.UUID, status string) error {
	s, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	s.Status = status
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
	stats := &Statistics{}
	for _, s := range m.store {
		stats.Total++
		switch s.Status {
		case StatusPending:
			stats.Pending++
		case StatusAssigned:
			stats.Assigned++
		case StatusInProgress:
			stats.InProgress++
		case StatusReported:
			stats.Reported++
		case StatusCompleted:
			stats.Completed++
		case StatusCancelled:
			stats.Cancelled++
		}
		if s.IsUrgent {
			stats.Urgent++
		}
	}
	return stats, nil
}

func newStudyInput(uid string) CreateInput {
	return CreateInput{
		StudyInstanceUID: uid,
		PatientID:        "PAT-001",
		PatientName:      "DOE^JANE",
		StudyDate:        "2026-02-14",
		Modality:         "CT",
	}
}

func TestCreate_Defaults(t *testing.T) {
	svc := NewService(newMockRepo())

	st, err := svc.Create(context.Background(), newStudyInput("1.2.840.1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if st.Status != StatusPending {
		t.Errorf("status = %q, want %q", st.Status, StatusPending)
	}
	if st.Priority != PriorityRoutine {
		t.Errorf("priority = %q, want %q", st.Priority, PriorityRoutine)
	}
	if st.IsUrgent {
		t.Error("new study should not be urgent by default")
	}
}

func TestCreate_DuplicateUID(t *testing.T) {
	svc := NewService(newMockRepo())

	if _, err := svc.Create(context.Background(), newStudyInput("1.2.840.1")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(context.Background(), newStudyInput("1.2.840.1"))
	if !errors.Is(err, ErrDuplicateUID) {
		t.Fatalf("err = %v, want ErrDuplicateUID", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMockRepo())

	cases := map[string]CreateInput{
		"missing uid": func() CreateInput {
			in := newStudyInput("")
			return in
		}(),
		"missing patient id": func() CreateInput {
			in := newStudyInput("1.2.840.2")
			in.PatientID = ""
			return in
		}(),
		"missing modality": func() CreateInput {
			in := newStudyInput("1.2.840.3")
			in.Modality = ""
			return in
		}(),
		"bad study date": func() CreateInput {
			in := newStudyInput("1.2.840.4")
			in.StudyDate = "14/02/2026"
			return in
		}(),
		"bad priority": func() CreateInput {
			in := newStudyInput("1.2.840.5")
			in.Priority = "whenever"
			return in
		}(),
	}
	for name, in := range cases {
		if _, err := svc.Create(context.Background(), in); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: err = %v, want ErrValidation", name, err)
		}
	}
}

func TestAssign(t *testing.T) {
	svc := NewService(newMockRepo())
	st, err := svc.Create(context.Background(), newStudyInput("1.2.840.1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	radiologist := uuid.New()

	assigned, err := svc.Assign(context.Background(), st.ID, radiologist)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.Status != StatusAssigned {
		t.Errorf("status = %q, want %q", assigned.Status, StatusAssigned)
	}
	if assigned.AssignedTo == nil || *assigned.AssignedTo != radiologist {
		t.Errorf("assigned_to = %v, want %v", assigned.AssignedTo, radiologist)
	}

	// Reassignment of an already assigned study is allowed.
	other := uuid.New()
	reassigned, err := svc.Assign(context.Background(), st.ID, other)
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if reassigned.AssignedTo == nil || *reassigned.AssignedTo != other {
		t.Errorf("assigned_to = %v, want %v", reassigned.AssignedTo, other)
	}
}

func TestAssign_BlockedMidRead(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	st, err := svc.Create(context.Background(), newStudyInput("1.2.840.1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	repo.store[st.ID].Status = StatusInProgress

	_, err = svc.Assign(context.Background(), st.ID, uuid.New())
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestAssign_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.Assign(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSetStatus_FullLifecycle(t *testing.T) {
	svc := NewService(newMockRepo())
	st, err := svc.Create(context.Background(), newStudyInput("1.2.840.1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Assign(context.Background(), st.ID, uuid.New()); err != nil {
		t.Fatalf("assign: %v", err)
	}

	for _, status := range []string{StatusInProgress, StatusReported, StatusCompleted} {
		cur, err := svc.SetStatus(context.Background(), st.ID, status)
		if err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
		if cur.Status != status {
			t.Fatalf("status = %q, want %q", cur.Status, status)
		}
	}
}

func TestSetStatus_InvalidTransitions(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	st, err := svc.Create(context.Background(), newStudyInput("1.2.840.1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// pending cannot jump straight to reported.
	if _, err := svc.SetStatus(context.Background(), st.ID, StatusReported); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("pending->reported: err = %v, want ErrInvalidTransition", err)
	}

	// completed is terminal.
	repo.store[st.ID].Status = StatusCompleted
	if _, err := svc.SetStatus(context.Background(), st.ID, StatusInProgress); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("completed->in_progress: err = %v, want ErrInvalidTransition", err)
	}

	// cancelled is terminal.
	repo.store[st.ID].Status = StatusCancelled
	if _, err := svc.SetStatus(context.Background(), st.ID, StatusPending); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("cancelled->pending: err = %v, want ErrInvalidTransition", err)
	}
}

func TestSetStatus_UnknownStatus(t *testing.T) {
	svc := NewService(newMockRepo())
	st, err := svc.Create(context.Background(), newStudyInput("1.2.840.1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SetStatus(context.Background(), st.ID, "archived"); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestSetStatus_ReportedBackToInProgress(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	st, err := svc.Create(context.Background(), newStudyInput("1.2.840.1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	repo.store[st.ID].Status = StatusReported

	cur, err := svc.SetStatus(context.Background(), st.ID, StatusInProgress)
	if err != nil {
		t.Fatalf("reported->in_progress: %v", err)
	}
	if cur.Status != StatusInProgress {
		t.Fatalf("status = %q, want %q", cur.Status, StatusInProgress)
	}
}

func TestPatientHistory(t *testing.T) {
	svc := NewService(newMockRepo())
	for _, uid := range []string{"1.2.840.1", "1.2.840.2"} {
		if _, err := svc.Create(context.Background(), newStudyInput(uid)); err != nil {
			t.Fatalf("create %s: %v", uid, err)
		}
	}
	other := newStudyInput("1.2.840.3")
	other.PatientID = "PAT-002"
	if _, err := svc.Create(context.Background(), other); err != nil {
		t.Fatalf("create other: %v", err)
	}

	items, err := svc.PatientHistory(context.Background(), "PAT-001")
	if err != nil {
		t.Fatalf("patient history: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}

	if _, err := svc.PatientHistory(context.Background(), ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty patient id: err = %v, want ErrValidation", err)
	}
}

func TestUrgentOpen_ExcludesClosed(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	open := newStudyInput("1.2.840.1")
	urgent := true
	open.IsUrgent = &urgent
	created, err := svc.Create(context.Background(), open)
	if err != nil {
		t.Fatalf("create open: %v", err)
	}

	closed := newStudyInput("1.2.840.2")
	closed.IsUrgent = &urgent
	closedStudy, err := svc.Create(context.Background(), closed)
	if err != nil {
		t.Fatalf("create closed: %v", err)
	}
	repo.store[closedStudy.ID].Status = StatusCancelled

	items, err := svc.UrgentOpen(context.Background())
	if err != nil {
		t.Fatalf("urgent open: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if items[0].ID != created.ID {
		t.Errorf("got study %v, want %v", items[0].ID, created.ID)
	}
}

func TestStatistics(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	for i, uid := range []string{"1.2.840.1", "1.2.840.2", "1.2.840.3"} {
		st, err := svc.Create(context.Background(), newStudyInput(uid))
		if err != nil {
			t.Fatalf("create %s: %v", uid, err)
		}
		if i == 0 {
			repo.store[st.ID].Status = StatusCompleted
		}
	}

	stats, err := svc.Statistics(context.Background())
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("total = %d, want 3", stats.Total)
	}
	if stats.Pending != 2 {
		t.Errorf("pending = %d, want 2", stats.Pending)
	}
	if stats.Completed != 1 {
		t.Errorf("completed = %d, want 1", stats.Completed)
	}
}
