package medications

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	nextID int64
	byID   map[int64]Medication
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[int64]Medication{}}
}

func (r *testRepo) Create(_ context.Context, m Medication) (int64, error) {
	r.nextID++
	m.ID = r.nextID
	r.byID[m.ID] = m
	return m.ID, nil
}

func (r *testRepo) GetByID(_ context.Context, id int64) (Medication, error) {
	m, ok := r.byID[id]
	if !ok {
		return Medication{}, ErrNotFound
	}
	return m, nil
}

func (r *testRepo) ListByUser(_ context.Context, userID int64) ([]Medication, error) {
	out := make([]Medication, 0)
	for id := int64(1); id <= r.nextID; id++ {
		if m, ok := r.byID[id]; ok && m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *testRepo) Update(_ context.Context, m Medication) error {
	if _, ok := r.byID[m.ID]; !ok {
		return ErrNotFound
	}
	r.byID[m.ID] = m
	return nil
}

func (r *testRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) OwnerOf(_ context.Context, id int64) (int64, error) {
	m, ok := r.byID[id]
	if !ok {
		return 0, ErrNotFound
	}
	return m.UserID, nil
}

func validInput() Input {
	return Input{
		Name:      "  Losartana ",
		Dosage:    50,
		StartDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Schedules: []AdministrationSchedule{
			{Time: "08:00", DaysOfWeek: []string{"Quarta-feira", "segunda", "Monday"}},
		},
	}
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_NormalizesSchedules(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	m, err := svc.Create(context.Background(), 10, validInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if m.ID != 1 || m.UserID != 10 {
		t.Fatalf("unexpected id/user: %d/%d", m.ID, m.UserID)
	}
	if m.Name != "Losartana" {
		t.Fatalf("expected trimmed name, got %q", m.Name)
	}
	if m.CreatedAt != now || m.UpdatedAt != now {
		t.Fatalf("expected CreatedAt/UpdatedAt to be now")
	}

	days := m.Schedules[0].DaysOfWeek
	if len(days) != 2 || days[0] != "Monday" || days[1] != "Wednesday" {
		t.Fatalf("expected [Monday Wednesday], got %#v", days)
	}
}

func TestService_Create_RejectsInvalidInput(t *testing.T) {
	svc := NewService(newTestRepo())

	cases := map[string]func(in *Input){
		"empty name":    func(in *Input) { in.Name = " " },
		"zero dosage":   func(in *Input) { in.Dosage = 0 },
		"no start":      func(in *Input) { in.StartDate = time.Time{} },
		"no schedules":  func(in *Input) { in.Schedules = nil },
		"bad time":      func(in *Input) { in.Schedules[0].Time = "25:00" },
		"unknown day":   func(in *Input) { in.Schedules[0].DaysOfWeek = []string{"Funday"} },
		"no days":       func(in *Input) { in.Schedules[0].DaysOfWeek = nil },
		"end before st": func(in *Input) { e := in.StartDate.AddDate(0, 0, -1); in.EndDate = &e },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := svc.Create(context.Background(), 10, in)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestService_Create_AcceptsSecondsInTime(t *testing.T) {
	svc := NewService(newTestRepo())

	in := validInput()
	in.Schedules[0].Time = "20:30:00"

	m, err := svc.Create(context.Background(), 10, in)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if m.Schedules[0].Time != "20:30" {
		t.Fatalf("expected 20:30, got %q", m.Schedules[0].Time)
	}
}

func TestService_Get_OtherUsersMedicationIsNotFound(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	m, err := svc.Create(context.Background(), 10, validInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.Get(context.Background(), 11, m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-owner, got %v", err)
	}
	if _, err := svc.Get(context.Background(), 10, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
	if err := svc.Delete(context.Background(), 11, m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on foreign delete, got %v", err)
	}
	if _, ok := repo.byID[m.ID]; !ok {
		t.Fatalf("foreign delete must not remove the medication")
	}
}

func TestService_Update_KeepsCreatedAtAndOwner(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	t0 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	svc.now = func() time.Time { return t0 }
	m, err := svc.Create(context.Background(), 10, validInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	in := validInput()
	in.Name = "Losartana Potássica"
	in.Schedules = []AdministrationSchedule{{Time: "21:00", DaysOfWeek: []string{"Domingo"}}}

	svc.now = func() time.Time { return t1 }
	got, err := svc.Update(context.Background(), 10, m.ID, in)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if got.CreatedAt != t0 || got.UpdatedAt != t1 {
		t.Fatalf("unexpected timestamps %v / %v", got.CreatedAt, got.UpdatedAt)
	}
	if got.UserID != 10 || repo.byID[m.ID].Name != "Losartana Potássica" {
		t.Fatalf("update not persisted: %#v", repo.byID[m.ID])
	}
	if repo.byID[m.ID].Schedules[0].DaysOfWeek[0] != "Sunday" {
		t.Fatalf("expected schedules replaced, got %#v", repo.byID[m.ID].Schedules)
	}
}

func TestService_List_OnlyOwnMedications(t *testing.T) {
	svc := NewService(newTestRepo())

	_, _ = svc.Create(context.Background(), 10, validInput())
	_, _ = svc.Create(context.Background(), 11, validInput())
	_, _ = svc.Create(context.Background(), 10, validInput())

	items, err := svc.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 medications, got %d", len(items))
	}
}

func TestParseWeekday(t *testing.T) {
	cases := map[string]time.Weekday{
		"Segunda-feira": time.Monday,
		"terça":         time.Tuesday,
		"SÁBADO":        time.Saturday,
		"sunday":        time.Sunday,
	}
	for in, want := range cases {
		got, ok := ParseWeekday(in)
		if !ok || got != want {
			t.Fatalf("ParseWeekday(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	if _, ok := ParseWeekday("nope"); ok {
		t.Fatalf("expected unknown day to fail")
	}
}
