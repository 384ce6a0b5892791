package medications

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"siam-adherence/internal/domain/ownership"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = ownership.ErrNotFound
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type Input struct {
	Name         string
	Dosage       float64
	StartDate    time.Time
	EndDate      *time.Time
	Observations string
	Schedules    []AdministrationSchedule
}

func (s *Service) Create(ctx context.Context, userID int64, in Input) (Medication, error) {
	if userID <= 0 {
		return Medication{}, ErrInvalidInput
	}
	m, err := normalize(in)
	if err != nil {
		return Medication{}, err
	}

	now := s.now()
	m.UserID = userID
	m.CreatedAt = now
	m.UpdatedAt = now

	id, err := s.repo.Create(ctx, m)
	if err != nil {
		return Medication{}, fmt.Errorf("create medication: %w", err)
	}
	m.ID = id
	return m, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]Medication, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, id int64) (Medication, error) {
	return s.Owned(ctx, userID, id)
}

func (s *Service) Update(ctx context.Context, userID, id int64, in Input) (Medication, error) {
	current, err := s.Owned(ctx, userID, id)
	if err != nil {
		return Medication{}, err
	}

	m, err := normalize(in)
	if err != nil {
		return Medication{}, err
	}
	m.ID = current.ID
	m.UserID = current.UserID
	m.CreatedAt = current.CreatedAt
	m.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, m); err != nil {
		return Medication{}, fmt.Errorf("update medication: %w", err)
	}
	return m, nil
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if err := ownership.Check(ctx, s.repo, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func normalize(in Input) (Medication, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Medication{}, fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	if in.Dosage <= 0 {
		return Medication{}, fmt.Errorf("%w: dosage must be positive", ErrInvalidInput)
	}
	if in.StartDate.IsZero() {
		return Medication{}, fmt.Errorf("%w: start date required", ErrInvalidInput)
	}
	if in.EndDate != nil && in.EndDate.Before(in.StartDate) {
		return Medication{}, fmt.Errorf("%w: end date before start date", ErrInvalidInput)
	}
	if len(in.Schedules) == 0 {
		return Medication{}, fmt.Errorf("%w: at least one administration schedule required", ErrInvalidInput)
	}

	schedules := make([]AdministrationSchedule, 0, len(in.Schedules))
	for _, sc := range in.Schedules {
		n, err := normalizeSchedule(sc)
		if err != nil {
			return Medication{}, err
		}
		schedules = append(schedules, n)
	}

	return Medication{
		Name:         name,
		Dosage:       in.Dosage,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Observations: strings.TrimSpace(in.Observations),
		Schedules:    schedules,
	}, nil
}

func normalizeSchedule(sc AdministrationSchedule) (AdministrationSchedule, error) {
	raw := strings.TrimSpace(sc.Time)
	t, err := time.Parse("15:04", raw)
	if err != nil {
		// postgres TIME vuelve como HH:MM:SS
		t, err = time.Parse("15:04:05", raw)
		if err != nil {
			return AdministrationSchedule{}, fmt.Errorf("%w: time must be HH:MM", ErrInvalidInput)
		}
	}

	seen := map[time.Weekday]struct{}{}
	days := make([]time.Weekday, 0, len(sc.DaysOfWeek))
	for _, d := range sc.DaysOfWeek {
		wd, ok := ParseWeekday(d)
		if !ok {
			return AdministrationSchedule{}, fmt.Errorf("%w: unknown day %q", ErrInvalidInput, d)
		}
		if _, dup := seen[wd]; dup {
			continue
		}
		seen[wd] = struct{}{}
		days = append(days, wd)
	}
	if len(days) == 0 {
		return AdministrationSchedule{}, fmt.Errorf("%w: daysOfWeek required", ErrInvalidInput)
	}

	// orden ISO: lunes primero
	sort.Slice(days, func(i, j int) bool { return isoDay(days[i]) < isoDay(days[j]) })
	names := make([]string, 0, len(days))
	for _, d := range days {
		names = append(names, d.String())
	}

	return AdministrationSchedule{
		Time:       t.Format("15:04"),
		DaysOfWeek: names,
	}, nil
}

func isoDay(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}
