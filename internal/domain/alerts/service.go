package alerts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"siam-adherence/internal/domain/ownership"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = ownership.ErrNotFound
	// ErrMedicationNotFound: el medicamento referenciado no existe o es de otro usuario.
	ErrMedicationNotFound = errors.New("medication not found")
)

type Service struct {
	repo        Repository
	medications ownership.Lookup
	now         func() time.Time
}

func NewService(repo Repository, medications ownership.Lookup) *Service {
	return &Service{
		repo:        repo,
		medications: medications,
		now:         time.Now,
	}
}

type Input struct {
	MedicationID int64
	Name         string
	PlayCount    int
	IsActive     bool
}

func (s *Service) Create(ctx context.Context, userID int64, in Input) (Alert, error) {
	a, err := s.prepare(ctx, userID, in)
	if err != nil {
		return Alert{}, err
	}

	now := s.now()
	a.UserID = userID
	a.CreatedAt = now
	a.UpdatedAt = now

	id, err := s.repo.Create(ctx, a)
	if err != nil {
		return Alert{}, fmt.Errorf("create alert: %w", err)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, userID int64) ([]Alert, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, id int64) (Alert, error) {
	if err := ownership.Check(ctx, s.repo, userID, id); err != nil {
		return Alert{}, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, userID, id int64, in Input) (Alert, error) {
	current, err := s.Get(ctx, userID, id)
	if err != nil {
		return Alert{}, err
	}

	a, err := s.prepare(ctx, userID, in)
	if err != nil {
		return Alert{}, err
	}
	a.ID = current.ID
	a.UserID = current.UserID
	a.CreatedAt = current.CreatedAt
	a.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, a); err != nil {
		return Alert{}, fmt.Errorf("update alert: %w", err)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if err := ownership.Check(ctx, s.repo, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// prepare valida el input y que el medicamento referenciado sea del usuario.
func (s *Service) prepare(ctx context.Context, userID int64, in Input) (Alert, error) {
	if userID <= 0 {
		return Alert{}, ErrInvalidInput
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Alert{}, fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	if in.PlayCount < 0 {
		return Alert{}, fmt.Errorf("%w: playCount must be >= 0", ErrInvalidInput)
	}

	if err := ownership.Check(ctx, s.medications, userID, in.MedicationID); err != nil {
		if errors.Is(err, ownership.ErrNotFound) {
			return Alert{}, ErrMedicationNotFound
		}
		return Alert{}, err
	}

	return Alert{
		MedicationID: in.MedicationID,
		Name:         name,
		PlayCount:    in.PlayCount,
		IsActive:     in.IsActive,
	}, nil
}
