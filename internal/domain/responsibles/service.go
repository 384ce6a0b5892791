package responsibles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"siam-adherence/internal/domain/ownership"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = ownership.ErrNotFound
)

var validate = validator.New()

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
	FullName     string
	CPF          string
	RG           string
	Birthdate    *time.Time
	PhoneNumber  string
	Email        string
	Address      string
	City         string
	ZipCode      string
	Observations string
}

func (s *Service) Create(ctx context.Context, userID int64, in Input) (Responsible, error) {
	if userID <= 0 {
		return Responsible{}, ErrInvalidInput
	}
	r, err := normalize(in)
	if err != nil {
		return Responsible{}, err
	}

	now := s.now()
	r.UserID = userID
	r.CreatedAt = now
	r.UpdatedAt = now

	id, err := s.repo.Create(ctx, r)
	if err != nil {
		return Responsible{}, fmt.Errorf("create responsible: %w", err)
	}
	r.ID = id
	return r, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]Responsible, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, id int64) (Responsible, error) {
	if err := ownership.Check(ctx, s.repo, userID, id); err != nil {
		return Responsible{}, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, userID, id int64, in Input) (Responsible, error) {
	current, err := s.Get(ctx, userID, id)
	if err != nil {
		return Responsible{}, err
	}

	r, err := normalize(in)
	if err != nil {
		return Responsible{}, err
	}
	r.ID = current.ID
	r.UserID = current.UserID
	r.CreatedAt = current.CreatedAt
	r.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, r); err != nil {
		return Responsible{}, fmt.Errorf("update responsible: %w", err)
	}
	return r, nil
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if err := ownership.Check(ctx, s.repo, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ListEmails alimenta el fan-out de notificaciones.
func (s *Service) ListEmails(ctx context.Context, userID int64) ([]string, error) {
	return s.repo.ListEmails(ctx, userID)
}

func normalize(in Input) (Responsible, error) {
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return Responsible{}, fmt.Errorf("%w: fullName required", ErrInvalidInput)
	}
	email := strings.TrimSpace(in.Email)
	if err := validate.Var(email, "required,email"); err != nil {
		return Responsible{}, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}

	return Responsible{
		FullName:     name,
		CPF:          strings.TrimSpace(in.CPF),
		RG:           strings.TrimSpace(in.RG),
		Birthdate:    in.Birthdate,
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		Email:        email,
		Address:      strings.TrimSpace(in.Address),
		City:         strings.TrimSpace(in.City),
		ZipCode:      strings.TrimSpace(in.ZipCode),
		Observations: strings.TrimSpace(in.Observations),
	}, nil
}
