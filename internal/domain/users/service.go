package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"siam-adherence/internal/domain/ownership"
	"siam-adherence/internal/ports/auth"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen   = 6
	maxPasswordBytes = 72
)

var validate = validator.New()

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = ownership.ErrNotFound
	ErrConflict           = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Service struct {
	repo   Repository
	issuer auth.TokenIssuer
	now    func() time.Time
	cost   int
}

func NewService(repo Repository, issuer auth.TokenIssuer) *Service {
	return &Service{
		repo:   repo,
		issuer: issuer,
		now:    time.Now,
		cost:   bcrypt.DefaultCost,
	}
}

// Profile son los datos editables del usuario.
type Profile struct {
	FullName     string
	Nickname     string
	Email        string
	PhoneNumber  string
	CPF          string
	Birthdate    *time.Time
	Address      string
	City         string
	ZipCode      string
	Observations string
}

type RegisterInput struct {
	Profile
	Username string
	Password string
}

// Session es el resultado de un login exitoso.
type Session struct {
	Token  string
	UserID int64
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	u, err := applyProfile(User{}, in.Profile)
	if err != nil {
		return User{}, err
	}

	u.Username = strings.TrimSpace(in.Username)
	if u.Username == "" {
		return User{}, fmt.Errorf("%w: username required", ErrInvalidInput)
	}
	if err := checkPassword(in.Password); err != nil {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)

	now := s.now()
	u.CreatedAt = now
	u.UpdatedAt = now

	id, err := s.repo.Create(ctx, u)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return User{}, ErrConflict
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	u.ID = id
	return u, nil
}

// Login valida credenciales y emite un token. Usuario inexistente y password incorrecta
// devuelven el mismo error.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}

	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	if s.issuer == nil {
		return Session{}, errors.New("token issuer not configured")
	}
	token, err := s.issuer.Issue(auth.Claims{UserID: u.ID, Username: u.Username})
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{Token: token, UserID: u.ID}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	if id <= 0 {
		return User{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, id int64, p Profile) (User, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return User{}, err
	}

	u, err := applyProfile(current, p)
	if err != nil {
		return User{}, err
	}
	u.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (s *Service) ChangePassword(ctx context.Context, id int64, current, next string) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}
	if err := checkPassword(next); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, id, string(hash))
}

func applyProfile(u User, p Profile) (User, error) {
	u.FullName = strings.TrimSpace(p.FullName)
	if u.FullName == "" {
		return User{}, fmt.Errorf("%w: fullName required", ErrInvalidInput)
	}

	email := strings.TrimSpace(p.Email)
	if err := validate.Var(email, "required,email"); err != nil {
		return User{}, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	u.Email = email

	u.Nickname = strings.TrimSpace(p.Nickname)
	u.PhoneNumber = strings.TrimSpace(p.PhoneNumber)
	u.CPF = strings.TrimSpace(p.CPF)
	u.Birthdate = p.Birthdate
	u.Address = strings.TrimSpace(p.Address)
	u.City = strings.TrimSpace(p.City)
	u.ZipCode = strings.TrimSpace(p.ZipCode)
	u.Observations = strings.TrimSpace(p.Observations)
	return u, nil
}

func checkPassword(p string) error {
	if len(p) < minPasswordLen {
		return fmt.Errorf("%w: password must have at least %d characters", ErrInvalidInput, minPasswordLen)
	}
	// bcrypt rechaza más de 72 bytes
	if len(p) > maxPasswordBytes {
		return fmt.Errorf("%w: password must have at most %d bytes", ErrInvalidInput, maxPasswordBytes)
	}
	return nil
}
