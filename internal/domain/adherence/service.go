package adherence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"siam-adherence/internal/domain/ownership"
	"siam-adherence/internal/platform/metrics"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = ownership.ErrNotFound
)

// MissedDoseNotifier recibe los registros ya confirmados con taken=false.
// No debe bloquear: la respuesta HTTP no espera a la notificación.
type MissedDoseNotifier interface {
	MissedDose(ctx context.Context, l MedicationLog)
}

type Service struct {
	repo        Repository
	medications ownership.Lookup
	notifier    MissedDoseNotifier
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewService(repo Repository, medications ownership.Lookup, notifier MissedDoseNotifier, m *metrics.Metrics) *Service {
	return &Service{
		repo:        repo,
		medications: medications,
		notifier:    notifier,
		metrics:     m,
		now:         time.Now,
	}
}

type DoseInput struct {
	MedicationID int64
	Taken        bool
}

// RegisterDose: ownership -> insert transaccional -> (si taken=false) notificación asíncrona.
// Si el insert falla no se notifica nada.
func (s *Service) RegisterDose(ctx context.Context, userID int64, in DoseInput) (MedicationLog, error) {
	if in.MedicationID <= 0 {
		return MedicationLog{}, fmt.Errorf("%w: medicationId required", ErrInvalidInput)
	}
	if err := ownership.Check(ctx, s.medications, userID, in.MedicationID); err != nil {
		return MedicationLog{}, err
	}

	l := MedicationLog{
		MedicationID: in.MedicationID,
		UserID:       userID,
		Taken:        in.Taken,
		TakenAt:      s.now().UTC(),
	}

	id, err := s.repo.InsertLog(ctx, l)
	if err != nil {
		return MedicationLog{}, fmt.Errorf("insert medication log: %w", err)
	}
	l.ID = id

	s.metrics.DoseRegistered(l.Taken)

	if !l.Taken && s.notifier != nil {
		s.notifier.MissedDose(ctx, l)
	}
	return l, nil
}

func (s *Service) Summary(ctx context.Context, userID int64) ([]Summary, error) {
	return s.repo.Summary(ctx, userID)
}

func (s *Service) MissedByWeek(ctx context.Context, userID int64) ([]MissedByWeek, error) {
	return s.repo.MissedByWeek(ctx, userID)
}

// DailyConsumption con currentWeek=true restringe a la semana en curso (desde el lunes 00:00 UTC).
func (s *Service) DailyConsumption(ctx context.Context, userID int64, currentWeek bool) ([]DailyConsumption, error) {
	var since *time.Time
	if currentWeek {
		ws := WeekStart(s.now())
		since = &ws
	}
	return s.repo.DailyConsumption(ctx, userID, since)
}
