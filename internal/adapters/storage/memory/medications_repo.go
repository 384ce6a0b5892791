package memory

import (
	"context"
	"sort"
	"sync"

	"siam-adherence/internal/domain/medications"
)

// MedicationRepo se expone concreto: alerts y adherence lo consultan para resolver nombres
// (equivalente al JOIN de postgres).
type MedicationRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]medications.Medication
}

func NewMedicationRepo() *MedicationRepo {
	return &MedicationRepo{
		byID: make(map[int64]medications.Medication),
	}
}

func (r *MedicationRepo) Create(ctx context.Context, m medications.Medication) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	m.ID = r.nextID
	m.Schedules = copySchedules(m.Schedules)
	r.byID[m.ID] = m
	return m.ID, nil
}

func (r *MedicationRepo) GetByID(ctx context.Context, id int64) (medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return medications.Medication{}, ErrNotFound
	}
	m.Schedules = copySchedules(m.Schedules)
	return m, nil
}

func (r *MedicationRepo) ListByUser(ctx context.Context, userID int64) ([]medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medications.Medication, 0)
	for _, m := range r.byID {
		if m.UserID == userID {
			m.Schedules = copySchedules(m.Schedules)
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MedicationRepo) Update(ctx context.Context, m medications.Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[m.ID]; !ok {
		return ErrNotFound
	}
	m.Schedules = copySchedules(m.Schedules)
	r.byID[m.ID] = m
	return nil
}

// Delete: alertas y registros quedan huérfanos y los repos que hacen "join" los ignoran.
func (r *MedicationRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *MedicationRepo) OwnerOf(ctx context.Context, id int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return 0, ErrNotFound
	}
	return m.UserID, nil
}

// lookup devuelve nombre y dueño sin copiar horarios.
func (r *MedicationRepo) lookup(id int64) (name string, userID int64, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	return m.Name, m.UserID, ok
}

func (r *MedicationRepo) listByUser(userID int64) []medications.Medication {
	out, _ := r.ListByUser(context.Background(), userID)
	return out
}

func copySchedules(in []medications.AdministrationSchedule) []medications.AdministrationSchedule {
	out := make([]medications.AdministrationSchedule, 0, len(in))
	for _, s := range in {
		out = append(out, medications.AdministrationSchedule{
			Time:       s.Time,
			DaysOfWeek: append([]string(nil), s.DaysOfWeek...),
		})
	}
	return out
}
