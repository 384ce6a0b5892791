package memory

import (
	"context"
	"sort"
	"sync"

	"siam-adherence/internal/domain/alerts"
)

type alertRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]alerts.Alert

	meds *MedicationRepo
}

func NewAlertRepo(meds *MedicationRepo) alerts.Repository {
	return &alertRepo{
		byID: make(map[int64]alerts.Alert),
		meds: meds,
	}
}

func (r *alertRepo) Create(ctx context.Context, a alerts.Alert) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	a.ID = r.nextID
	a.MedicationName = ""
	r.byID[a.ID] = a
	return a.ID, nil
}

// joined completa MedicationName; false si el medicamento ya no existe (cascade).
func (r *alertRepo) joined(a alerts.Alert) (alerts.Alert, bool) {
	name, _, ok := r.meds.lookup(a.MedicationID)
	if !ok {
		return alerts.Alert{}, false
	}
	a.MedicationName = name
	return a, true
}

func (r *alertRepo) GetByID(ctx context.Context, id int64) (alerts.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return alerts.Alert{}, ErrNotFound
	}
	a, ok = r.joined(a)
	if !ok {
		return alerts.Alert{}, ErrNotFound
	}
	return a, nil
}

func (r *alertRepo) ListByUser(ctx context.Context, userID int64) ([]alerts.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]alerts.Alert, 0)
	for _, a := range r.byID {
		if a.UserID != userID {
			continue
		}
		if a, ok := r.joined(a); ok {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *alertRepo) Update(ctx context.Context, a alerts.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[a.ID]; !ok {
		return ErrNotFound
	}
	a.MedicationName = ""
	r.byID[a.ID] = a
	return nil
}

func (r *alertRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *alertRepo) OwnerOf(ctx context.Context, id int64) (int64, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return a.UserID, nil
}
