package memory

import (
	"context"
	"sort"
	"sync"

	"siam-adherence/internal/domain/responsibles"
)

type responsibleRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]responsibles.Responsible
}

func NewResponsibleRepo() responsibles.Repository {
	return &responsibleRepo{
		byID: make(map[int64]responsibles.Responsible),
	}
}

func (r *responsibleRepo) Create(ctx context.Context, resp responsibles.Responsible) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	resp.ID = r.nextID
	r.byID[resp.ID] = resp
	return resp.ID, nil
}

func (r *responsibleRepo) GetByID(ctx context.Context, id int64) (responsibles.Responsible, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resp, ok := r.byID[id]
	if !ok {
		return responsibles.Responsible{}, ErrNotFound
	}
	return resp, nil
}

func (r *responsibleRepo) ListByUser(ctx context.Context, userID int64) ([]responsibles.Responsible, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]responsibles.Responsible, 0)
	for _, resp := range r.byID {
		if resp.UserID == userID {
			out = append(out, resp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *responsibleRepo) Update(ctx context.Context, resp responsibles.Responsible) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[resp.ID]; !ok {
		return ErrNotFound
	}
	r.byID[resp.ID] = resp
	return nil
}

func (r *responsibleRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *responsibleRepo) OwnerOf(ctx context.Context, id int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resp, ok := r.byID[id]
	if !ok {
		return 0, ErrNotFound
	}
	return resp.UserID, nil
}

func (r *responsibleRepo) ListEmails(ctx context.Context, userID int64) ([]string, error) {
	items, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Email)
	}
	return out, nil
}
