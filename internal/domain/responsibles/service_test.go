package responsibles

import (
	"context"
	"errors"
	"testing"
)

type testRepo struct {
	nextID int64
	byID   map[int64]Responsible
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[int64]Responsible{}}
}

func (r *testRepo) Create(_ context.Context, resp Responsible) (int64, error) {
	r.nextID++
	resp.ID = r.nextID
	r.byID[resp.ID] = resp
	return resp.ID, nil
}

func (r *testRepo) GetByID(_ context.Context, id int64) (Responsible, error) {
	resp, ok := r.byID[id]
	if !ok {
		return Responsible{}, ErrNotFound
	}
	return resp, nil
}

func (r *testRepo) ListByUser(_ context.Context, userID int64) ([]Responsible, error) {
	out := make([]Responsible, 0)
	for id := int64(1); id <= r.nextID; id++ {
		if resp, ok := r.byID[id]; ok && resp.UserID == userID {
			out = append(out, resp)
		}
	}
	return out, nil
}

func (r *testRepo) Update(_ context.Context, resp Responsible) error {
	if _, ok := r.byID[resp.ID]; !ok {
		return ErrNotFound
	}
	r.byID[resp.ID] = resp
	return nil
}

func (r *testRepo) Delete(_ context.Context, id int64) error {
	delete(r.byID, id)
	return nil
}

func (r *testRepo) OwnerOf(_ context.Context, id int64) (int64, error) {
	resp, ok := r.byID[id]
	if !ok {
		return 0, ErrNotFound
	}
	return resp.UserID, nil
}

func (r *testRepo) ListEmails(ctx context.Context, userID int64) ([]string, error) {
	items, _ := r.ListByUser(ctx, userID)
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Email)
	}
	return out, nil
}

func TestService_Create_ValidatesEmail(t *testing.T) {
	svc := NewService(newTestRepo())

	_, err := svc.Create(context.Background(), 1, Input{FullName: "Ana", Email: "ana-at-x"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	_, err = svc.Create(context.Background(), 1, Input{FullName: " ", Email: "ana@x.com"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty name, got %v", err)
	}

	r, err := svc.Create(context.Background(), 1, Input{FullName: " Ana ", Email: " ana@x.com "})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if r.FullName != "Ana" || r.Email != "ana@x.com" {
		t.Fatalf("expected trimmed fields, got %#v", r)
	}
}

func TestService_ForeignResponsibleIsNotFound(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	r, err := svc.Create(context.Background(), 1, Input{FullName: "Ana", Email: "ana@x.com"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.Get(context.Background(), 2, r.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on foreign get, got %v", err)
	}
	if _, err := svc.Update(context.Background(), 2, r.ID, Input{FullName: "X", Email: "x@x.com"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on foreign update, got %v", err)
	}
	if err := svc.Delete(context.Background(), 2, r.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on foreign delete, got %v", err)
	}
	if repo.byID[r.ID].FullName != "Ana" {
		t.Fatalf("foreign calls must not mutate, got %#v", repo.byID[r.ID])
	}
}

func TestService_ListEmails_OnlyOwn(t *testing.T) {
	svc := NewService(newTestRepo())

	_, _ = svc.Create(context.Background(), 1, Input{FullName: "A", Email: "a@x.com"})
	_, _ = svc.Create(context.Background(), 2, Input{FullName: "C", Email: "c@x.com"})
	_, _ = svc.Create(context.Background(), 1, Input{FullName: "B", Email: "b@x.com"})

	emails, err := svc.ListEmails(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListEmails returned error: %v", err)
	}
	if len(emails) != 2 || emails[0] != "a@x.com" || emails[1] != "b@x.com" {
		t.Fatalf("unexpected emails %#v", emails)
	}
}
