package alerts

import (
	"context"
	"errors"
	"testing"

	"siam-adherence/internal/domain/ownership"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRepo struct {
	nextID int64
	byID   map[int64]Alert
	names  map[int64]string
}

func newTestRepo(names map[int64]string) *testRepo {
	return &testRepo{byID: map[int64]Alert{}, names: names}
}

func (r *testRepo) Create(_ context.Context, a Alert) (int64, error) {
	r.nextID++
	a.ID = r.nextID
	r.byID[a.ID] = a
	return a.ID, nil
}

func (r *testRepo) GetByID(_ context.Context, id int64) (Alert, error) {
	a, ok := r.byID[id]
	if !ok {
		return Alert{}, ErrNotFound
	}
	a.MedicationName = r.names[a.MedicationID]
	return a, nil
}

func (r *testRepo) ListByUser(ctx context.Context, userID int64) ([]Alert, error) {
	out := make([]Alert, 0)
	for id := int64(1); id <= r.nextID; id++ {
		if a, err := r.GetByID(ctx, id); err == nil && a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testRepo) Update(_ context.Context, a Alert) error {
	if _, ok := r.byID[a.ID]; !ok {
		return ErrNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) Delete(_ context.Context, id int64) error {
	delete(r.byID, id)
	return nil
}

func (r *testRepo) OwnerOf(_ context.Context, id int64) (int64, error) {
	a, ok := r.byID[id]
	if !ok {
		return 0, ErrNotFound
	}
	return a.UserID, nil
}

// medication 7 -> user 1, medication 8 -> user 2
func medicationOwners() ownership.Lookup {
	owners := map[int64]int64{7: 1, 8: 2}
	return ownership.LookupFunc(func(_ context.Context, id int64) (int64, error) {
		owner, ok := owners[id]
		if !ok {
			return 0, ownership.ErrNotFound
		}
		return owner, nil
	})
}

func newTestService() (*Service, *testRepo) {
	repo := newTestRepo(map[int64]string{7: "Losartana", 8: "Metformina"})
	return NewService(repo, medicationOwners()), repo
}

func TestService_Create_IncludesMedicationName(t *testing.T) {
	svc, _ := newTestService()

	a, err := svc.Create(context.Background(), 1, Input{MedicationID: 7, Name: " Manhã ", PlayCount: 3, IsActive: true})
	require.NoError(t, err)

	assert.Equal(t, "Manhã", a.Name)
	assert.Equal(t, "Losartana", a.MedicationName)
	assert.Equal(t, int64(1), a.UserID)
}

func TestService_Create_RejectsForeignMedication(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.Create(context.Background(), 1, Input{MedicationID: 8, Name: "x"})
	assert.ErrorIs(t, err, ErrMedicationNotFound)

	_, err = svc.Create(context.Background(), 1, Input{MedicationID: 99, Name: "x"})
	assert.ErrorIs(t, err, ErrMedicationNotFound)

	assert.Empty(t, repo.byID)
}

func TestService_Create_Validation(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), 1, Input{MedicationID: 7, Name: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(context.Background(), 1, Input{MedicationID: 7, Name: "x", PlayCount: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_ForeignAlertIsNotFound(t *testing.T) {
	svc, _ := newTestService()

	a, err := svc.Create(context.Background(), 1, Input{MedicationID: 7, Name: "x"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), 2, a.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = svc.Update(context.Background(), 2, a.ID, Input{MedicationID: 8, Name: "y"})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), 2, a.ID), ErrNotFound)
}

func TestService_Update_CanSwitchMedicationAndDeactivate(t *testing.T) {
	svc, repo := newTestService()
	repo.names[9] = "Dipirona"

	a, err := svc.Create(context.Background(), 2, Input{MedicationID: 8, Name: "Noite", IsActive: true})
	require.NoError(t, err)

	svc.medications = ownership.LookupFunc(func(_ context.Context, id int64) (int64, error) {
		return 2, nil
	})

	got, err := svc.Update(context.Background(), 2, a.ID, Input{MedicationID: 9, Name: "Noite", PlayCount: 1})
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, "Dipirona", got.MedicationName)
	assert.Equal(t, a.CreatedAt, got.CreatedAt)
}
