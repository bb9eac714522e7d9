package units

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benfund/benfund/internal/platform/httpx"
)

type mockRepository struct {
	byID   map[int64]Unit
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{byID: map[int64]Unit{}, nextID: 1}
}

func (m *mockRepository) List(_ context.Context, _ ListFilters) ([]Unit, int, error) {
	var list []Unit
	for _, u := range m.byID {
		list = append(list, u)
	}
	return list, len(list), nil
}

func (m *mockRepository) Get(_ context.Context, id int64) (Unit, error) {
	u, ok := m.byID[id]
	if !ok {
		return Unit{}, httpx.ErrNotFound
	}
	return u, nil
}

func (m *mockRepository) Create(_ context.Context, unit Unit) (Unit, error) {
	for _, existing := range m.byID {
		if existing.Code == unit.Code {
			return Unit{}, httpx.ErrDuplicate
		}
	}
	unit.ID = m.nextID
	m.nextID++
	m.byID[unit.ID] = unit
	return unit, nil
}

func (m *mockRepository) Update(_ context.Context, id int64, unit Unit) error {
	if _, ok := m.byID[id]; !ok {
		return httpx.ErrNotFound
	}
	unit.ID = id
	m.byID[id] = unit
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, Unit{Name: "Headquarters"})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(ctx, Unit{Code: "HQ", Name: "  "})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	created, err := svc.Create(ctx, Unit{Code: "HQ", Name: "Headquarters"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
}

func TestCreateDuplicateCode(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, Unit{Code: "HQ", Name: "Headquarters"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, Unit{Code: "HQ", Name: "Duplicate"})
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
}

type countingBumper struct{ calls int }

func (b *countingBumper) Bump(ctx context.Context) error {
	b.calls++
	return nil
}

func TestMutationsBumpReportCache(t *testing.T) {
	bumper := &countingBumper{}
	svc := NewService(newMockRepository(), bumper, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, Unit{Code: "HQ", Name: "Headquarters"})
	require.NoError(t, err)
	require.NoError(t, svc.Update(ctx, created.ID, Unit{Code: "HQ", Name: "Head Office"}))
	require.NoError(t, svc.Delete(ctx, created.ID))

	// Cached report datasets carry unit names, so every unit mutation
	// invalidates them.
	assert.Equal(t, 3, bumper.calls)

	// Rejected writes leave the cache version alone.
	_, err = svc.Create(ctx, Unit{Name: "No Code"})
	require.Error(t, err)
	assert.ErrorIs(t, svc.Update(ctx, 0, Unit{Code: "HQ", Name: "Headquarters"}), httpx.ErrValidation)
	assert.Equal(t, 3, bumper.calls)
}

func TestGetAndDeleteRejectBadIDs(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)
	ctx := context.Background()

	_, err := svc.Get(ctx, 0)
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.ErrorIs(t, svc.Delete(ctx, -1), httpx.ErrValidation)
	assert.ErrorIs(t, svc.Update(ctx, 0, Unit{Code: "HQ", Name: "Headquarters"}), httpx.ErrValidation)

	_, err = svc.Get(ctx, 99)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}
