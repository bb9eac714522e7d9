package members

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benfund/benfund/internal/shared"
)

type mockRepository struct {
	members map[int64]*Member
	nextID  int64
	bumps   int
}

func newMockRepository() *mockRepository {
	return &mockRepository{members: make(map[int64]*Member), nextID: 1}
}

func (m *mockRepository) List(ctx context.Context, filters ListFilters) ([]Member, int, error) {
	var out []Member
	for _, mem := range m.members {
		out = append(out, *mem)
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Member, error) {
	mem, ok := m.members[id]
	if !ok {
		return Member{}, shared.ErrNotFound
	}
	return *mem, nil
}

func (m *mockRepository) Create(ctx context.Context, mem Member) (Member, error) {
	mem.ID = m.nextID
	mem.Status = StatusOpened
	m.nextID++
	m.members[mem.ID] = &mem
	return mem, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, mem Member) error {
	existing, ok := m.members[id]
	if !ok {
		return shared.ErrNotFound
	}
	existing.Name = mem.Name
	existing.Rank = mem.Rank
	existing.ServiceNo = mem.ServiceNo
	return nil
}

func (m *mockRepository) SetStatus(ctx context.Context, id int64, status, reason string, discharge *time.Time) error {
	existing, ok := m.members[id]
	if !ok {
		return shared.ErrNotFound
	}
	existing.Status = status
	existing.CloseReason = reason
	existing.DischargeDate = discharge
	return nil
}

type countingBumper struct{ calls int }

func (b *countingBumper) Bump(ctx context.Context) error {
	b.calls++
	return nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateRejectsSubscriptionBeforeAllotment(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)
	_, err := svc.Create(context.Background(), Member{
		Code:                  "M-001",
		AllotmentDate:         date(2024, time.March, 1),
		SubscriptionStartDate: date(2024, time.January, 1),
	})
	require.Error(t, err)
}

func TestCloseAndReopenLifecycle(t *testing.T) {
	repo := newMockRepository()
	bumper := &countingBumper{}
	svc := NewService(repo, bumper, nil)

	created, err := svc.Create(context.Background(), Member{
		Code:                  "M-001",
		AllotmentDate:         date(2023, time.January, 1),
		SubscriptionStartDate: date(2023, time.January, 1),
	})
	require.NoError(t, err)

	err = svc.Close(context.Background(), created.ID, ReasonRetirement, date(2024, time.June, 30))
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, got.Status)
	assert.Equal(t, ReasonRetirement, got.CloseReason)
	require.NotNil(t, got.DischargeDate)

	// Closing twice is a state conflict.
	err = svc.Close(context.Background(), created.ID, ReasonRetirement, date(2024, time.June, 30))
	assert.ErrorIs(t, err, shared.ErrMemberClosed)

	err = svc.Reopen(context.Background(), created.ID)
	require.NoError(t, err)
	got, err = svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOpened, got.Status)
	assert.Empty(t, got.CloseReason)
	assert.Nil(t, got.DischargeDate)

	// create + close + reopen each invalidate cached reports
	assert.Equal(t, 3, bumper.calls)
}

func TestCloseRejectsUnknownReasonAndEarlyDischarge(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	created, err := svc.Create(context.Background(), Member{
		Code:                  "M-002",
		AllotmentDate:         date(2023, time.May, 1),
		SubscriptionStartDate: date(2023, time.May, 1),
	})
	require.NoError(t, err)

	err = svc.Close(context.Background(), created.ID, "RESIGNED", date(2024, time.January, 1))
	require.Error(t, err)

	err = svc.Close(context.Background(), created.ID, ReasonDeath, date(2022, time.January, 1))
	require.Error(t, err)
}

func TestReopenRequiresClosedMember(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	created, err := svc.Create(context.Background(), Member{
		Code:                  "M-003",
		AllotmentDate:         date(2023, time.May, 1),
		SubscriptionStartDate: date(2023, time.May, 1),
	})
	require.NoError(t, err)

	err = svc.Reopen(context.Background(), created.ID)
	assert.ErrorIs(t, err, shared.ErrMemberOpen)
}

func TestUpdateBumpsReportCache(t *testing.T) {
	repo := newMockRepository()
	bumper := &countingBumper{}
	svc := NewService(repo, bumper, nil)

	created, err := svc.Create(context.Background(), Member{
		Code:                  "M-004",
		Name:                  "A. Officer",
		AllotmentDate:         date(2023, time.May, 1),
		SubscriptionStartDate: date(2023, time.May, 1),
	})
	require.NoError(t, err)

	created.Name = "A. Officer Jr."
	err = svc.Update(context.Background(), created.ID, created)
	require.NoError(t, err)

	// Dues rows carry member name and rank, so edits invalidate cached
	// reports just like lifecycle changes do.
	assert.Equal(t, 2, bumper.calls)

	err = svc.Update(context.Background(), 0, created)
	require.Error(t, err)
	assert.Equal(t, 2, bumper.calls)
}
