package jobs

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benfund/benfund/internal/members"
	"github.com/benfund/benfund/internal/payments"
	"github.com/benfund/benfund/internal/reports"
	"github.com/benfund/benfund/internal/settings"
	"github.com/benfund/benfund/internal/transfers"
	"github.com/benfund/benfund/internal/units"
)

type stubRepo struct {
	members []members.Member
	units   []units.Unit
	loads   int
}

func (s *stubRepo) Members(context.Context) ([]members.Member, error) {
	s.loads++
	return s.members, nil
}

func (s *stubRepo) Units(context.Context) ([]units.Unit, error) {
	return s.units, nil
}

func (s *stubRepo) TransfersThrough(context.Context, time.Time) ([]transfers.Transfer, error) {
	return nil, nil
}

func (s *stubRepo) PaymentsThrough(context.Context, time.Time) ([]payments.Payment, error) {
	return nil, nil
}

type stubSettings struct{}

func (stubSettings) SubscriptionRate(context.Context) (float64, error) {
	return 100, nil
}

func (stubSettings) Signature(context.Context) (settings.SignatureBlock, error) {
	return settings.SignatureBlock{}, nil
}

func testRepo() *stubRepo {
	return &stubRepo{
		members: []members.Member{{
			ID: 1, UnitID: 1,
			AllotmentDate:         time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
			SubscriptionStartDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Status:                members.StatusOpened,
		}},
		units: []units.Unit{{ID: 1, Code: "HQ", Name: "Headquarters"}},
	}
}

func TestReportWarmupJobBuildsEachMonth(t *testing.T) {
	repo := testRepo()
	loader := reports.NewLoader(repo, stubSettings{})
	svc := reports.NewService(loader, nil, nil, slog.Default())

	job := NewReportWarmupJob(svc, slog.Default(), nil)
	job.clock = func() time.Time { return time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC) }

	task, err := NewReportWarmupTask(2)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	// Three months, three datasets each, no cache in front.
	assert.Equal(t, 9, repo.loads)
}

func TestReportWarmupJobRejectsBadPayload(t *testing.T) {
	repo := testRepo()
	loader := reports.NewLoader(repo, stubSettings{})
	svc := reports.NewService(loader, nil, nil, slog.Default())
	job := NewReportWarmupJob(svc, slog.Default(), nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskReportWarmup, []byte("not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Zero(t, repo.loads)
}

func TestMembershipReconJobCleanRun(t *testing.T) {
	repo := testRepo()
	loader := reports.NewLoader(repo, stubSettings{})

	job := NewMembershipReconJob(loader, slog.Default(), nil)
	job.clock = func() time.Time { return time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC) }

	task, err := NewMembershipReconTask("2024-03")
	require.NoError(t, err)
	assert.NoError(t, job.Handle(context.Background(), task))
}

func TestMembershipReconJobBadMonth(t *testing.T) {
	loader := reports.NewLoader(testRepo(), stubSettings{})
	job := NewMembershipReconJob(loader, slog.Default(), nil)

	task, err := NewMembershipReconTask("last month")
	require.NoError(t, err)
	assert.ErrorIs(t, job.Handle(context.Background(), task), asynq.SkipRetry)
}
