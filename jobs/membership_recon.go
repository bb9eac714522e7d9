package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/benfund/benfund/internal/members"
	"github.com/benfund/benfund/internal/observability"
	"github.com/benfund/benfund/internal/reports"
	"github.com/benfund/benfund/internal/settings"
)

// MembershipReconJob cross-checks the movement rollup against a direct
// member-by-member resolution of the transfer log. The two are computed from
// different directions, so a mismatch means a data problem: a transfer whose
// origin disagrees with the log, a discharge without a status change, or a
// member parked in a deleted unit.
type MembershipReconJob struct {
	Loader  *reports.Loader
	Logger  *slog.Logger
	Metrics *observability.Metrics
	clock   func() time.Time
}

// NewMembershipReconJob wires dependencies for the reconciliation handler.
func NewMembershipReconJob(loader *reports.Loader, logger *slog.Logger, metrics *observability.Metrics) *MembershipReconJob {
	return &MembershipReconJob{
		Loader:  loader,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes reconciliation tasks.
func (j *MembershipReconJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Loader == nil {
		return errors.New("membership recon: handler not configured")
	}
	var payload MembershipReconPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	month := reports.MonthOf(j.clock()).Add(-1)
	if payload.Month != "" {
		var err error
		if month, err = reports.ParseMonth(payload.Month); err != nil {
			return asynq.SkipRetry
		}
	}
	period, err := reports.NewPeriod(month, month)
	if err != nil {
		return asynq.SkipRetry
	}

	snap, _, warnings, err := j.Loader.Load(ctx, period)
	if err != nil {
		j.Metrics.CountJob(TaskMembershipRecon, "error")
		return err
	}
	report := reports.BuildMovement(snap, period, settings.SignatureBlock{}, warnings)

	// Independent count: resolve every open member at the period end and
	// tally per unit.
	res := reports.NewResolver(snap.Members, snap.Transfers)
	periodEnd := period.To.End()
	direct := make(map[int64]int, len(snap.Units))
	unresolved := 0
	for _, m := range snap.Members {
		if m.Status != members.StatusOpened {
			continue
		}
		unit := res.UnitAt(m.ID, periodEnd)
		if unit == reports.UnitUnknown {
			unresolved++
			continue
		}
		direct[unit]++
	}

	mismatches := 0
	for _, row := range report.Rows {
		if row.ActualMembers != direct[row.UnitID] {
			mismatches++
			j.Logger.Warn("membership reconciliation mismatch",
				slog.String("month", month.String()),
				slog.Int64("unit_id", row.UnitID),
				slog.String("unit", row.UnitName),
				slog.Int("movement_actual", row.ActualMembers),
				slog.Int("resolved_count", direct[row.UnitID]))
		}
	}
	if unresolved > 0 {
		j.Logger.Warn("members resolve to no known unit",
			slog.String("month", month.String()),
			slog.Int("count", unresolved))
	}
	for _, warning := range warnings {
		j.Logger.Warn("reconciliation data warning", slog.String("detail", warning))
	}

	if mismatches > 0 {
		j.Metrics.CountJob(TaskMembershipRecon, "mismatch")
	} else {
		j.Metrics.CountJob(TaskMembershipRecon, "ok")
	}
	j.Logger.Info("membership reconciliation complete",
		slog.String("month", month.String()),
		slog.Int("units", len(report.Rows)),
		slog.Int("mismatches", mismatches))
	return nil
}
