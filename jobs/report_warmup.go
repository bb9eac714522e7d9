package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/benfund/benfund/internal/observability"
	"github.com/benfund/benfund/internal/reports"
)

// ReportWarmupJob pre-builds the report caches so the first morning request
// does not pay the assembly cost.
type ReportWarmupJob struct {
	Reports *reports.Service
	Logger  *slog.Logger
	Metrics *observability.Metrics
	clock   func() time.Time
}

// NewReportWarmupJob wires dependencies for the warmup handler.
func NewReportWarmupJob(svc *reports.Service, logger *slog.Logger, metrics *observability.Metrics) *ReportWarmupJob {
	return &ReportWarmupJob{
		Reports: svc,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes report warmup tasks.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("report warmup: handler not configured")
	}
	var payload ReportWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.MonthsBack <= 0 {
		payload.MonthsBack = 2
	}

	current := reports.MonthOf(j.clock())
	warmed := 0
	for back := 0; back <= payload.MonthsBack; back++ {
		month := current.Add(-back)
		period, err := reports.NewPeriod(month, month)
		if err != nil {
			continue
		}
		if _, err := j.Reports.Movement(ctx, period); err != nil {
			j.Metrics.CountJob(TaskReportWarmup, "error")
			j.Logger.Error("warm movement report", slog.String("month", month.String()), slog.Any("error", err))
			return err
		}
		if _, err := j.Reports.Dues(ctx, period, 0); err != nil {
			j.Metrics.CountJob(TaskReportWarmup, "error")
			j.Logger.Error("warm dues report", slog.String("month", month.String()), slog.Any("error", err))
			return err
		}
		if _, err := j.Reports.Collections(ctx, period); err != nil {
			j.Metrics.CountJob(TaskReportWarmup, "error")
			j.Logger.Error("warm collections report", slog.String("month", month.String()), slog.Any("error", err))
			return err
		}
		warmed++
	}

	j.Metrics.CountJob(TaskReportWarmup, "ok")
	j.Logger.Info("report warmup complete", slog.Int("months", warmed))
	return nil
}
