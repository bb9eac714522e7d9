package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportWarmup pre-builds the report caches after the nightly bump.
	TaskReportWarmup = "report:warmup"
	// TaskMembershipRecon cross-checks movement rollups against the
	// transfer log.
	TaskMembershipRecon = "membership:recon"
)

// ReportWarmupPayload selects the periods to pre-build. MonthsBack covers the
// current month plus that many preceding ones.
type ReportWarmupPayload struct {
	MonthsBack int `json:"months_back"`
}

// NewReportWarmupTask constructs an Asynq task.
func NewReportWarmupTask(monthsBack int) (*asynq.Task, error) {
	data, err := json.Marshal(ReportWarmupPayload{MonthsBack: monthsBack})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data), nil
}

// MembershipReconPayload selects the month to reconcile. An empty month means
// the previous calendar month.
type MembershipReconPayload struct {
	Month string `json:"month"`
}

// NewMembershipReconTask constructs an Asynq task.
func NewMembershipReconTask(month string) (*asynq.Task, error) {
	data, err := json.Marshal(MembershipReconPayload{Month: month})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMembershipRecon, data), nil
}
