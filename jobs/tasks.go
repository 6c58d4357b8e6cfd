package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup pre-populates dashboard caches for manager scopes.
	TaskDashboardWarmup = "dashboard:warmup"
)

// DashboardWarmupPayload narrows a warmup run. An empty StaffCode warms every
// manager scope.
type DashboardWarmupPayload struct {
	StaffCode string `json:"staff_code,omitempty"`
}

// NewDashboardWarmupTask constructs an Asynq task.
func NewDashboardWarmupTask(payload DashboardWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}
