package models

import "time"

// Task processing statuses.
const (
	StatusAccepted   = "ACCEPTED"
	StatusProcessing = "PROCESSING"
	StatusSuccess    = "SUCCESS"
	StatusFailure    = "FAILURE"
)

// AsyncTaskResponse is returned immediately when a workflow run is queued.
type AsyncTaskResponse struct {
	TaskID    string    `json:"task_id"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// TaskStatusResponse reports the current state of a queued workflow run.
// Result is populated only on success, Error only on failure.
type TaskStatusResponse struct {
	TaskID      string          `json:"task_id"`
	Status      string          `json:"status"`
	Result      *WorkflowResult `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}
