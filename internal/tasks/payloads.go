package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type constants, shared by queue producers and consumers.
const (
	TypeJobAlert          = "job:alert"
	TypeApplicationStatus = "application:status"
)

// JobAlertPayload identifies a freshly posted job whose matching seekers
// should be notified.
type JobAlertPayload struct {
	JobID         uint   `json:"job_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewJobAlertTask builds a fan-out task for a new job posting.
func NewJobAlertTask(jobID uint, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(JobAlertPayload{
		JobID:         jobID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeJobAlert, payload), nil
}

// ApplicationStatusPayload describes an application whose status changed.
type ApplicationStatusPayload struct {
	ApplicationID uint   `json:"application_id"`
	NewStatus     string `json:"new_status"`
	CorrelationID string `json:"correlation_id"`
}

// NewApplicationStatusTask builds a notification task for a status change.
func NewApplicationStatusTask(applicationID uint, newStatus, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ApplicationStatusPayload{
		ApplicationID: applicationID,
		NewStatus:     newStatus,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeApplicationStatus, payload), nil
}
