package tasks

import (
	"encoding/json"
	"time"

	"frontdesk/models"

	"github.com/hibiken/asynq"
)

const (
	TypeSendConfirmation = "booking:confirmation"
	TypeReconcileEvent   = "booking:reconcile"
)

// ConfirmationPayload carries everything the worker needs to send the guest
// and admin emails without re-reading the appointment.
type ConfirmationPayload struct {
	TenantID    string             `json:"tenantId"`
	Language    string             `json:"language"`
	Appointment models.Appointment `json:"appointment"`
}

// ReconcilePayload identifies a calendar event whose rollback delete failed
// and must be retried until the calendar agrees with the store again.
type ReconcilePayload struct {
	CalendarID string `json:"calendarId"`
	EventRef   string `json:"eventRef"`
	Reason     string `json:"reason"`
}

func NewConfirmationTask(payload ConfirmationPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendConfirmation, b)
	opts := []asynq.Option{asynq.MaxRetry(5), asynq.Timeout(30 * time.Second)}

	return task, opts, nil
}

func NewReconcileTask(payload ReconcilePayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeReconcileEvent, b)
	// Orphaned events block their slot until deleted, so retry hard with
	// growing gaps.
	opts := []asynq.Option{
		asynq.MaxRetry(10),
		asynq.Retention(24 * time.Hour),
	}

	return task, opts, nil
}
