package tasks

import (
	"fmt"

	"frontdesk/config"
	"frontdesk/models"
	"frontdesk/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// AsynqDispatcher enqueues booking side effects onto the shared Redis task
// queue. Enqueue errors are returned so callers can log them, but bookings
// never fail on dispatch.
type AsynqDispatcher struct {
	client *asynq.Client
}

func NewAsynqDispatcher() *AsynqDispatcher {
	return &AsynqDispatcher{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisTaskDB,
		}),
	}
}

func (d *AsynqDispatcher) DispatchConfirmation(appt *models.Appointment, language string) error {
	task, opts, err := NewConfirmationTask(ConfirmationPayload{
		TenantID:    appt.TenantID,
		Language:    language,
		Appointment: *appt,
	})
	if err != nil {
		return fmt.Errorf("build confirmation task: %w", err)
	}
	info, err := d.client.Enqueue(task, opts...)
	if err != nil {
		return fmt.Errorf("enqueue confirmation task: %w", err)
	}
	utils.GetLogger().Debug("confirmation task enqueued",
		zap.String("taskId", info.ID),
		zap.String("appointmentId", appt.ID))
	return nil
}

func (d *AsynqDispatcher) DispatchReconciliation(calendarID, eventRef, reason string) error {
	task, opts, err := NewReconcileTask(ReconcilePayload{
		CalendarID: calendarID,
		EventRef:   eventRef,
		Reason:     reason,
	})
	if err != nil {
		return fmt.Errorf("build reconcile task: %w", err)
	}
	info, err := d.client.Enqueue(task, opts...)
	if err != nil {
		return fmt.Errorf("enqueue reconcile task: %w", err)
	}
	utils.GetLogger().Warn("calendar event queued for reconciliation",
		zap.String("taskId", info.ID),
		zap.String("eventRef", eventRef),
		zap.String("reason", reason))
	return nil
}

func (d *AsynqDispatcher) Close() error {
	return d.client.Close()
}
