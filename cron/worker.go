package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"frontdesk/config"
	tenantRepo "frontdesk/database/repository/tenant"
	"frontdesk/services/calendar"
	"frontdesk/services/notification"
	"frontdesk/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// InitBookingWorker runs the background worker for post-booking side effects:
// confirmation emails and calendar reconciliation.
func InitBookingWorker(notifSvc notification.Service, tenants tenantRepo.TenantRepository, cal calendar.Service) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendConfirmation, handleConfirmationTask(notifSvc, tenants))
	mux.HandleFunc(tasks.TypeReconcileEvent, handleReconcileTask(cal))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[BookingWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[BookingWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[BookingWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleConfirmationTask(notifSvc notification.Service, tenants tenantRepo.TenantRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.ConfirmationPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ConfirmationHandler] 🔴 Invalid payload: %v", err)
			return err
		}

		tenant, err := tenants.GetByID(ctx, p.TenantID)
		if err != nil {
			log.Printf("[ConfirmationHandler] ❌ Tenant lookup failed for %s: %v", p.TenantID, err)
			return err
		}

		if err := notifSvc.SendConfirmation(ctx, tenant, &p.Appointment, p.Language); err != nil {
			log.Printf("[ConfirmationHandler] ❌ Guest email failed for %s: %v", p.Appointment.ID, err)
			return err
		}

		// Admin notice rides the same task; a failure retries both sends,
		// which SendGrid deduplicates poorly, so only log it.
		if err := notifSvc.SendAdminNotice(ctx, tenant, &p.Appointment); err != nil {
			log.Printf("[ConfirmationHandler] ⚠️ Admin notice failed for %s: %v", p.Appointment.ID, err)
		}
		return nil
	}
}

func handleReconcileTask(cal calendar.Service) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.ReconcilePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReconcileHandler] 🔴 Invalid payload: %v", err)
			return err
		}

		log.Printf("[ReconcileHandler] ⏰ Deleting orphaned event %s (%s)", p.EventRef, p.Reason)

		if err := cal.DeleteEvent(ctx, p.CalendarID, p.EventRef); err != nil {
			log.Printf("[ReconcileHandler] ❌ Delete failed, will retry: %v", err)
			return err
		}
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[BookingWorker] ⚠️ Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
