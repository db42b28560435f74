package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	appointmentRepo "frontdesk/database/repository/appointment"
	"frontdesk/models"
	"frontdesk/services/calendar"
	"frontdesk/utils"

	"go.uber.org/zap"
)

// DefaultEngine is the booking transaction engine. Commit order: re-verify
// against a fresh busy read, create the remote event, then persist the local
// record. A partial failure rolls the event back, so the calendar and the
// appointment store cannot drift apart.
type DefaultEngine struct {
	Calendar   calendar.Service
	Repo       appointmentRepo.AppointmentRepository
	Dispatcher Dispatcher
}

// Book commits a slot selection. Outcomes: the appointment (success, or the
// session's existing appointment on re-submission), a conflict error when the
// slot was taken between offer and confirm, or an external failure that
// leaves no local record behind.
func (e *DefaultEngine) Book(ctx context.Context, tenant *models.Tenant, sessionID string, slot models.SlotOffer, fields map[string]string, language string) (*models.Appointment, error) {
	logger := utils.GetLogger().With(
		zap.String("tenantId", tenant.ID),
		zap.String("sessionId", sessionID),
		zap.Time("slotStart", slot.Start),
	)

	// Re-entering a booked session is a no-op.
	existing, err := e.Repo.GetConfirmedBySession(ctx, tenant.ID, sessionID)
	if err != nil {
		return nil, NewExternalError(fmt.Sprintf("appointment lookup failed: %v", err))
	}
	if existing != nil {
		logger.Info("booking already confirmed for session, returning existing appointment",
			zap.String("appointmentId", existing.ID))
		return existing, nil
	}

	// Fresh busy read, never the snapshot the offer was computed from.
	busy, err := e.Calendar.ListBusy(ctx, tenant.CalendarID, slot.Start, slot.End)
	if err != nil {
		return nil, NewExternalError(fmt.Sprintf("busy re-verify failed: %v", err))
	}
	want := models.Interval{Start: slot.Start, End: slot.End}
	for _, block := range busy {
		if want.Overlaps(block) {
			logger.Info("slot taken between offer and confirm")
			return nil, NewConflictError("slot is no longer available")
		}
	}

	// Remote first: the calendar and the appointment store must never
	// disagree about existence.
	eventRef, err := e.Calendar.CreateEvent(ctx, tenant.CalendarID, e.buildEvent(tenant, sessionID, slot, fields))
	if err != nil {
		return nil, NewExternalError(fmt.Sprintf("calendar event create failed: %v", err))
	}

	appt := &models.Appointment{
		TenantID:  tenant.ID,
		SessionID: sessionID,
		Fields:    fields,
		Start:     slot.Start,
		End:       slot.End,
		EventRef:  eventRef,
		Status:    models.AppointmentConfirmed,
	}
	if err := e.Repo.Create(ctx, appt); err != nil {
		e.rollbackEvent(ctx, logger, tenant.CalendarID, eventRef)
		if errors.Is(err, appointmentRepo.ErrDuplicateSlot) {
			logger.Info("lost booking race, rolled back calendar event")
			return nil, NewConflictError("slot was booked concurrently")
		}
		return nil, NewExternalError(fmt.Sprintf("appointment persist failed: %v", err))
	}

	logger.Info("appointment booked", zap.String("appointmentId", appt.ID))

	if e.Dispatcher != nil {
		if err := e.Dispatcher.DispatchConfirmation(appt, language); err != nil {
			// A failed notification never undoes a booking.
			logger.Warn("failed to enqueue confirmation", zap.Error(err))
		}
	}
	return appt, nil
}

// rollbackEvent deletes the orphaned calendar event; when that also fails the
// event is leaked and handed to the reconciliation queue for manual cleanup.
func (e *DefaultEngine) rollbackEvent(ctx context.Context, logger *zap.Logger, calendarID, eventRef string) {
	err := e.Calendar.DeleteEvent(ctx, calendarID, eventRef)
	if err == nil {
		return
	}
	logger.Error("calendar event rollback failed, event leaked",
		zap.String("eventRef", eventRef),
		zap.Error(err),
	)
	if e.Dispatcher != nil {
		if derr := e.Dispatcher.DispatchReconciliation(calendarID, eventRef, "rollback failed after persist error"); derr != nil {
			logger.Error("failed to enqueue event reconciliation", zap.Error(derr))
		}
	}
}

func (e *DefaultEngine) buildEvent(tenant *models.Tenant, sessionID string, slot models.SlotOffer, fields map[string]string) calendar.EventInput {
	name := fields["name"]
	if name == "" {
		name = "Guest"
	}

	var desc strings.Builder
	desc.WriteString("Appointment details:\n")
	for _, f := range tenant.RequiredFields {
		desc.WriteString(fmt.Sprintf("- %s: %s\n", f.Name, valueOr(fields[f.Name], "N/A")))
	}
	desc.WriteString(fmt.Sprintf("- Booked via: AI receptionist\n- Session: %s\n", sessionID))

	return calendar.EventInput{
		Summary:       fmt.Sprintf("Appointment - %s - %s", name, tenant.Name),
		Description:   desc.String(),
		Start:         slot.Start,
		End:           slot.End,
		AttendeeEmail: fields["email"],
		AttendeeName:  name,
	}
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
