package notification

import (
	"context"

	"frontdesk/models"
)

// Service delivers booking-related messages to guests and tenant staff.
// Delivery sits outside the booking transaction: a send failure never fails
// or unwinds a confirmed appointment.
type Service interface {
	// SendConfirmation emails the guest their appointment details in the
	// language the conversation settled on.
	SendConfirmation(ctx context.Context, tenant *models.Tenant, appt *models.Appointment, language string) error
	// SendAdminNotice emails the tenant's admin address about a new booking.
	SendAdminNotice(ctx context.Context, tenant *models.Tenant, appt *models.Appointment) error
}
