package booking

import (
	"context"
	"time"

	"frontdesk/models"
)

// Channel selects which offer cap applies; chat and voice use different caps
// from the same tenant config.
type Channel string

const (
	ChannelChat  Channel = "chat"
	ChannelVoice Channel = "voice"
)

// AvailabilityEngine computes offerable days and slots for a tenant.
// Offers are derived fresh per request and carry no identity beyond their
// timestamps.
type AvailabilityEngine interface {
	// GetDays returns days with at least one free slot within the tenant's
	// lookahead window, weekends excluded, chronological.
	GetDays(ctx context.Context, tenant *models.Tenant, asOf time.Time) ([]models.DayOffer, error)
	// GetSlots returns the free slots of one day, tiled from the business-hour
	// window at the tenant's slot duration, capped per channel.
	GetSlots(ctx context.Context, tenant *models.Tenant, day string, channel Channel) ([]models.SlotOffer, error)
}

// Engine converts a slot selection into a durable appointment and a calendar
// event, guaranteeing at most one booking per slot under races.
type Engine interface {
	Book(ctx context.Context, tenant *models.Tenant, sessionID string, slot models.SlotOffer, fields map[string]string, language string) (*models.Appointment, error)
}

// Dispatcher hands side effects of a finished booking to the background
// worker. Failures are logged, never propagated into the booking outcome.
type Dispatcher interface {
	DispatchConfirmation(appt *models.Appointment, language string) error
	DispatchReconciliation(calendarID, eventRef, reason string) error
}
