package calendar

import (
	"context"
	"time"

	"frontdesk/models"
)

// EventInput describes a calendar event to create for a booking.
type EventInput struct {
	Summary       string
	Description   string
	Start         time.Time
	End           time.Time
	AttendeeEmail string
	AttendeeName  string
}

// Service is the calendar read/write capability. The busy-block set it
// reports is the single source of truth for conflict detection.
type Service interface {
	// ListBusy returns the busy intervals of the calendar within [from, to).
	ListBusy(ctx context.Context, calendarID string, from, to time.Time) ([]models.Interval, error)
	// CreateEvent creates an event and returns its reference.
	CreateEvent(ctx context.Context, calendarID string, ev EventInput) (string, error)
	// DeleteEvent removes a previously created event. Used for rollback.
	DeleteEvent(ctx context.Context, calendarID, eventRef string) error
}
