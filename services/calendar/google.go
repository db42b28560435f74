package calendar

import (
	"context"
	"fmt"
	"time"

	"frontdesk/models"
	"frontdesk/utils"

	"go.uber.org/zap"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleCalendarService implements Service against the Google Calendar API.
type GoogleCalendarService struct {
	svc     *gcal.Service
	timeout time.Duration
}

// NewGoogleCalendarService builds a calendar client from service-account
// credentials. Every call carries an explicit timeout; a timed-out read is an
// error, never "available".
func NewGoogleCalendarService(credentialsFile string, timeout time.Duration) (*GoogleCalendarService, error) {
	ctx := context.Background()
	svc, err := gcal.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gcal.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GoogleCalendarService{svc: svc, timeout: timeout}, nil
}

// ListBusy queries the freebusy endpoint for the calendar's busy intervals.
func (g *GoogleCalendarService) ListBusy(ctx context.Context, calendarID string, from, to time.Time) ([]models.Interval, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := &gcal.FreeBusyRequest{
		TimeMin: from.Format(time.RFC3339),
		TimeMax: to.Format(time.RFC3339),
		Items:   []*gcal.FreeBusyRequestItem{{Id: calendarID}},
	}
	resp, err := g.svc.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("freebusy query failed: %w", err)
	}

	cal, ok := resp.Calendars[calendarID]
	if !ok {
		return nil, fmt.Errorf("calendar %s missing from freebusy response", calendarID)
	}

	busy := make([]models.Interval, 0, len(cal.Busy))
	for _, period := range cal.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid busy start %q: %w", period.Start, err)
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			return nil, fmt.Errorf("invalid busy end %q: %w", period.End, err)
		}
		busy = append(busy, models.Interval{Start: start, End: end})
	}
	return busy, nil
}

// CreateEvent inserts a calendar event and returns its ID.
func (g *GoogleCalendarService) CreateEvent(ctx context.Context, calendarID string, ev EventInput) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	event := &gcal.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       &gcal.EventDateTime{DateTime: ev.Start.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: ev.End.Format(time.RFC3339)},
	}
	if ev.AttendeeEmail != "" {
		event.Attendees = []*gcal.EventAttendee{{
			Email:       ev.AttendeeEmail,
			DisplayName: ev.AttendeeName,
		}}
	}

	created, err := g.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("event insert failed: %w", err)
	}

	utils.GetLogger().Info("calendar event created",
		zap.String("calendarId", calendarID),
		zap.String("eventId", created.Id),
	)
	return created.Id, nil
}

// DeleteEvent removes an event by reference.
func (g *GoogleCalendarService) DeleteEvent(ctx context.Context, calendarID, eventRef string) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.svc.Events.Delete(calendarID, eventRef).Context(ctx).Do(); err != nil {
		return fmt.Errorf("event delete failed: %w", err)
	}
	return nil
}
