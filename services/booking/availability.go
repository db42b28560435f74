package booking

import (
	"context"
	"fmt"
	"time"

	"frontdesk/models"
	"frontdesk/services/calendar"
)

// DefaultAvailabilityEngine computes offers from the tenant's business-hour
// rules and the calendar's busy blocks. Given an identical busy snapshot,
// output is identical: slots are tiled from the window start at fixed
// duration, never snapped to busy-block edges, and sorted chronologically.
type DefaultAvailabilityEngine struct {
	Calendar calendar.Service
	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

func (e *DefaultAvailabilityEngine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// GetDays returns the offerable days within the tenant's lookahead window.
// Weekends and fully booked days are excluded.
func (e *DefaultAvailabilityEngine) GetDays(ctx context.Context, tenant *models.Tenant, asOf time.Time) ([]models.DayOffer, error) {
	loc := tenant.Location()
	asOf = asOf.In(loc)

	windowStart := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, loc)
	windowEnd := windowStart.AddDate(0, 0, tenant.LookaheadDays)

	busy, err := e.Calendar.ListBusy(ctx, tenant.CalendarID, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to read busy blocks: %w", err)
	}

	var days []models.DayOffer
	for offset := 0; offset < tenant.LookaheadDays; offset++ {
		day := windowStart.AddDate(0, 0, offset)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		slots := tileDay(tenant, day, busy, asOf)
		if len(slots) == 0 {
			continue
		}
		days = append(days, models.DayOffer{
			Date:      day.Format("2006-01-02"),
			Weekday:   day.Weekday().String(),
			SlotCount: len(slots),
		})
	}
	return days, nil
}

// GetSlots returns the free slots of one day, capped at the channel's
// configured maximum.
func (e *DefaultAvailabilityEngine) GetSlots(ctx context.Context, tenant *models.Tenant, day string, channel Channel) ([]models.SlotOffer, error) {
	loc := tenant.Location()
	date, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid day %q: %w", day, err)
	}

	dayStart := date
	dayEnd := date.AddDate(0, 0, 1)

	busy, err := e.Calendar.ListBusy(ctx, tenant.CalendarID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to read busy blocks: %w", err)
	}

	slots := tileDay(tenant, date, busy, e.now().In(loc))

	max := tenant.MaxSlotsChat
	if channel == ChannelVoice {
		max = tenant.MaxSlotsVoice
	}
	if max > 0 && len(slots) > max {
		slots = slots[:max]
	}
	return slots, nil
}

// tileDay tiles one day's business-hour window into fixed-duration slots and
// drops slots overlapping a busy block or already past.
func tileDay(tenant *models.Tenant, day time.Time, busy []models.Interval, now time.Time) []models.SlotOffer {
	loc := tenant.Location()
	duration := time.Duration(tenant.SlotDurationMin) * time.Minute
	if duration <= 0 {
		return nil
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), tenant.Hours.StartHour, 0, 0, 0, loc)
	end := time.Date(day.Year(), day.Month(), day.Day(), tenant.Hours.EndHour, 0, 0, 0, loc)

	var slots []models.SlotOffer
	for cursor := start; !cursor.Add(duration).After(end); cursor = cursor.Add(duration) {
		slot := models.Interval{Start: cursor, End: cursor.Add(duration)}

		if !slot.Start.After(now) {
			continue
		}
		free := true
		for _, block := range busy {
			if slot.Overlaps(block) {
				free = false
				break
			}
		}
		if !free {
			continue
		}
		slots = append(slots, models.SlotOffer{
			Start:   slot.Start,
			End:     slot.End,
			Display: slot.Start.Format("Monday, January 2 at 03:04 PM"),
		})
	}
	return slots
}
