package booking

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"frontdesk/models"
	"frontdesk/services/calendar"
)

// fakeCalendar is an in-memory calendar.Service shared by the availability
// and engine tests. Created events become busy intervals on the next read,
// like the real freebusy endpoint; lagBusy simulates a calendar whose busy
// view has not caught up with a just-created event.
type fakeCalendar struct {
	mu      sync.Mutex
	busy    []models.Interval
	events  map[string]models.Interval
	created []calendar.EventInput
	deleted []string
	nextRef int
	lagBusy bool

	listErr   error
	createErr error
	deleteErr error
}

func (f *fakeCalendar) ListBusy(ctx context.Context, calendarID string, from, to time.Time) ([]models.Interval, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	window := models.Interval{Start: from, End: to}
	var out []models.Interval
	for _, b := range f.busy {
		if b.Overlaps(window) {
			out = append(out, b)
		}
	}
	if !f.lagBusy {
		for _, iv := range f.events {
			if iv.Overlaps(window) {
				out = append(out, iv)
			}
		}
	}
	return out, nil
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, calendarID string, ev calendar.EventInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextRef++
	ref := fmt.Sprintf("evt-%d", f.nextRef)
	if f.events == nil {
		f.events = make(map[string]models.Interval)
	}
	f.events[ref] = models.Interval{Start: ev.Start, End: ev.End}
	f.created = append(f.created, ev)
	return ref, nil
}

func (f *fakeCalendar) DeleteEvent(ctx context.Context, calendarID, eventRef string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.events, eventRef)
	f.deleted = append(f.deleted, eventRef)
	return nil
}

func testTenant() *models.Tenant {
	return &models.Tenant{
		ID:   "tnt-1",
		Name: "Visa Office",
		RequiredFields: []models.FieldSpec{
			{Name: "name", Validator: "name"},
			{Name: "email", Validator: "email"},
			{Name: "phone", Validator: "phone"},
		},
		Hours:           models.BusinessHours{StartHour: 9, EndHour: 17, Timezone: "UTC"},
		SlotDurationMin: 30,
		LookaheadDays:   7,
		MaxSlotsChat:    5,
		MaxSlotsVoice:   3,
		CalendarID:      "cal-1",
	}
}

// Monday 2026-03-02.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func newAvailability(cal *fakeCalendar, now time.Time) *DefaultAvailabilityEngine {
	return &DefaultAvailabilityEngine{
		Calendar: cal,
		Now:      func() time.Time { return now },
	}
}

func TestGetDaysSkipsWeekends(t *testing.T) {
	tenant := testTenant()
	eng := newAvailability(&fakeCalendar{}, monday)

	days, err := eng.GetDays(context.Background(), tenant, monday)
	if err != nil {
		t.Fatalf("GetDays: %v", err)
	}
	if len(days) != 5 {
		t.Fatalf("expected 5 weekdays in a 7-day window, got %d", len(days))
	}
	want := []string{"2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05", "2026-03-06"}
	for i, day := range days {
		if day.Date != want[i] {
			t.Errorf("day %d: got %s, want %s", i, day.Date, want[i])
		}
	}
	// 9:00 to 17:00 at 30 minutes tiles 16 slots.
	if days[0].SlotCount != 16 {
		t.Errorf("expected 16 free slots on an empty day, got %d", days[0].SlotCount)
	}
}

func TestGetDaysExcludesFullyBookedDay(t *testing.T) {
	tenant := testTenant()
	// Tuesday fully busy.
	cal := &fakeCalendar{busy: []models.Interval{{
		Start: time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 3, 17, 0, 0, 0, time.UTC),
	}}}
	eng := newAvailability(cal, monday)

	days, err := eng.GetDays(context.Background(), tenant, monday)
	if err != nil {
		t.Fatalf("GetDays: %v", err)
	}
	for _, day := range days {
		if day.Date == "2026-03-03" {
			t.Fatal("fully booked day was offered")
		}
	}
	if len(days) != 4 {
		t.Fatalf("expected 4 days, got %d", len(days))
	}
}

func TestGetSlotsTilesFromWindowStart(t *testing.T) {
	tenant := testTenant()
	tenant.MaxSlotsChat = 0 // uncapped for this test
	eng := newAvailability(&fakeCalendar{}, monday)

	slots, err := eng.GetSlots(context.Background(), tenant, "2026-03-02", ChannelChat)
	if err != nil {
		t.Fatalf("GetSlots: %v", err)
	}
	if len(slots) != 16 {
		t.Fatalf("expected 16 slots, got %d", len(slots))
	}
	first := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	if !slots[0].Start.Equal(first) {
		t.Errorf("first slot starts at %v, want %v", slots[0].Start, first)
	}
	last := time.Date(2026, 3, 2, 16, 30, 0, 0, time.UTC)
	if !slots[15].Start.Equal(last) {
		t.Errorf("last slot starts at %v, want %v", slots[15].Start, last)
	}
}

func TestGetSlotsExcludesBusyOverlap(t *testing.T) {
	tenant := testTenant()
	tenant.MaxSlotsChat = 0
	// A 9:15-9:45 block straddles two slots; both must go, and no slot is
	// moved to 9:45 to fill the gap.
	cal := &fakeCalendar{busy: []models.Interval{{
		Start: time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 2, 9, 45, 0, 0, time.UTC),
	}}}
	eng := newAvailability(cal, monday)

	slots, err := eng.GetSlots(context.Background(), tenant, "2026-03-02", ChannelChat)
	if err != nil {
		t.Fatalf("GetSlots: %v", err)
	}
	if len(slots) != 14 {
		t.Fatalf("expected 14 slots, got %d", len(slots))
	}
	next := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	if !slots[0].Start.Equal(next) {
		t.Errorf("first free slot starts at %v, want %v", slots[0].Start, next)
	}
}

func TestGetSlotsDropsPastSlots(t *testing.T) {
	tenant := testTenant()
	tenant.MaxSlotsChat = 0
	now := time.Date(2026, 3, 2, 12, 5, 0, 0, time.UTC)
	eng := newAvailability(&fakeCalendar{}, now)

	slots, err := eng.GetSlots(context.Background(), tenant, "2026-03-02", ChannelChat)
	if err != nil {
		t.Fatalf("GetSlots: %v", err)
	}
	first := time.Date(2026, 3, 2, 12, 30, 0, 0, time.UTC)
	if !slots[0].Start.Equal(first) {
		t.Errorf("first slot starts at %v, want %v", slots[0].Start, first)
	}
	if len(slots) != 9 {
		t.Fatalf("expected 9 remaining slots, got %d", len(slots))
	}
}

func TestGetSlotsChannelCaps(t *testing.T) {
	tenant := testTenant()
	eng := newAvailability(&fakeCalendar{}, monday)

	chat, err := eng.GetSlots(context.Background(), tenant, "2026-03-02", ChannelChat)
	if err != nil {
		t.Fatalf("GetSlots chat: %v", err)
	}
	if len(chat) != tenant.MaxSlotsChat {
		t.Errorf("chat slots: got %d, want %d", len(chat), tenant.MaxSlotsChat)
	}

	voice, err := eng.GetSlots(context.Background(), tenant, "2026-03-02", ChannelVoice)
	if err != nil {
		t.Fatalf("GetSlots voice: %v", err)
	}
	if len(voice) != tenant.MaxSlotsVoice {
		t.Errorf("voice slots: got %d, want %d", len(voice), tenant.MaxSlotsVoice)
	}
	// Both caps keep the earliest slots.
	if !voice[0].Start.Equal(chat[0].Start) {
		t.Error("chat and voice lists should share the same earliest slot")
	}
}

func TestAvailabilityDeterministic(t *testing.T) {
	tenant := testTenant()
	cal := &fakeCalendar{busy: []models.Interval{{
		Start: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
	}}}
	eng := newAvailability(cal, monday)

	a, err := eng.GetSlots(context.Background(), tenant, "2026-03-02", ChannelChat)
	if err != nil {
		t.Fatalf("GetSlots: %v", err)
	}
	b, err := eng.GetSlots(context.Background(), tenant, "2026-03-02", ChannelChat)
	if err != nil {
		t.Fatalf("GetSlots: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("identical busy snapshot produced different slot lists")
	}
}
