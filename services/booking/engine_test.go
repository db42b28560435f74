package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	appointmentRepo "frontdesk/database/repository/appointment"
	"frontdesk/models"
)

// fakeApptRepo enforces the same one-confirmed-per-slot invariant as the
// Mongo unique index.
type fakeApptRepo struct {
	mu        sync.Mutex
	appts     []*models.Appointment
	nextID    int
	createErr error
}

func (f *fakeApptRepo) Create(ctx context.Context, appt *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.appts {
		if existing.TenantID == appt.TenantID && existing.Start.Equal(appt.Start) &&
			existing.Status == models.AppointmentConfirmed {
			return appointmentRepo.ErrDuplicateSlot
		}
	}
	f.nextID++
	appt.ID = fmt.Sprintf("appt-%d", f.nextID)
	appt.CreatedAt = time.Now()
	stored := *appt
	f.appts = append(f.appts, &stored)
	return nil
}

func (f *fakeApptRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeApptRepo) GetConfirmedBySession(ctx context.Context, tenantID, sessionID string) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appts {
		if a.TenantID == tenantID && a.SessionID == sessionID && a.Status == models.AppointmentConfirmed {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeApptRepo) ListConfirmedInRange(ctx context.Context, tenantID string, from, to time.Time) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, a := range f.appts {
		if a.TenantID == tenantID && a.Status == models.AppointmentConfirmed &&
			!a.Start.Before(from) && a.Start.Before(to) {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakeDispatcher struct {
	mu            sync.Mutex
	confirmations []string
	reconciled    []string
}

func (f *fakeDispatcher) DispatchConfirmation(appt *models.Appointment, language string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmations = append(f.confirmations, appt.ID)
	return nil
}

func (f *fakeDispatcher) DispatchReconciliation(calendarID, eventRef, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reconciled = append(f.reconciled, eventRef)
	return nil
}

func testSlot() models.SlotOffer {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	return models.SlotOffer{
		Start:   start,
		End:     start.Add(30 * time.Minute),
		Display: "Monday, March 2 at 10:00 AM",
	}
}

func testFields() map[string]string {
	return map[string]string{
		"name":  "Ana Garcia",
		"email": "ana@example.com",
		"phone": "+15551234567",
	}
}

func TestBookSuccess(t *testing.T) {
	tenant := testTenant()
	cal := &fakeCalendar{}
	repo := &fakeApptRepo{}
	disp := &fakeDispatcher{}
	eng := &DefaultEngine{Calendar: cal, Repo: repo, Dispatcher: disp}

	appt, err := eng.Book(context.Background(), tenant, "sess-1", testSlot(), testFields(), "en")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if appt.Status != models.AppointmentConfirmed {
		t.Errorf("status = %s, want confirmed", appt.Status)
	}
	if appt.EventRef == "" {
		t.Error("appointment has no calendar event reference")
	}
	if len(cal.created) != 1 {
		t.Errorf("created %d events, want 1", len(cal.created))
	}
	if len(disp.confirmations) != 1 {
		t.Errorf("dispatched %d confirmations, want 1", len(disp.confirmations))
	}
}

func TestBookIdempotentPerSession(t *testing.T) {
	tenant := testTenant()
	cal := &fakeCalendar{}
	repo := &fakeApptRepo{}
	eng := &DefaultEngine{Calendar: cal, Repo: repo, Dispatcher: &fakeDispatcher{}}

	first, err := eng.Book(context.Background(), tenant, "sess-1", testSlot(), testFields(), "en")
	if err != nil {
		t.Fatalf("first Book: %v", err)
	}
	second, err := eng.Book(context.Background(), tenant, "sess-1", testSlot(), testFields(), "en")
	if err != nil {
		t.Fatalf("second Book: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("re-submission created a second appointment: %s vs %s", second.ID, first.ID)
	}
	if len(cal.created) != 1 {
		t.Errorf("created %d events, want 1", len(cal.created))
	}
}

func TestBookConflictOnBusyReVerify(t *testing.T) {
	tenant := testTenant()
	slot := testSlot()
	cal := &fakeCalendar{busy: []models.Interval{{Start: slot.Start, End: slot.End}}}
	eng := &DefaultEngine{Calendar: cal, Repo: &fakeApptRepo{}, Dispatcher: &fakeDispatcher{}}

	_, err := eng.Book(context.Background(), tenant, "sess-1", slot, testFields(), "en")
	if !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(cal.created) != 0 {
		t.Error("event was created despite busy slot")
	}
}

func TestBookRollsBackEventOnDuplicate(t *testing.T) {
	tenant := testTenant()
	cal := &fakeCalendar{lagBusy: true}
	repo := &fakeApptRepo{}
	eng := &DefaultEngine{Calendar: cal, Repo: repo, Dispatcher: &fakeDispatcher{}}

	if _, err := eng.Book(context.Background(), tenant, "sess-1", testSlot(), testFields(), "en"); err != nil {
		t.Fatalf("first Book: %v", err)
	}
	// Different session, same slot; the lagging busy read does not know about
	// the first booking yet, so the store has to arbitrate.
	_, err := eng.Book(context.Background(), tenant, "sess-2", testSlot(), testFields(), "en")
	if !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(cal.created) != 2 {
		t.Errorf("created %d events, want 2", len(cal.created))
	}
	if len(cal.deleted) != 1 {
		t.Errorf("deleted %d events, want 1 rollback", len(cal.deleted))
	}
}

func TestBookedSlotDisappearsFromOffers(t *testing.T) {
	tenant := testTenant()
	tenant.MaxSlotsChat = 0
	cal := &fakeCalendar{}
	eng := &DefaultEngine{Calendar: cal, Repo: &fakeApptRepo{}, Dispatcher: &fakeDispatcher{}}
	avail := newAvailability(cal, monday)

	before, err := avail.GetSlots(context.Background(), tenant, "2026-03-02", ChannelChat)
	if err != nil {
		t.Fatalf("GetSlots before booking: %v", err)
	}

	slot := testSlot()
	if _, err := eng.Book(context.Background(), tenant, "sess-1", slot, testFields(), "en"); err != nil {
		t.Fatalf("Book: %v", err)
	}

	after, err := avail.GetSlots(context.Background(), tenant, "2026-03-02", ChannelChat)
	if err != nil {
		t.Fatalf("GetSlots after booking: %v", err)
	}
	if len(after) != len(before)-1 {
		t.Errorf("offered %d slots after booking, want %d", len(after), len(before)-1)
	}
	for _, s := range after {
		if s.Start.Equal(slot.Start) {
			t.Errorf("booked slot %v was offered again", slot.Start)
		}
	}
}

func TestBookRollsBackEventOnPersistFailure(t *testing.T) {
	tenant := testTenant()
	cal := &fakeCalendar{}
	repo := &fakeApptRepo{createErr: errors.New("write concern timeout")}
	eng := &DefaultEngine{Calendar: cal, Repo: repo, Dispatcher: &fakeDispatcher{}}

	_, err := eng.Book(context.Background(), tenant, "sess-1", testSlot(), testFields(), "en")
	if !IsExternalFailure(err) {
		t.Fatalf("expected external failure, got %v", err)
	}
	if len(cal.deleted) != 1 {
		t.Errorf("deleted %d events, want 1 rollback", len(cal.deleted))
	}
}

func TestBookQueuesReconciliationWhenRollbackFails(t *testing.T) {
	tenant := testTenant()
	cal := &fakeCalendar{deleteErr: errors.New("calendar unreachable")}
	repo := &fakeApptRepo{createErr: errors.New("write concern timeout")}
	disp := &fakeDispatcher{}
	eng := &DefaultEngine{Calendar: cal, Repo: repo, Dispatcher: disp}

	_, err := eng.Book(context.Background(), tenant, "sess-1", testSlot(), testFields(), "en")
	if !IsExternalFailure(err) {
		t.Fatalf("expected external failure, got %v", err)
	}
	if len(disp.reconciled) != 1 {
		t.Errorf("queued %d reconciliations, want 1", len(disp.reconciled))
	}
}

func TestBookConcurrentSameSlot(t *testing.T) {
	tenant := testTenant()
	cal := &fakeCalendar{}
	repo := &fakeApptRepo{}
	eng := &DefaultEngine{Calendar: cal, Repo: repo, Dispatcher: &fakeDispatcher{}}

	const racers = 8
	results := make(chan error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sessionID := fmt.Sprintf("sess-%d", n)
			_, err := eng.Book(context.Background(), tenant, sessionID, testSlot(), testFields(), "en")
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case IsConflict(err):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("%d bookings succeeded, want exactly 1", wins)
	}
	if conflicts != racers-1 {
		t.Errorf("%d conflicts, want %d", conflicts, racers-1)
	}
	if len(repo.appts) != 1 {
		t.Errorf("%d appointments persisted, want 1", len(repo.appts))
	}
	// Every loser rolled its event back.
	if len(cal.created)-len(cal.deleted) != 1 {
		t.Errorf("%d events remain, want 1", len(cal.created)-len(cal.deleted))
	}
}
