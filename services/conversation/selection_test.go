package conversation

import (
	"testing"
	"time"

	"frontdesk/models"
)

func offeredDays() []models.DayOffer {
	return []models.DayOffer{
		{Date: "2026-03-02", Weekday: "Monday", SlotCount: 16},
		{Date: "2026-03-03", Weekday: "Tuesday", SlotCount: 12},
		{Date: "2026-03-04", Weekday: "Wednesday", SlotCount: 16},
		{Date: "2026-03-09", Weekday: "Monday", SlotCount: 16},
	}
}

func offeredSlots() []models.SlotOffer {
	mk := func(hour, min int) models.SlotOffer {
		start := time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
		return models.SlotOffer{
			Start:   start,
			End:     start.Add(30 * time.Minute),
			Display: start.Format("Monday, January 2 at 03:04 PM"),
		}
	}
	return []models.SlotOffer{mk(9, 0), mk(9, 30), mk(14, 30), mk(15, 0)}
}

func TestResolveDayPick(t *testing.T) {
	days := offeredDays()
	cases := []struct {
		message string
		want    int
	}{
		{"2", 1},
		{"the 3rd one", 2},
		{"segundo", 1},
		{"wednesday", 2},
		{"el miércoles", 2},
		{"miercoles por favor", 2},
		{"monday", 0}, // two Mondays offered; earliest wins
		{"saturday", -1},
		{"whenever works", -1},
		{"99", -1},
	}
	for _, tc := range cases {
		if got := ResolveDayPick(tc.message, days); got != tc.want {
			t.Errorf("ResolveDayPick(%q) = %d, want %d", tc.message, got, tc.want)
		}
	}
}

func TestResolveDayPickAmbiguousWeekdayIsEarliestAndStable(t *testing.T) {
	days := offeredDays()
	// A reply naming two offered weekdays must resolve to the earliest date,
	// on every run.
	for i := 0; i < 200; i++ {
		if got := ResolveDayPick("monday or tuesday works", days); got != 0 {
			t.Fatalf("iteration %d: ResolveDayPick = %d, want 0 (earliest)", i, got)
		}
		if got := ResolveDayPick("tuesday or wednesday", days); got != 1 {
			t.Fatalf("iteration %d: ResolveDayPick = %d, want 1 (earliest)", i, got)
		}
	}
}

func TestResolveDayPickTwoOrdinalsIsStable(t *testing.T) {
	days := offeredDays()
	// Ordinal words are scanned in message order, so the first one wins.
	for i := 0; i < 200; i++ {
		if got := ResolveDayPick("first or second", days); got != 0 {
			t.Fatalf("iteration %d: ResolveDayPick = %d, want 0", i, got)
		}
		if got := ResolveDayPick("segundo o tercero", days); got != 1 {
			t.Fatalf("iteration %d: ResolveDayPick = %d, want 1", i, got)
		}
	}
}

func TestResolveDayPickEmptyList(t *testing.T) {
	if got := ResolveDayPick("1", nil); got != -1 {
		t.Errorf("pick against empty list = %d, want -1", got)
	}
}

func TestResolveSlotPick(t *testing.T) {
	slots := offeredSlots()
	cases := []struct {
		message string
		want    int
	}{
		{"2", 1},
		{"the second one", 1},
		{"la primera", 0},
		{"9 am", 0},
		{"9:30", 1},
		{"2:30", 2}, // bare afternoon time maps onto 14:30
		{"14:30", 2},
		{"3 pm", 3},
		{"midnight please", -1},
		{"7", -1}, // index out of range and no 7:00 slot
	}
	for _, tc := range cases {
		if got := ResolveSlotPick(tc.message, slots); got != tc.want {
			t.Errorf("ResolveSlotPick(%q) = %d, want %d", tc.message, got, tc.want)
		}
	}
}

func TestResolveSlotPickPrefersTimeOverIndex(t *testing.T) {
	slots := offeredSlots()
	// "2:30" must never be read as list index 2.
	if got := ResolveSlotPick("2:30", slots); got != 2 {
		t.Errorf("clock-like reply resolved to %d, want 2", got)
	}
}
