package conversation

import (
	"strings"
	"testing"
	"time"

	"frontdesk/models"
)

func TestFormatDayListBilingual(t *testing.T) {
	days := []models.DayOffer{
		{Date: "2026-03-02", Weekday: "Monday", SlotCount: 16},
		{Date: "2026-03-03", Weekday: "Tuesday", SlotCount: 12},
	}

	en := FormatDayList(days, "en")
	if !strings.Contains(en, "1. Monday, March 2") {
		t.Errorf("english list missing first entry:\n%s", en)
	}

	es := FormatDayList(days, "es")
	if !strings.Contains(es, "1. Lunes, 2 de marzo") {
		t.Errorf("spanish list missing first entry:\n%s", es)
	}
	if !strings.Contains(es, "2. Martes, 3 de marzo") {
		t.Errorf("spanish list missing second entry:\n%s", es)
	}
}

func TestFormatSlotListBilingual(t *testing.T) {
	start := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	slots := []models.SlotOffer{{
		Start:   start,
		End:     start.Add(30 * time.Minute),
		Display: start.Format("Monday, January 2 at 03:04 PM"),
	}}

	en := FormatSlotList(slots, "en")
	if !strings.Contains(en, "1. Monday, March 2 at 02:30 PM") {
		t.Errorf("english slot list wrong:\n%s", en)
	}

	es := FormatSlotList(slots, "es")
	if !strings.Contains(es, "1. Lunes, 2 de marzo a las 02:30 PM") {
		t.Errorf("spanish slot list wrong:\n%s", es)
	}
}

func TestFormatDate(t *testing.T) {
	date := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(date, "en"); got != "Wednesday, March 4" {
		t.Errorf("en = %q", got)
	}
	if got := FormatDate(date, "es"); got != "Miércoles, 4 de marzo" {
		t.Errorf("es = %q", got)
	}
}
