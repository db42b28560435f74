package conversation

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"frontdesk/models"
)

// Weekday names accepted in a day pick. Matching is always against both
// languages regardless of the session language, since users mix languages
// mid-conversation. Keys are lowercase and accent-stripped.
var weekdayNames = map[string]time.Weekday{
	"monday": time.Monday, "lunes": time.Monday,
	"tuesday": time.Tuesday, "martes": time.Tuesday,
	"wednesday": time.Wednesday, "miercoles": time.Wednesday,
	"thursday": time.Thursday, "jueves": time.Thursday,
	"friday": time.Friday, "viernes": time.Friday,
	"saturday": time.Saturday, "sabado": time.Saturday,
	"sunday": time.Sunday, "domingo": time.Sunday,
}

var ordinalWords = map[string]int{
	"first": 1, "primero": 1, "primera": 1, "1st": 1,
	"second": 2, "segundo": 2, "segunda": 2, "2nd": 2,
	"third": 3, "tercero": 3, "tercera": 3, "3rd": 3,
	"fourth": 4, "cuarto": 4, "cuarta": 4, "4th": 4,
	"fifth": 5, "quinto": 5, "quinta": 5, "5th": 5,
	"sixth": 6, "sexto": 6, "sexta": 6, "6th": 6,
	"seventh": 7, "septimo": 7, "septima": 7, "7th": 7,
}

var numberPattern = regexp.MustCompile(`\b(\d{1,2})\b`)

var accentReplacer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
)

func normalizeReply(message string) string {
	return accentReplacer.Replace(strings.ToLower(strings.TrimSpace(message)))
}

// parseOrdinal returns the 1-based pick expressed as a digit or ordinal word,
// or 0 when none within [1, max] is present. Scanning follows message order,
// so "first or second" resolves to 1 on every run.
func parseOrdinal(message string, max int) int {
	normalized := normalizeReply(message)

	for _, match := range numberPattern.FindAllString(normalized, -1) {
		n, err := strconv.Atoi(match)
		if err == nil && n >= 1 && n <= max {
			return n
		}
	}
	for _, w := range tokenize(normalized) {
		if n, ok := ordinalWords[w]; ok && n <= max {
			return n
		}
	}
	return 0
}

func tokenize(normalized string) []string {
	return strings.FieldsFunc(normalized, func(r rune) bool {
		return r != '0' && r != '1' && r != '2' && r != '3' && r != '4' &&
			r != '5' && r != '6' && r != '7' && r != '8' && r != '9' &&
			!(r >= 'a' && r <= 'z')
	})
}

func containsWord(normalized, word string) bool {
	for _, w := range tokenize(normalized) {
		if w == word {
			return true
		}
	}
	return false
}

// ResolveDayPick maps a free-text reply onto the offered day list, by 1-based
// index or by weekday name. When a weekday name matches several offered days
// the earliest-dated one wins. Returns the 0-based index or -1.
func ResolveDayPick(message string, days []models.DayOffer) int {
	if len(days) == 0 {
		return -1
	}
	if n := parseOrdinal(message, len(days)); n > 0 {
		return n - 1
	}

	// Walk the offers in their chronological order so a reply naming two
	// weekdays always lands on the earliest date.
	normalized := normalizeReply(message)
	for i, day := range days {
		date, err := time.Parse("2006-01-02", day.Date)
		if err != nil {
			continue
		}
		for word, weekday := range weekdayNames {
			if weekday == date.Weekday() && containsWord(normalized, word) {
				return i
			}
		}
	}
	return -1
}

var timePattern = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm|a\.m\.|p\.m\.)?\b`)

// ResolveSlotPick maps a free-text reply onto the offered slot list, by
// 1-based index or by literal time of day ("2:30", "9 am"). Earliest offered
// match wins on ambiguity. Returns the 0-based index or -1.
func ResolveSlotPick(message string, slots []models.SlotOffer) int {
	if len(slots) == 0 {
		return -1
	}

	normalized := normalizeReply(message)

	// A clock-like reply ("2:30", "9 am") is a time, not a list index.
	looksLikeTime := strings.Contains(normalized, ":") ||
		strings.Contains(normalized, "am") || strings.Contains(normalized, "pm")
	if !looksLikeTime {
		if n := parseOrdinal(message, len(slots)); n > 0 {
			return n - 1
		}
	}
	for _, match := range timePattern.FindAllStringSubmatch(normalized, -1) {
		hour, err := strconv.Atoi(match[1])
		if err != nil || hour > 23 {
			continue
		}
		minute := 0
		if match[2] != "" {
			minute, _ = strconv.Atoi(match[2])
		}
		meridiem := strings.ReplaceAll(match[3], ".", "")
		if meridiem == "pm" && hour < 12 {
			hour += 12
		}
		if meridiem == "am" && hour == 12 {
			hour = 0
		}

		for i, slot := range slots {
			if slot.Start.Hour() == hour && slot.Start.Minute() == minute {
				return i
			}
			// Bare "3" style replies without meridiem: also try afternoon.
			if meridiem == "" && hour < 12 && slot.Start.Hour() == hour+12 && slot.Start.Minute() == minute {
				return i
			}
		}
	}
	return -1
}
