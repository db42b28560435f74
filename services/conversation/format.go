package conversation

import (
	"fmt"
	"strings"
	"time"

	"frontdesk/models"
)

var weekdaysES = [...]string{"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"}

var monthsES = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatDayList renders the offered days as a numbered list in the session
// language, for embedding into the assistant's reply context.
func FormatDayList(days []models.DayOffer, language string) string {
	if len(days) == 0 {
		if language == "es" {
			return "No hay días disponibles en los próximos días."
		}
		return "No available days in the coming days."
	}

	var sb strings.Builder
	if language == "es" {
		sb.WriteString("Días disponibles:\n")
	} else {
		sb.WriteString("Available days:\n")
	}
	for i, day := range days {
		date, err := time.Parse("2006-01-02", day.Date)
		if err != nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, FormatDate(date, language)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatSlotList renders the offered slots as a numbered list in the session
// language.
func FormatSlotList(slots []models.SlotOffer, language string) string {
	if len(slots) == 0 {
		if language == "es" {
			return "No hay horarios disponibles en los próximos días."
		}
		return "No available slots in the coming days."
	}

	var sb strings.Builder
	if language == "es" {
		sb.WriteString("Horarios disponibles:\n")
	} else {
		sb.WriteString("Available time slots:\n")
	}
	for i, slot := range slots {
		if language == "es" {
			sb.WriteString(fmt.Sprintf("%d. %s, %d de %s a las %s\n",
				i+1,
				weekdaysES[slot.Start.Weekday()],
				slot.Start.Day(),
				monthsES[slot.Start.Month()-1],
				slot.Start.Format("03:04 PM"),
			))
		} else {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, slot.Display))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatDate renders one date in the session language, without the time.
func FormatDate(date time.Time, language string) string {
	if language == "es" {
		return fmt.Sprintf("%s, %d de %s",
			weekdaysES[date.Weekday()], date.Day(), monthsES[date.Month()-1])
	}
	return date.Format("Monday, January 2")
}

// bookingContext carries per-language prompt fragments appended to the
// tenant's system prompt so the model narrates the booking state truthfully.
func bookingContext(key, language string, args ...any) string {
	templates := map[string]map[string]string{
		"show_days": {
			"en": "\n\nAll required information has been collected. Present these available days and ask the user to pick one by number or name:\n%s",
			"es": "\n\nToda la información necesaria ha sido recopilada. Presenta estos días disponibles y pide al usuario que elija uno por número o nombre:\n%s",
		},
		"show_slots": {
			"en": "\n\nThe user chose %s. Present these available time slots and ask them to pick one by number:\n%s",
			"es": "\n\nEl usuario eligió %s. Presenta estos horarios disponibles y pide que elija uno por número:\n%s",
		},
		"clarify_day": {
			"en": "\n\nThe user's reply did not match any offered day. Politely ask them to choose again from:\n%s",
			"es": "\n\nLa respuesta del usuario no coincide con ningún día ofrecido. Pide amablemente que elija de nuevo entre:\n%s",
		},
		"clarify_slot": {
			"en": "\n\nThe user's reply did not match any offered time. Politely ask them to choose again from:\n%s",
			"es": "\n\nLa respuesta del usuario no coincide con ningún horario ofrecido. Pide amablemente que elija de nuevo entre:\n%s",
		},
		"slot_taken": {
			"en": "\n\nThat time was just booked by someone else. Apologize, explain it is no longer available, and present these fresh options:\n%s",
			"es": "\n\nEse horario acaba de ser reservado por otra persona. Discúlpate, explica que ya no está disponible y presenta estas nuevas opciones:\n%s",
		},
		"confirmed": {
			"en": "\n\nThe appointment is confirmed for %s. Confirm it warmly, repeat the details (%s), and mention a confirmation email is on its way.",
			"es": "\n\nLa cita está confirmada para %s. Confírmala cordialmente, repite los detalles (%s) y menciona que llegará un correo de confirmación.",
		},
		"retry_later": {
			"en": "\n\nA temporary system problem prevented the booking. Apologize and ask the user to try again in a moment. Nothing was booked.",
			"es": "\n\nUn problema temporal del sistema impidió la reserva. Discúlpate y pide al usuario que lo intente de nuevo en un momento. No se reservó nada.",
		},
		"no_days": {
			"en": "\n\nThere are no available days in the booking window. Apologize and suggest checking back later.",
			"es": "\n\nNo hay días disponibles en el período de reserva. Discúlpate y sugiere volver a consultar más tarde.",
		},
		"no_slots": {
			"en": "\n\nThe chosen day has no free times left. Apologize and present the day list again:\n%s",
			"es": "\n\nEl día elegido ya no tiene horarios libres. Discúlpate y presenta de nuevo la lista de días:\n%s",
		},
	}

	byLang, ok := templates[key]
	if !ok {
		return ""
	}
	tmpl, ok := byLang[language]
	if !ok {
		tmpl = byLang["en"]
	}
	return fmt.Sprintf(tmpl, args...)
}

// fieldSummary renders collected fields for confirmation text.
func fieldSummary(fields map[string]string, order []models.FieldSpec) string {
	parts := make([]string, 0, len(order))
	for _, spec := range order {
		if v := fields[spec.Name]; v != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", spec.Name, v))
		}
	}
	return strings.Join(parts, ", ")
}
