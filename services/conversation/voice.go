package conversation

import (
	"context"
	"fmt"
	"time"

	"frontdesk/models"
	"frontdesk/services/booking"
	"frontdesk/utils"

	"go.uber.org/zap"
)

// handleVoiceFunction services the structured function calls a voice agent
// makes mid-call. Unlike the chat path, replies are deterministic template
// text (the voice layer does its own speech synthesis) and identity fields
// arrive pre-structured instead of being extracted from free text.
func (o *Orchestrator) handleVoiceFunction(ctx context.Context, logger *zap.Logger, tenant *models.Tenant, session *models.Session, input models.TurnInput) (*models.TurnResult, error) {
	if lang := input.Fields["language"]; lang == "en" || lang == "es" {
		session.Language = lang
	}
	if session.Language == "" {
		session.Language = "en"
	}
	language := session.Language

	mergeVoiceFields(tenant, session, input.Fields)

	result := &models.TurnResult{Language: language}

	switch input.Function {
	case models.VoiceFuncGetDays:
		days, err := o.Availability.GetDays(ctx, tenant, o.now())
		if err != nil {
			return nil, err
		}
		session.OfferedDays = days
		if len(days) == 0 {
			result.Reply = bookingContext("no_days", language)
		} else {
			session.Phase = models.PhaseAwaitingDay
			result.Reply = bookingContext("show_days", language, FormatDayList(days, language))
		}

	case models.VoiceFuncGetSlots:
		day, ok := pickDay(session, input.DayNumber)
		if !ok {
			result.Clarification = true
			result.Reply = bookingContext("clarify_day", language,
				FormatDayList(session.OfferedDays, language))
			break
		}
		slots, err := o.Availability.GetSlots(ctx, tenant, day.Date, booking.ChannelVoice)
		if err != nil {
			return nil, err
		}
		if len(slots) == 0 {
			result.Clarification = true
			result.Reply = bookingContext("no_slots", language,
				FormatDayList(session.OfferedDays, language))
			break
		}
		session.Phase = models.PhaseAwaitingSlot
		session.SelectedDate = day.Date
		session.OfferedSlots = slots
		date, _ := time.Parse("2006-01-02", day.Date)
		result.Reply = bookingContext("show_slots", language,
			FormatDate(date, language), FormatSlotList(slots, language))

	case models.VoiceFuncBook:
		if session.Phase == models.PhaseBooked {
			result.Booking = &models.BookingSummary{AppointmentID: session.AppointmentID}
			result.Reply = bookingContext("confirmed", language,
				session.SelectedDate, fieldSummary(session.Collected, tenant.RequiredFields))
			break
		}
		if missing := missingFieldNames(tenant, session.Collected); len(missing) > 0 {
			result.Missing = missing
			result.Clarification = true
			result.Reply = voiceMissingFields(missing, language)
			break
		}
		slot, ok := pickSlot(session, input.SlotNumber)
		if !ok {
			result.Clarification = true
			result.Reply = bookingContext("clarify_slot", language,
				FormatSlotList(session.OfferedSlots, language))
			break
		}
		appt, err := o.Engine.Book(ctx, tenant, session.ID, slot, session.Collected, language)
		if err != nil {
			if booking.IsConflict(err) {
				fresh, ferr := o.Availability.GetSlots(ctx, tenant, session.SelectedDate, booking.ChannelVoice)
				if ferr != nil {
					return nil, ferr
				}
				session.OfferedSlots = fresh
				result.SlotTaken = true
				logger.Info("offer went stale at confirm, re-offering")
				result.Reply = bookingContext("slot_taken", language,
					FormatSlotList(fresh, language))
				break
			}
			if booking.IsExternalFailure(err) {
				// Do not persist; the agent can retry the same call.
				result.Phase = session.Phase
				result.Collected = session.Collected
				result.Reply = bookingContext("retry_later", language)
				return result, nil
			}
			return nil, err
		}
		session.Phase = models.PhaseBooked
		session.AppointmentID = appt.ID
		session.OfferedDays = nil
		session.OfferedSlots = nil
		result.Booking = &models.BookingSummary{AppointmentID: appt.ID, Slot: &slot}
		result.Reply = bookingContext("confirmed", language,
			slot.Display, fieldSummary(session.Collected, tenant.RequiredFields))

	default:
		return nil, fmt.Errorf("unknown voice function %q", input.Function)
	}

	result.Phase = session.Phase
	result.Collected = session.Collected
	result.OfferedDays = session.OfferedDays
	result.OfferedSlots = session.OfferedSlots
	if result.Missing == nil {
		result.Missing = missingFieldNames(tenant, session.Collected)
	}

	session.Turns = append(session.Turns, models.Turn{
		Role: "assistant", Content: result.Reply, Timestamp: o.now(),
	})
	if err := o.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return result, nil
}

// mergeVoiceFields applies structured fields through the same validators and
// non-empty merge policy as the extractor, so both channels converge on the
// same collected state.
func mergeVoiceFields(tenant *models.Tenant, session *models.Session, fields map[string]string) {
	if session.Collected == nil {
		session.Collected = make(map[string]string)
	}
	for _, spec := range tenant.RequiredFields {
		raw, ok := fields[spec.Name]
		if !ok || raw == "" {
			continue
		}
		cleaned := cleanFieldValue(spec, raw)
		if cleaned == "" {
			utils.GetLogger().Debug("voice field failed validation",
				zap.String("field", spec.Name))
			continue
		}
		session.Collected[spec.Name] = cleaned
	}
}

// pickDay maps a spoken 1-based day number onto the offered list.
func pickDay(session *models.Session, n int) (models.DayOffer, bool) {
	if n < 1 || n > len(session.OfferedDays) {
		return models.DayOffer{}, false
	}
	return session.OfferedDays[n-1], true
}

func pickSlot(session *models.Session, n int) (models.SlotOffer, bool) {
	if n < 1 || n > len(session.OfferedSlots) {
		return models.SlotOffer{}, false
	}
	return session.OfferedSlots[n-1], true
}

func voiceMissingFields(missing []string, language string) string {
	if language == "es" {
		return fmt.Sprintf("Antes de reservar necesito algunos datos: %s.", joinNames(missing, "y"))
	}
	return fmt.Sprintf("Before I can book that I still need: %s.", joinNames(missing, "and"))
}

func joinNames(names []string, conj string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	out := names[0]
	for i := 1; i < len(names)-1; i++ {
		out += ", " + names[i]
	}
	return out + " " + conj + " " + names[len(names)-1]
}
