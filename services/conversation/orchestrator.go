package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	tenantRepo "frontdesk/database/repository/tenant"
	"frontdesk/models"
	"frontdesk/services/booking"
	"frontdesk/services/intelligence"
	"frontdesk/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Orchestrator is the per-turn state machine tying the tenant resolver,
// session store, field extractor, availability resolver and booking engine
// together. It is the single entry point for both the chat path and the voice
// function-call path.
//
// Turns of one session are sequential by contract; the surrounding transport
// serializes per-session before invoking HandleTurn. Across sessions,
// concurrent turns are expected and safe: availability reads are optimistic
// and re-validated by the booking engine at commit.
type Orchestrator struct {
	Tenants      tenantRepo.TenantRepository
	Sessions     SessionStore
	Extractor    *FieldExtractor
	Availability booking.AvailabilityEngine
	Engine       booking.Engine
	Model        intelligence.Client
	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// HandleTurn processes one inbound turn and returns the structured outcome.
func (o *Orchestrator) HandleTurn(ctx context.Context, input models.TurnInput) (*models.TurnResult, error) {
	tenant, err := o.Tenants.GetByID(ctx, input.TenantID)
	if err != nil {
		return nil, err
	}

	session, isNew, err := o.loadOrCreateSession(ctx, tenant, input.SessionID)
	if err != nil {
		return nil, err
	}

	logger := utils.GetLogger().With(
		zap.String("tenantId", tenant.ID),
		zap.String("sessionId", session.ID),
		zap.String("phase", string(session.Phase)),
	)

	var result *models.TurnResult
	switch input.Kind {
	case models.TurnKindVoiceFunction:
		result, err = o.handleVoiceFunction(ctx, logger, tenant, session, input)
	default:
		result, err = o.handleChatTurn(ctx, logger, tenant, session, input)
	}
	if err != nil {
		return nil, err
	}

	result.SessionID = session.ID
	result.NewSession = isNew
	if isNew {
		result.WelcomeMessage = messageForLanguage(tenant.WelcomeMessages, result.Language)
	}
	return result, nil
}

// loadOrCreateSession loads existing state, synthesizes a new session when
// none exists, and recovers corrupt state by reinitializing to collecting
// with fields cleared.
func (o *Orchestrator) loadOrCreateSession(ctx context.Context, tenant *models.Tenant, sessionID string) (*models.Session, bool, error) {
	if sessionID == "" {
		return o.newSession(tenant, uuid.New().String()), true, nil
	}

	session, err := o.Sessions.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionCorrupt) {
			utils.GetLogger().Warn("corrupt session state, reinitializing",
				zap.String("sessionId", sessionID))
			return o.newSession(tenant, sessionID), false, nil
		}
		return nil, false, err
	}
	if session == nil {
		return o.newSession(tenant, sessionID), true, nil
	}
	if session.Phase.Terminal() && session.Phase != models.PhaseBooked {
		// Cancelled or abandoned; a new turn starts the conversation over.
		return o.newSession(tenant, sessionID), false, nil
	}
	return session, false, nil
}

func (o *Orchestrator) newSession(tenant *models.Tenant, id string) *models.Session {
	return &models.Session{
		ID:        id,
		TenantID:  tenant.ID,
		Collected: make(map[string]string),
		Phase:     models.PhaseCollecting,
		CreatedAt: o.now(),
	}
}

// handleChatTurn advances the state machine for one free-text message.
func (o *Orchestrator) handleChatTurn(ctx context.Context, logger *zap.Logger, tenant *models.Tenant, session *models.Session, input models.TurnInput) (*models.TurnResult, error) {
	language := ResolveLanguage(session.Language, input.Message)
	session.Language = language
	session.Turns = append(session.Turns, models.Turn{
		Role: "user", Content: input.Message, Timestamp: o.now(),
	})

	result := &models.TurnResult{Language: language}
	var promptContext string

	switch session.Phase {
	case models.PhaseBooked:
		// Re-entering a booked session is a no-op; no second appointment.
		promptContext = bookingContext("confirmed", language,
			session.SelectedDate, fieldSummary(session.Collected, tenant.RequiredFields))
		result.Booking = &models.BookingSummary{AppointmentID: session.AppointmentID}

	case models.PhaseCollecting:
		var err error
		promptContext, err = o.runCollecting(ctx, tenant, session)
		if err != nil {
			return nil, err
		}

	case models.PhaseAwaitingDay:
		var err error
		promptContext, err = o.runDaySelection(ctx, tenant, session, input.Message, result)
		if err != nil {
			return nil, err
		}

	case models.PhaseAwaitingSlot:
		outcome, err := o.runSlotSelection(ctx, logger, tenant, session, input.Message, result)
		if err != nil {
			return nil, err
		}
		if outcome.externalFailure {
			// Leave persisted state untouched so retrying this turn is safe.
			result.Phase = session.Phase
			result.Collected = session.Collected
			result.Reply = o.generateReply(ctx, tenant, session, language,
				bookingContext("retry_later", language))
			return result, nil
		}
		promptContext = outcome.promptContext

	default:
		return nil, fmt.Errorf("unexpected phase %q for session %s", session.Phase, session.ID)
	}

	result.Phase = session.Phase
	result.Collected = session.Collected
	result.OfferedDays = session.OfferedDays
	result.OfferedSlots = session.OfferedSlots
	result.Missing = missingFieldNames(tenant, session.Collected)

	result.Reply = o.generateReply(ctx, tenant, session, language, promptContext)
	session.Turns = append(session.Turns, models.Turn{
		Role: "assistant", Content: result.Reply, Timestamp: o.now(),
	})

	if err := o.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return result, nil
}

// runCollecting extracts fields for this turn and, when collection completed,
// moves to day selection with a freshly computed and persisted day list.
func (o *Orchestrator) runCollecting(ctx context.Context, tenant *models.Tenant, session *models.Session) (string, error) {
	merged, _, complete, err := o.Extractor.Extract(ctx, tenant, session.Turns, session.Collected)
	if err != nil {
		return "", err
	}
	session.Collected = merged

	if !complete {
		return "", nil
	}

	days, err := o.Availability.GetDays(ctx, tenant, o.now())
	if err != nil {
		// Stay in collecting; the next turn retries the lookup.
		utils.GetLogger().Warn("day lookup failed", zap.Error(err))
		return bookingContext("retry_later", session.Language), nil
	}
	if len(days) == 0 {
		return bookingContext("no_days", session.Language), nil
	}

	session.Phase = models.PhaseAwaitingDay
	// Persist the exact list shown so a later "1" or "Monday" resolves
	// against what the user saw, not a recomputed list.
	session.OfferedDays = days
	return bookingContext("show_days", session.Language, FormatDayList(days, session.Language)), nil
}

// runDaySelection resolves the user's day pick against the offered list.
func (o *Orchestrator) runDaySelection(ctx context.Context, tenant *models.Tenant, session *models.Session, message string, result *models.TurnResult) (string, error) {
	idx := ResolveDayPick(message, session.OfferedDays)
	if idx < 0 {
		result.Clarification = true
		return bookingContext("clarify_day", session.Language,
			FormatDayList(session.OfferedDays, session.Language)), nil
	}

	day := session.OfferedDays[idx]
	slots, err := o.Availability.GetSlots(ctx, tenant, day.Date, booking.ChannelChat)
	if err != nil {
		utils.GetLogger().Warn("slot lookup failed", zap.Error(err))
		result.Clarification = true
		return bookingContext("retry_later", session.Language), nil
	}
	if len(slots) == 0 {
		// The day filled up since it was offered; re-offer days.
		days, derr := o.Availability.GetDays(ctx, tenant, o.now())
		if derr == nil {
			session.OfferedDays = days
		}
		result.Clarification = true
		return bookingContext("no_slots", session.Language,
			FormatDayList(session.OfferedDays, session.Language)), nil
	}

	session.Phase = models.PhaseAwaitingSlot
	session.SelectedDate = day.Date
	session.OfferedSlots = slots

	date, _ := time.Parse("2006-01-02", day.Date)
	return bookingContext("show_slots", session.Language,
		FormatDate(date, session.Language),
		FormatSlotList(slots, session.Language)), nil
}

type slotOutcome struct {
	promptContext   string
	externalFailure bool
}

// runSlotSelection resolves the slot pick and drives the booking engine.
func (o *Orchestrator) runSlotSelection(ctx context.Context, logger *zap.Logger, tenant *models.Tenant, session *models.Session, message string, result *models.TurnResult) (slotOutcome, error) {
	idx := ResolveSlotPick(message, session.OfferedSlots)
	if idx < 0 {
		result.Clarification = true
		return slotOutcome{promptContext: bookingContext("clarify_slot", session.Language,
			FormatSlotList(session.OfferedSlots, session.Language))}, nil
	}

	slot := session.OfferedSlots[idx]
	appt, err := o.Engine.Book(ctx, tenant, session.ID, slot, session.Collected, session.Language)
	if err != nil {
		if booking.IsConflict(err) {
			// Never silently pick an alternative; tell the user and re-offer.
			fresh, ferr := o.Availability.GetSlots(ctx, tenant, session.SelectedDate, booking.ChannelChat)
			if ferr != nil {
				return slotOutcome{externalFailure: true}, nil
			}
			session.OfferedSlots = fresh
			result.SlotTaken = true
			logger.Info("offer went stale at confirm, re-offering")
			return slotOutcome{promptContext: bookingContext("slot_taken", session.Language,
				FormatSlotList(fresh, session.Language))}, nil
		}
		return slotOutcome{externalFailure: true}, nil
	}

	session.Phase = models.PhaseBooked
	session.AppointmentID = appt.ID
	session.OfferedDays = nil
	session.OfferedSlots = nil
	result.Booking = &models.BookingSummary{AppointmentID: appt.ID, Slot: &slot}

	return slotOutcome{promptContext: bookingContext("confirmed", session.Language,
		slot.Display, fieldSummary(session.Collected, tenant.RequiredFields))}, nil
}

// generateReply asks the language model for the assistant text; when the
// model is unavailable the raw booking context doubles as a plain reply so
// the turn still succeeds.
func (o *Orchestrator) generateReply(ctx context.Context, tenant *models.Tenant, session *models.Session, language, promptContext string) string {
	systemPrompt := messageForLanguage(tenant.SystemPrompts, language) + promptContext

	reply, err := o.Model.Complete(ctx, systemPrompt, session.Turns)
	if err != nil || reply == "" {
		utils.GetLogger().Warn("reply generation failed, using fallback", zap.Error(err))
		if promptContext != "" {
			return promptContext
		}
		if language == "es" {
			return "¿En qué puedo ayudarle?"
		}
		return "How can I help you?"
	}
	return reply
}

func messageForLanguage(byLang map[string]string, language string) string {
	if msg, ok := byLang[language]; ok {
		return msg
	}
	return byLang["en"]
}

func missingFieldNames(tenant *models.Tenant, collected map[string]string) []string {
	var names []string
	for _, spec := range missingFields(tenant, collected) {
		names = append(names, spec.Name)
	}
	return names
}
