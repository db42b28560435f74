package models

import "time"

// Phase is the orchestrator's state for a session within the booking flow.
type Phase string

const (
	PhaseCollecting   Phase = "collecting"
	PhaseAwaitingDay  Phase = "awaiting_day"
	PhaseAwaitingSlot Phase = "awaiting_slot"
	PhaseBooked       Phase = "booked"
	PhaseCancelled    Phase = "cancelled"
	PhaseAbandoned    Phase = "abandoned"
)

// Terminal reports whether no further turns can advance the session.
func (p Phase) Terminal() bool {
	return p == PhaseBooked || p == PhaseCancelled || p == PhaseAbandoned
}

// Turn is one exchange in the conversation log.
type Turn struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// DayOffer is a computed, non-persisted day shown to the user for selection.
// It carries no identity beyond its date.
type DayOffer struct {
	Date      string `json:"date"` // YYYY-MM-DD in the tenant's timezone
	Weekday   string `json:"weekday"`
	SlotCount int    `json:"slotCount"`
}

// SlotOffer is a bookable interval shown to the user. The start timestamp is
// its natural key when matching a later booking attempt.
type SlotOffer struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Display string    `json:"display"`
}

// Session holds the full conversation state for one end user. It is owned
// exclusively by the orchestrator and mutated once per turn.
type Session struct {
	ID            string            `json:"sessionId"`
	TenantID      string            `json:"tenantId"`
	Language      string            `json:"language,omitempty"`
	Turns         []Turn            `json:"turns"`
	Collected     map[string]string `json:"collected"`
	Phase         Phase             `json:"phase"`
	OfferedDays   []DayOffer        `json:"offeredDays,omitempty"`
	OfferedSlots  []SlotOffer       `json:"offeredSlots,omitempty"`
	SelectedDate  string            `json:"selectedDate,omitempty"`
	AppointmentID string            `json:"appointmentId,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}
