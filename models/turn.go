package models

// Turn input kinds. Chat turns carry free-form text; voice turns carry a
// named function invocation from the realtime voice model. Both drive the
// same state machine.
const (
	TurnKindChat          = "chat"
	TurnKindVoiceFunction = "voice_function"
)

// Voice function names the realtime model may invoke.
const (
	VoiceFuncGetDays  = "get_available_days"
	VoiceFuncGetSlots = "get_available_slots"
	VoiceFuncBook     = "book_appointment"
)

// TurnInput is one inbound turn. SessionID empty means "create a session".
type TurnInput struct {
	Kind       string            `json:"kind"`
	TenantID   string            `json:"tenantId"`
	SessionID  string            `json:"sessionId,omitempty"`
	Message    string            `json:"message,omitempty"`
	Function   string            `json:"function,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	DayNumber  int               `json:"dayNumber,omitempty"`
	SlotNumber int               `json:"slotNumber,omitempty"`
}

// BookingSummary is attached to a turn result once an appointment exists.
type BookingSummary struct {
	AppointmentID string     `json:"appointmentId"`
	Slot          *SlotOffer `json:"slot,omitempty"`
}

// TurnResult is the structured outcome of one turn, consumed identically by
// the chat and voice transports.
type TurnResult struct {
	SessionID      string            `json:"sessionId"`
	Reply          string            `json:"reply"`
	Language       string            `json:"detectedLanguage"`
	Phase          Phase             `json:"phase"`
	Collected      map[string]string `json:"collected"`
	Missing        []string          `json:"missing"`
	OfferedDays    []DayOffer        `json:"offeredDays,omitempty"`
	OfferedSlots   []SlotOffer       `json:"offeredSlots,omitempty"`
	Clarification  bool              `json:"clarification,omitempty"`
	SlotTaken      bool              `json:"slotTaken,omitempty"`
	Booking        *BookingSummary   `json:"booking,omitempty"`
	WelcomeMessage string            `json:"welcomeMessage,omitempty"`
	NewSession     bool              `json:"newSession,omitempty"`
}
