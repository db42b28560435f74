package models

import "time"

// FieldSpec describes one piece of user information a tenant requires before
// a booking can proceed. Validator names a rule applied by the extractor
// ("email", "phone", "name" or "" for free text).
type FieldSpec struct {
	Name      string `bson:"name" json:"name"`
	Validator string `bson:"validator" json:"validator"`
}

// BusinessHours is the daily bookable window in the tenant's timezone.
type BusinessHours struct {
	StartHour int    `bson:"startHour" json:"startHour"`
	EndHour   int    `bson:"endHour" json:"endHour"`
	Timezone  string `bson:"timezone" json:"timezone"`
}

// Tenant is one business on the platform. Provisioned out-of-band by an
// operator; read-only to the booking core.
type Tenant struct {
	ID                 string            `bson:"id" json:"id"`
	Name               string            `bson:"name" json:"name"`
	Active             bool              `bson:"active" json:"active"`
	SupportedLanguages []string          `bson:"supportedLanguages" json:"supportedLanguages"`
	RequiredFields     []FieldSpec       `bson:"requiredFields" json:"requiredFields"`
	AdminEmail         string            `bson:"adminEmail,omitempty" json:"adminEmail,omitempty"`
	SystemPrompts      map[string]string `bson:"systemPrompts" json:"systemPrompts"`
	WelcomeMessages    map[string]string `bson:"welcomeMessages" json:"welcomeMessages"`
	Hours              BusinessHours     `bson:"hours" json:"hours"`
	SlotDurationMin    int               `bson:"slotDurationMin" json:"slotDurationMin"`
	LookaheadDays      int               `bson:"lookaheadDays" json:"lookaheadDays"`
	MaxSlotsChat       int               `bson:"maxSlotsChat" json:"maxSlotsChat"`
	MaxSlotsVoice      int               `bson:"maxSlotsVoice" json:"maxSlotsVoice"`
	CalendarID         string            `bson:"calendarId" json:"calendarId"`
	CreatedAt          time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// Location returns the tenant's *time.Location, falling back to UTC when the
// configured zone name cannot be loaded.
func (t *Tenant) Location() *time.Location {
	loc, err := time.LoadLocation(t.Hours.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RequiredFieldNames returns the ordered field names of RequiredFields.
func (t *Tenant) RequiredFieldNames() []string {
	names := make([]string, 0, len(t.RequiredFields))
	for _, f := range t.RequiredFields {
		names = append(names, f.Name)
	}
	return names
}
