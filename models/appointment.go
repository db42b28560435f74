package models

import "time"

// Appointment statuses. A confirmed appointment is immutable except for the
// transition to cancelled, performed by an external process.
const (
	AppointmentConfirmed = "confirmed"
	AppointmentCancelled = "cancelled"
)

// Appointment is the durable record of a successful booking. Created exactly
// once by the booking engine at commit.
type Appointment struct {
	ID        string            `bson:"id" json:"id"`
	TenantID  string            `bson:"tenantId" json:"tenantId"`
	SessionID string            `bson:"sessionId" json:"sessionId"`
	Fields    map[string]string `bson:"fields" json:"fields"`
	Start     time.Time         `bson:"start" json:"start"`
	End       time.Time         `bson:"end" json:"end"`
	EventRef  string            `bson:"eventRef" json:"eventRef"`
	Status    string            `bson:"status" json:"status"`
	CreatedAt time.Time         `bson:"createdAt" json:"createdAt"`
}

// Interval is a half-open [Start, End) time range, as reported by the
// calendar's busy query.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether two half-open intervals intersect.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}
