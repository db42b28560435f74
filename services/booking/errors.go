package booking

import "fmt"

// BookingError is a typed failure from the booking engine.
type BookingError struct {
	Code    string
	Message string
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for booking outcomes a caller must distinguish.
const (
	CodeSlotConflict    = "slotConflict"
	CodeExternalFailure = "externalFailure"
)

// NewConflictError reports that the chosen slot is no longer free.
func NewConflictError(msg string) error {
	return &BookingError{Code: CodeSlotConflict, Message: msg}
}

// NewExternalError reports a calendar or store failure; the caller may retry
// the same turn safely.
func NewExternalError(msg string) error {
	return &BookingError{Code: CodeExternalFailure, Message: msg}
}

// IsConflict reports whether err is a slot-conflict booking error.
func IsConflict(err error) bool {
	be, ok := err.(*BookingError)
	return ok && be.Code == CodeSlotConflict
}

// IsExternalFailure reports whether err is an external-failure booking error.
func IsExternalFailure(err error) bool {
	be, ok := err.(*BookingError)
	return ok && be.Code == CodeExternalFailure
}
