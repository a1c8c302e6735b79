package services

import (
	"errors"
	"fmt"
)

// Engine error taxonomy. Callers branch on these with errors.Is/errors.As;
// storage-level conflicts are translated before they surface (a duplicate
// interval row or a lost lock race comes back as ErrRoomUnavailable).
var (
	ErrRoomNotFound           = errors.New("room not found")
	ErrBookingNotFound        = errors.New("booking not found")
	ErrPromotionNotFound      = errors.New("promotion not found")
	ErrNoActiveRate           = errors.New("no active rate tier for room and mode")
	ErrRoomUnavailable        = errors.New("room unavailable for requested interval")
	ErrPromotionExpired       = errors.New("promotion expired or inactive")
	ErrPromotionNotApplicable = errors.New("promotion not applicable to this room")
	ErrPriceMismatch          = errors.New("computed price does not match expected total")
	ErrInvalidInterval        = errors.New("check-in must be before check-out")
)

// ValidationError collects per-field input problems so a caller can report
// all of them at once.
type ValidationError struct {
	fields map[string][]string
}

func newValidationError() *ValidationError {
	return &ValidationError{fields: make(map[string][]string)}
}

func (ve *ValidationError) add(field, msg string) {
	ve.fields[field] = append(ve.fields[field], msg)
}

func (ve *ValidationError) hasErrors() bool {
	return len(ve.fields) > 0
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %+v", ve.fields)
}

// Fields exposes the per-field messages for response shaping.
func (ve *ValidationError) Fields() map[string][]string {
	return ve.fields
}

// AsValidationError returns the ValidationError wrapped in err, or nil.
func AsValidationError(err error) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

// InvalidTransitionError reports a lifecycle transition the state machine
// does not allow. The booking is left unchanged.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid booking transition %s -> %s", e.From, e.To)
}

// AsInvalidTransition returns the InvalidTransitionError wrapped in err, or nil.
func AsInvalidTransition(err error) *InvalidTransitionError {
	var ite *InvalidTransitionError
	if errors.As(err, &ite) {
		return ite
	}
	return nil
}
