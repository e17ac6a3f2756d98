package domain

import "errors"

// ErrAppointmentNotAllowed is returned when a resident tries to schedule a
// medical appointment for themselves. The attempt is rejected before any
// state changes.
var ErrAppointmentNotAllowed = errors.New("residents can only add community activities")

// ValidationError reports invalid user input. It is always recoverable: the
// caller surfaces the reason as a notice and nothing is written.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string { return e.Reason }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
