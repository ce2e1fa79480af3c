package errors

import "errors"

type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return e.Field + ": " + e.Message
}

type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return e.Resource + " not found: " + e.ID
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var v *ErrValidation
	return errors.As(err, &v)
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	var nf *ErrNotFound
	return errors.As(err, &nf)
}
