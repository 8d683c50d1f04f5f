package patient

import (
	"errors"
	"fmt"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrMobileExists    = errors.New("mobile number already registered")
)

// ConflictError carries the patient that already owns a mobile number.
type ConflictError struct {
	ExistingID   int64
	ExistingName string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("mobile number already registered to %s (id %d)", e.ExistingName, e.ExistingID)
}

func (e *ConflictError) Unwrap() error {
	return ErrMobileExists
}
