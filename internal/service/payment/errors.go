package payment

import "errors"

var ErrPatientNotFound = errors.New("patient not found")
