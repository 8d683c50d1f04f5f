package note

import "errors"

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrNoteNotFound    = errors.New("treatment note not found")
)
