package model

import "time"

// TreatmentNote is a dated entry in a patient's running treatment history.
type TreatmentNote struct {
	Base
	PatientID int64     `db:"patient_id" json:"patient_id"`
	NoteDate  Date      `db:"note_date" json:"note_date"`
	Body      string    `db:"body" json:"body"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type NoteRequest struct {
	NoteDate Date   `json:"note_date"`
	Body     string `json:"body" binding:"required"`
}
