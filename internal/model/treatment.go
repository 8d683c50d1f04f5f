package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TreatmentRecord is the single current treatment plan of a patient.
// Saving a record replaces every column of the previous one.
type TreatmentRecord struct {
	PatientID   int64           `db:"patient_id" json:"patient_id"`
	Plan        string          `db:"plan" json:"plan"`
	FinalAmount decimal.Decimal `db:"final_amount" json:"final_amount"`
	Consultant  string          `db:"consultant" json:"consultant"`
	Lab         string          `db:"lab" json:"lab"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

type SaveTreatmentRequest struct {
	Plan        string           `json:"plan"`
	FinalAmount *decimal.Decimal `json:"final_amount" binding:"required"`
	Consultant  string           `json:"consultant"`
	Lab         string           `json:"lab"`
}
