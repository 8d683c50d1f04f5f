package model

import "github.com/shopspring/decimal"

// Totals are the derived money figures of one patient.
type Totals struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	Balance     decimal.Decimal `json:"balance"`
}

// Snapshot is the point-in-time state documents are rendered from.
// Treatment is nil when no plan has been saved yet.
type Snapshot struct {
	Patient   *Patient         `json:"patient"`
	Treatment *TreatmentRecord `json:"treatment"`
	Payments  []*Payment       `json:"payments"`
	Notes     []*TreatmentNote `json:"notes"`
	Totals    Totals           `json:"totals"`
}

// SummaryRow is one line of the all-patients financial export.
type SummaryRow struct {
	PatientID       int64
	AppointmentDate Date
	Name            string
	Mobile          string
	City            string
	Totals
}
