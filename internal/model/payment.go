package model

import (
	"github.com/shopspring/decimal"
)

// PaymentMode is how a payment was made.
type PaymentMode string

const (
	PaymentModeCash PaymentMode = "Cash"
	PaymentModeUPI  PaymentMode = "UPI"
	PaymentModeCard PaymentMode = "Card"
)

func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentModeCash, PaymentModeUPI, PaymentModeCard:
		return true
	}
	return false
}

type Payment struct {
	Base
	PatientID   int64           `db:"patient_id" json:"patient_id"`
	PaymentDate Date            `db:"payment_date" json:"payment_date"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Mode        PaymentMode     `db:"mode" json:"mode"`
}

type AddPaymentRequest struct {
	PaymentDate Date             `json:"payment_date"`
	Amount      *decimal.Decimal `json:"amount" binding:"required"`
	Mode        string           `json:"mode" binding:"required,payment_mode"`
}
