// Package ledger derives money totals from a treatment record and its
// payments. It performs no I/O.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jwalitptl/clinic-ledger/internal/model"
)

// Sum adds payment amounts exactly. An empty slice sums to zero.
func Sum(payments []*model.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// Compute returns total amount, total paid and balance. A nil record counts
// as a final amount of zero. The balance is not clamped, so overpayment
// yields a negative balance.
func Compute(record *model.TreatmentRecord, payments []*model.Payment) model.Totals {
	return FromTotalPaid(record, Sum(payments))
}

// FromTotalPaid is Compute for callers that already hold the payment sum.
func FromTotalPaid(record *model.TreatmentRecord, paid decimal.Decimal) model.Totals {
	total := decimal.Zero
	if record != nil {
		total = record.FinalAmount
	}
	return model.Totals{
		TotalAmount: total,
		TotalPaid:   paid,
		Balance:     total.Sub(paid),
	}
}
