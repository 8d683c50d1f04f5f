package ledger

import (
	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits an amount may carry.
const AmountScale = 2

// MaxAmount bounds the magnitude of any stored amount, matching NUMERIC(14,2).
var MaxAmount = decimal.New(1, 12)

// CheckAmount reports why amount cannot be stored exactly, or "" when it can.
// Trailing zeros beyond the scale are accepted.
func CheckAmount(amount decimal.Decimal) string {
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return "must have at most 2 decimal places"
	}
	if amount.Abs().GreaterThanOrEqual(MaxAmount) {
		return "must be less than 1000000000000 in magnitude"
	}
	return ""
}
