package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCheckAmount(t *testing.T) {
	tests := []struct {
		amount string
		ok     bool
	}{
		{"0", true},
		{"1500.50", true},
		{"1500.500", true},
		{"-250.75", true},
		{"0.004", false},
		{"0.01", true},
		{"999999999999.99", true},
		{"-999999999999.99", true},
		{"1000000000000", false},
		{"-1000000000000", false},
		{"12345678901234567.89", false},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			msg := CheckAmount(decimal.RequireFromString(tt.amount))
			if tt.ok {
				assert.Empty(t, msg)
			} else {
				assert.NotEmpty(t, msg)
			}
		})
	}
}
