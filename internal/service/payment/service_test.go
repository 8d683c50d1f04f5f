package payment

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-ledger/internal/model"
	"github.com/jwalitptl/clinic-ledger/internal/repository/memory"
	apperrors "github.com/jwalitptl/clinic-ledger/pkg/errors"
	"github.com/jwalitptl/clinic-ledger/pkg/metrics"
)

func request(day int, amount string, mode model.PaymentMode) *model.AddPaymentRequest {
	d := decimal.RequireFromString(amount)
	return &model.AddPaymentRequest{PaymentDate: model.NewDate(2024, 6, day), Amount: &d, Mode: string(mode)}
}

func setup(t *testing.T) (*Service, *metrics.Metrics, int64) {
	t.Helper()
	store := memory.NewStore()
	p := &model.Patient{AppointmentDate: model.NewDate(2024, 6, 1), Name: "Ravi", Type: model.PatientTypeNew, Mobile: "+919999999999", City: "Guntur", Problem: "Pain"}
	require.NoError(t, store.Patients.Create(context.Background(), p))
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	return NewService(store.Payments, store.Patients, m), m, p.ID
}

func TestAddListSumDelete(t *testing.T) {
	svc, m, id := setup(t)
	ctx := context.Background()

	first, err := svc.Add(ctx, id, request(3, "2000", model.PaymentModeCash))
	require.NoError(t, err)
	second, err := svc.Add(ctx, id, request(1, "1000", model.PaymentModeUPI))
	require.NoError(t, err)
	third, err := svc.Add(ctx, id, request(5, "500.50", model.PaymentModeCard))
	require.NoError(t, err)

	list, err := svc.List(ctx, id)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{second.ID, first.ID, third.ID}, []int64{list[0].ID, list[1].ID, list[2].ID})

	sum, err := svc.Sum(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "3500.5", sum.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaymentsRecorded.WithLabelValues("Cash")))

	removed, err := svc.Delete(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, removed)
	assert.Equal(t, id, removed.PatientID)

	again, err := svc.Delete(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, again)

	sum, err = svc.Sum(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "1500.5", sum.String())
}

func TestAddValidation(t *testing.T) {
	svc, _, id := setup(t)
	ctx := context.Background()

	bad := request(1, "10", "Cheque")
	bad.PaymentDate = model.Date{}
	bad.Amount = nil
	_, err := svc.Add(ctx, id, bad)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)

	_, err = svc.Add(ctx, id+7, request(1, "10", model.PaymentModeCash))
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestAddNegativeAmountIsAccepted(t *testing.T) {
	svc, _, id := setup(t)
	p, err := svc.Add(context.Background(), id, request(2, "-250", model.PaymentModeCash))
	require.NoError(t, err)
	assert.True(t, p.Amount.IsNegative())
}

func TestAddRejectsUnstorableAmounts(t *testing.T) {
	tests := []struct {
		name   string
		amount string
	}{
		{"sub-paisa", "0.004"},
		{"three decimals", "10.125"},
		{"too large", "1000000000000"},
		{"too large negative", "-1000000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, id := setup(t)
			ctx := context.Background()

			_, err := svc.Add(ctx, id, request(1, tt.amount, model.PaymentModeCash))
			var verr *apperrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "amount", verr.Fields[0].Field)

			list, err := svc.List(ctx, id)
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestAddAcceptsLimitAmounts(t *testing.T) {
	svc, _, id := setup(t)
	for _, a := range []string{"0.01", "999999999999.99", "-999999999999.99", "12.500"} {
		_, err := svc.Add(context.Background(), id, request(1, a, model.PaymentModeUPI))
		assert.NoError(t, err, a)
	}
}
