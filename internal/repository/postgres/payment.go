package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jwalitptl/clinic-ledger/internal/model"
	"github.com/jwalitptl/clinic-ledger/internal/repository"
)

type paymentRepository struct {
	BaseRepository
}

func NewPaymentRepository(base BaseRepository) repository.PaymentRepository {
	return &paymentRepository{base}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	query := `
		INSERT INTO payments (patient_id, payment_date, amount, mode)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		payment.PatientID,
		payment.PaymentDate,
		payment.Amount,
		payment.Mode,
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) Get(ctx context.Context, id int64) (*model.Payment, error) {
	query := `
		SELECT id, patient_id, payment_date, amount, mode, created_at
		FROM payments
		WHERE id = $1
	`
	var payment model.Payment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", notFound(err))
	}
	return &payment, nil
}

// Delete succeeds when the row is already gone.
func (r *paymentRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.Payment, error) {
	query := `
		SELECT id, patient_id, payment_date, amount, mode, created_at
		FROM payments
		WHERE patient_id = $1
		ORDER BY payment_date ASC, id ASC
	`
	payments := []*model.Payment{}
	if err := r.db.SelectContext(ctx, &payments, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (r *paymentRepository) SumByPatient(ctx context.Context, patientID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE patient_id = $1`
	if err := r.db.GetContext(ctx, &total, query, patientID); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments: %w", err)
	}
	return total, nil
}
