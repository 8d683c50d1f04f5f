package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jwalitptl/clinic-ledger/internal/ledger"
	"github.com/jwalitptl/clinic-ledger/internal/model"
	"github.com/jwalitptl/clinic-ledger/internal/repository"
	apperrors "github.com/jwalitptl/clinic-ledger/pkg/errors"
	"github.com/jwalitptl/clinic-ledger/pkg/metrics"
)

type Service struct {
	repo     repository.PaymentRepository
	patients repository.PatientRepository
	metrics  *metrics.Metrics
}

func NewService(repo repository.PaymentRepository, patients repository.PatientRepository, m *metrics.Metrics) *Service {
	return &Service{repo: repo, patients: patients, metrics: m}
}

// Add appends a payment. The amount sign is not checked, so refunds may be
// recorded as negative amounts.
func (s *Service) Add(ctx context.Context, patientID int64, req *model.AddPaymentRequest) (*model.Payment, error) {
	verr := &apperrors.ValidationError{}
	if req.PaymentDate.IsZero() {
		verr.Add("payment_date", "is required")
	}
	if req.Amount == nil {
		verr.Add("amount", "is required")
	} else if msg := ledger.CheckAmount(*req.Amount); msg != "" {
		verr.Add("amount", msg)
	}
	mode := model.PaymentMode(req.Mode)
	if !mode.Valid() {
		verr.Add("mode", "must be Cash, UPI or Card")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if _, err := s.patients.Get(ctx, patientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	payment := &model.Payment{
		PatientID:   patientID,
		PaymentDate: req.PaymentDate,
		Amount:      *req.Amount,
		Mode:        mode,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to add payment: %w", err)
	}

	if s.metrics != nil {
		s.metrics.PaymentsRecorded.WithLabelValues(string(mode)).Inc()
	}
	return payment, nil
}

// Delete removes a payment. Deleting an id that does not exist is not an
// error. The removed payment is returned when there was one.
func (s *Service) Delete(ctx context.Context, id int64) (*model.Payment, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete payment: %w", err)
	}
	return existing, nil
}

// List returns the patient's payments by payment date, then insertion order.
func (s *Service) List(ctx context.Context, patientID int64) ([]*model.Payment, error) {
	payments, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (s *Service) Sum(ctx context.Context, patientID int64) (decimal.Decimal, error) {
	total, err := s.repo.SumByPatient(ctx, patientID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments: %w", err)
	}
	return total, nil
}
