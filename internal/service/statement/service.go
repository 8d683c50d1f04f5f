// Package statement assembles patient snapshots and renders them as
// invoices and the all-patients financial export.
package statement

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jwalitptl/clinic-ledger/internal/document"
	"github.com/jwalitptl/clinic-ledger/internal/ledger"
	"github.com/jwalitptl/clinic-ledger/internal/model"
	"github.com/jwalitptl/clinic-ledger/internal/repository"
	"github.com/jwalitptl/clinic-ledger/pkg/metrics"
)

var ErrPatientNotFound = errors.New("patient not found")

type Service struct {
	store   *repository.Store
	clinic  document.ClinicInfo
	metrics *metrics.Metrics
}

// NewService reads every ledger repository from store. m may be nil.
func NewService(store *repository.Store, clinic document.ClinicInfo, m *metrics.Metrics) *Service {
	return &Service{store: store, clinic: clinic, metrics: m}
}

// Snapshot reads the patient, treatment, payments and notes and derives the
// totals. The reads are independent statements.
func (s *Service) Snapshot(ctx context.Context, patientID int64) (*model.Snapshot, error) {
	snap, err := s.snapshot(ctx, patientID)
	s.observe("snapshot", err)
	return snap, err
}

func (s *Service) snapshot(ctx context.Context, patientID int64) (*model.Snapshot, error) {
	patient, err := s.store.Patients.Get(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	treatment, err := s.store.Treatments.Get(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get treatment: %w", err)
	}
	payments, err := s.store.Payments.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	notes, err := s.store.Notes.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	return &model.Snapshot{
		Patient:   patient,
		Treatment: treatment,
		Payments:  payments,
		Notes:     notes,
		Totals:    ledger.Compute(treatment, payments),
	}, nil
}

// Totals returns the money figures of one patient from the stored sum.
func (s *Service) Totals(ctx context.Context, patientID int64) (model.Totals, error) {
	treatment, err := s.store.Treatments.Get(ctx, patientID)
	if err != nil {
		return model.Totals{}, fmt.Errorf("failed to get treatment: %w", err)
	}
	paid, err := s.store.Payments.SumByPatient(ctx, patientID)
	if err != nil {
		return model.Totals{}, fmt.Errorf("failed to sum payments: %w", err)
	}
	return ledger.FromTotalPaid(treatment, paid), nil
}

// SummaryRows returns one row per patient, latest appointment first. Each
// balance is computed from that patient's own payments.
func (s *Service) SummaryRows(ctx context.Context) ([]model.SummaryRow, error) {
	patients, err := s.store.Patients.List(ctx, model.OrderByAppointmentDesc)
	if err != nil {
		s.observe("summary", err)
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	rows := make([]model.SummaryRow, 0, len(patients))
	for _, p := range patients {
		treatment, err := s.store.Treatments.Get(ctx, p.ID)
		if err != nil {
			s.observe("summary", err)
			return nil, fmt.Errorf("failed to get treatment of patient %d: %w", p.ID, err)
		}
		payments, err := s.store.Payments.ListByPatient(ctx, p.ID)
		if err != nil {
			s.observe("summary", err)
			return nil, fmt.Errorf("failed to list payments of patient %d: %w", p.ID, err)
		}
		rows = append(rows, model.SummaryRow{
			PatientID:       p.ID,
			AppointmentDate: p.AppointmentDate,
			Name:            p.Name,
			Mobile:          p.Mobile,
			City:            p.City,
			Totals:          ledger.Compute(treatment, payments),
		})
	}
	s.observe("summary", nil)
	return rows, nil
}

// RenderInvoice writes the PDF invoice of a patient to w.
func (s *Service) RenderInvoice(ctx context.Context, patientID int64, w io.Writer) error {
	snap, err := s.Snapshot(ctx, patientID)
	if err != nil {
		return err
	}

	start := time.Now()
	err = document.RenderPDF(document.BuildInvoice(s.clinic, snap), w)
	s.rendered("invoice", "pdf", start, err)
	return err
}

// ExportSummary writes the financial report of all patients to w.
func (s *Service) ExportSummary(ctx context.Context, format document.Format, w io.Writer) error {
	rows, err := s.SummaryRows(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	err = document.WriteSummary(w, format, rows)
	s.rendered("summary", string(format), start, err)
	return err
}

func (s *Service) observe(op string, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.LedgerOperations.WithLabelValues(op, metrics.Status(err)).Inc()
}

func (s *Service) rendered(kind, format string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.DocumentLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err == nil {
		s.metrics.DocumentsRendered.WithLabelValues(kind, format).Inc()
	}
}
