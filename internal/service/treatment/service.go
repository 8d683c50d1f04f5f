package treatment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jwalitptl/clinic-ledger/internal/ledger"
	"github.com/jwalitptl/clinic-ledger/internal/model"
	"github.com/jwalitptl/clinic-ledger/internal/repository"
	apperrors "github.com/jwalitptl/clinic-ledger/pkg/errors"
)

type Service struct {
	repo     repository.TreatmentRepository
	patients repository.PatientRepository
}

func NewService(repo repository.TreatmentRepository, patients repository.PatientRepository) *Service {
	return &Service{repo: repo, patients: patients}
}

// Save replaces the patient's treatment record in full. Fields left empty in
// req are cleared, not kept.
func (s *Service) Save(ctx context.Context, patientID int64, req *model.SaveTreatmentRequest) (*model.TreatmentRecord, error) {
	verr := &apperrors.ValidationError{}
	if req.FinalAmount == nil {
		verr.Add("final_amount", "is required")
	} else if req.FinalAmount.IsNegative() {
		verr.Add("final_amount", "must not be negative")
	} else if msg := ledger.CheckAmount(*req.FinalAmount); msg != "" {
		verr.Add("final_amount", msg)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if err := s.ensurePatient(ctx, patientID); err != nil {
		return nil, err
	}

	record := &model.TreatmentRecord{
		PatientID:   patientID,
		Plan:        strings.TrimSpace(req.Plan),
		FinalAmount: *req.FinalAmount,
		Consultant:  strings.TrimSpace(req.Consultant),
		Lab:         strings.TrimSpace(req.Lab),
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save treatment: %w", err)
	}
	return record, nil
}

// Get returns (nil, nil) when the patient has no treatment record yet.
func (s *Service) Get(ctx context.Context, patientID int64) (*model.TreatmentRecord, error) {
	record, err := s.repo.Get(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get treatment: %w", err)
	}
	return record, nil
}

func (s *Service) ensurePatient(ctx context.Context, patientID int64) error {
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPatientNotFound
		}
		return fmt.Errorf("failed to get patient: %w", err)
	}
	return nil
}
