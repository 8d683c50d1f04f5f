package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/jwalitptl/clinic-ledger/internal/model"
	"github.com/jwalitptl/clinic-ledger/internal/repository"
	apperrors "github.com/jwalitptl/clinic-ledger/pkg/errors"
	"github.com/jwalitptl/clinic-ledger/pkg/metrics"
)

type PatientService interface {
	Register(ctx context.Context, req *model.RegisterPatientRequest) (*model.Patient, error)
	FindByMobile(ctx context.Context, mobile string) (*model.Patient, error)
	Get(ctx context.Context, id int64) (*model.Patient, error)
	List(ctx context.Context, order model.PatientOrder) ([]*model.Patient, error)
}

type Service struct {
	repo    repository.PatientRepository
	region  string
	metrics *metrics.Metrics
}

// NewService normalises mobile numbers for the given default region, e.g. "IN".
// m may be nil.
func NewService(repo repository.PatientRepository, region string, m *metrics.Metrics) *Service {
	return &Service{repo: repo, region: strings.ToUpper(region), metrics: m}
}

// NormalizeMobile returns the E.164 form of raw, so "99999 99999" and
// "+91 9999999999" identify the same patient.
func (s *Service) NormalizeMobile(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("mobile number is required")
	}
	num, err := phonenumbers.Parse(raw, s.region)
	if err != nil {
		return "", fmt.Errorf("invalid mobile number %q: %w", raw, err)
	}
	if !phonenumbers.IsPossibleNumber(num) {
		return "", fmt.Errorf("invalid mobile number %q", raw)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func (s *Service) Register(ctx context.Context, req *model.RegisterPatientRequest) (*model.Patient, error) {
	patient, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByMobile(ctx, patient.Mobile); err == nil {
		return nil, &ConflictError{ExistingID: existing.ID, ExistingName: existing.Name}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check mobile: %w", err)
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrDuplicateMobile) {
			// lost a race with a concurrent registration
			if existing, lookupErr := s.repo.GetByMobile(ctx, patient.Mobile); lookupErr == nil {
				return nil, &ConflictError{ExistingID: existing.ID, ExistingName: existing.Name}
			}
			return nil, ErrMobileExists
		}
		return nil, fmt.Errorf("failed to register patient: %w", err)
	}

	if s.metrics != nil {
		s.metrics.PatientsRegistered.Inc()
	}
	return patient, nil
}

func (s *Service) validate(req *model.RegisterPatientRequest) (*model.Patient, error) {
	verr := &apperrors.ValidationError{}
	if req.AppointmentDate.IsZero() {
		verr.Add("appointment_date", "is required")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		verr.Add("name", "is required")
	}
	ptype := model.PatientType(req.Type)
	if !ptype.Valid() {
		verr.Add("patient_type", "must be New or Old")
	}
	mobile, err := s.NormalizeMobile(req.Mobile)
	if err != nil {
		verr.Add("mobile", err.Error())
	}
	city := strings.TrimSpace(req.City)
	if city == "" {
		verr.Add("city", "is required")
	}
	problem := strings.TrimSpace(req.Problem)
	if problem == "" {
		verr.Add("problem", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	return &model.Patient{
		AppointmentDate: req.AppointmentDate,
		Name:            name,
		Type:            ptype,
		Mobile:          mobile,
		City:            city,
		Problem:         problem,
	}, nil
}

// FindByMobile returns ErrPatientNotFound when no patient has the number.
func (s *Service) FindByMobile(ctx context.Context, mobile string) (*model.Patient, error) {
	normalized, err := s.NormalizeMobile(mobile)
	if err != nil {
		verr := &apperrors.ValidationError{}
		verr.Add("mobile", err.Error())
		return nil, verr
	}
	patient, err := s.repo.GetByMobile(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to find patient: %w", err)
	}
	return patient, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

func (s *Service) List(ctx context.Context, order model.PatientOrder) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}
