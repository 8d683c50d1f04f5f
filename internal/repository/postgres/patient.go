package postgres

import (
	"context"
	"fmt"

	"github.com/jwalitptl/clinic-ledger/internal/model"
	"github.com/jwalitptl/clinic-ledger/internal/repository"
)

const patientColumns = `id, appointment_date, name, patient_type, mobile, city, problem, created_at`

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (appointment_date, name, patient_type, mobile, city, problem)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		patient.AppointmentDate,
		patient.Name,
		patient.Type,
		patient.Mobile,
		patient.City,
		patient.Problem,
	).Scan(&patient.ID, &patient.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "patients_mobile_key") {
			return repository.ErrDuplicateMobile
		}
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id int64) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", notFound(err))
	}
	return &patient, nil
}

func (r *patientRepository) GetByMobile(ctx context.Context, mobile string) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE mobile = $1`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, mobile); err != nil {
		return nil, fmt.Errorf("failed to get patient by mobile: %w", notFound(err))
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context, order model.PatientOrder) ([]*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients`
	switch order {
	case model.OrderByAppointmentDesc:
		query += ` ORDER BY appointment_date DESC, id ASC`
	default:
		query += ` ORDER BY id ASC`
	}

	patients := []*model.Patient{}
	if err := r.db.SelectContext(ctx, &patients, query); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}
