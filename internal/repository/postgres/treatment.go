package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwalitptl/clinic-ledger/internal/model"
	"github.com/jwalitptl/clinic-ledger/internal/repository"
)

type treatmentRepository struct {
	BaseRepository
}

func NewTreatmentRepository(base BaseRepository) repository.TreatmentRepository {
	return &treatmentRepository{base}
}

// Upsert writes every column, so fields omitted by the caller are cleared.
func (r *treatmentRepository) Upsert(ctx context.Context, record *model.TreatmentRecord) error {
	query := `
		INSERT INTO treatments (patient_id, plan, final_amount, consultant, lab, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (patient_id) DO UPDATE SET
			plan = EXCLUDED.plan,
			final_amount = EXCLUDED.final_amount,
			consultant = EXCLUDED.consultant,
			lab = EXCLUDED.lab,
			updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		record.PatientID,
		record.Plan,
		record.FinalAmount,
		record.Consultant,
		record.Lab,
	).Scan(&record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save treatment: %w", err)
	}
	return nil
}

func (r *treatmentRepository) Get(ctx context.Context, patientID int64) (*model.TreatmentRecord, error) {
	query := `
		SELECT patient_id, plan, final_amount, consultant, lab, updated_at
		FROM treatments
		WHERE patient_id = $1
	`
	var record model.TreatmentRecord
	if err := r.db.GetContext(ctx, &record, query, patientID); err != nil {
		if errors.Is(notFound(err), repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get treatment: %w", err)
	}
	return &record, nil
}
