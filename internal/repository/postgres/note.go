package postgres

import (
	"context"
	"fmt"

	"github.com/jwalitptl/clinic-ledger/internal/model"
	"github.com/jwalitptl/clinic-ledger/internal/repository"
)

type noteRepository struct {
	BaseRepository
}

func NewNoteRepository(base BaseRepository) repository.NoteRepository {
	return &noteRepository{base}
}

func (r *noteRepository) Create(ctx context.Context, note *model.TreatmentNote) error {
	query := `
		INSERT INTO treatment_notes (patient_id, note_date, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, note.PatientID, note.NoteDate, note.Body).
		Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

func (r *noteRepository) Get(ctx context.Context, id int64) (*model.TreatmentNote, error) {
	query := `
		SELECT id, patient_id, note_date, body, created_at, updated_at
		FROM treatment_notes
		WHERE id = $1
	`
	var note model.TreatmentNote
	if err := r.db.GetContext(ctx, &note, query, id); err != nil {
		return nil, fmt.Errorf("failed to get note: %w", notFound(err))
	}
	return &note, nil
}

func (r *noteRepository) Update(ctx context.Context, note *model.TreatmentNote) error {
	query := `
		UPDATE treatment_notes
		SET note_date = $1, body = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, note.NoteDate, note.Body, note.ID).Scan(&note.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", notFound(err))
	}
	return nil
}

func (r *noteRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM treatment_notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *noteRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.TreatmentNote, error) {
	query := `
		SELECT id, patient_id, note_date, body, created_at, updated_at
		FROM treatment_notes
		WHERE patient_id = $1
		ORDER BY note_date ASC, id ASC
	`
	notes := []*model.TreatmentNote{}
	if err := r.db.SelectContext(ctx, &notes, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}
