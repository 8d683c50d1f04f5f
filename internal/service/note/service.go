package note

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jwalitptl/clinic-ledger/internal/model"
	"github.com/jwalitptl/clinic-ledger/internal/repository"
	apperrors "github.com/jwalitptl/clinic-ledger/pkg/errors"
)

type Service struct {
	repo     repository.NoteRepository
	patients repository.PatientRepository
}

func NewService(repo repository.NoteRepository, patients repository.PatientRepository) *Service {
	return &Service{repo: repo, patients: patients}
}

func validate(req *model.NoteRequest) error {
	verr := &apperrors.ValidationError{}
	if req.NoteDate.IsZero() {
		verr.Add("note_date", "is required")
	}
	if strings.TrimSpace(req.Body) == "" {
		verr.Add("body", "is required")
	}
	return verr.OrNil()
}

func (s *Service) Create(ctx context.Context, patientID int64, req *model.NoteRequest) (*model.TreatmentNote, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	note := &model.TreatmentNote{
		PatientID: patientID,
		NoteDate:  req.NoteDate,
		Body:      strings.TrimSpace(req.Body),
	}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return note, nil
}

func (s *Service) Update(ctx context.Context, id int64, req *model.NoteRequest) (*model.TreatmentNote, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	note, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	note.NoteDate = req.NoteDate
	note.Body = strings.TrimSpace(req.Body)
	if err := s.repo.Update(ctx, note); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	return note, nil
}

// Delete returns the removed note so callers can publish it.
func (s *Service) Delete(ctx context.Context, id int64) (*model.TreatmentNote, error) {
	note, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to delete note: %w", err)
	}
	return note, nil
}

func (s *Service) List(ctx context.Context, patientID int64) ([]*model.TreatmentNote, error) {
	notes, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

func (s *Service) get(ctx context.Context, id int64) (*model.TreatmentNote, error) {
	note, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return note, nil
}
