package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jwalitptl/clinic-ledger/internal/model"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateMobile is returned when an insert violates the unique mobile constraint.
	ErrDuplicateMobile = errors.New("mobile number already registered")
	// ErrDuplicateUsername is returned when an insert violates the unique username constraint.
	ErrDuplicateUsername = errors.New("username already taken")
)

// All repository interfaces in one file
type (
	// PatientRepository owns patient identity. Patients are never updated or deleted.
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id int64) (*model.Patient, error)
		GetByMobile(ctx context.Context, mobile string) (*model.Patient, error)
		List(ctx context.Context, order model.PatientOrder) ([]*model.Patient, error)
	}

	// TreatmentRepository stores at most one record per patient.
	// Get returns (nil, nil) when no record exists.
	TreatmentRepository interface {
		Upsert(ctx context.Context, record *model.TreatmentRecord) error
		Get(ctx context.Context, patientID int64) (*model.TreatmentRecord, error)
	}

	PaymentRepository interface {
		Create(ctx context.Context, payment *model.Payment) error
		Get(ctx context.Context, id int64) (*model.Payment, error)
		Delete(ctx context.Context, id int64) error
		ListByPatient(ctx context.Context, patientID int64) ([]*model.Payment, error)
		SumByPatient(ctx context.Context, patientID int64) (decimal.Decimal, error)
	}

	NoteRepository interface {
		Create(ctx context.Context, note *model.TreatmentNote) error
		Get(ctx context.Context, id int64) (*model.TreatmentNote, error)
		Update(ctx context.Context, note *model.TreatmentNote) error
		Delete(ctx context.Context, id int64) error
		ListByPatient(ctx context.Context, patientID int64) ([]*model.TreatmentNote, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		GetByUsername(ctx context.Context, username string) (*model.User, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int, maxRetries int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)

// Store bundles the repositories backed by one storage handle.
type Store struct {
	Patients   PatientRepository
	Treatments TreatmentRepository
	Payments   PaymentRepository
	Notes      NoteRepository
	Users      UserRepository
	Outbox     OutboxRepository
	Ping       func(ctx context.Context) error
	Close      func() error
}
