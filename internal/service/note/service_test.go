package note

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-ledger/internal/model"
	"github.com/jwalitptl/clinic-ledger/internal/repository/memory"
	apperrors "github.com/jwalitptl/clinic-ledger/pkg/errors"
)

func TestNoteLifecycle(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	p := &model.Patient{AppointmentDate: model.NewDate(2024, 1, 1), Name: "Ravi", Type: model.PatientTypeOld, Mobile: "+919999999999", City: "Guntur", Problem: "Pain"}
	require.NoError(t, store.Patients.Create(ctx, p))
	svc := NewService(store.Notes, store.Patients)

	second, err := svc.Create(ctx, p.ID, &model.NoteRequest{NoteDate: model.NewDate(2024, 1, 9), Body: "Crown fitted"})
	require.NoError(t, err)
	first, err := svc.Create(ctx, p.ID, &model.NoteRequest{NoteDate: model.NewDate(2024, 1, 2), Body: " Access opening "})
	require.NoError(t, err)
	assert.Equal(t, "Access opening", first.Body)

	notes, err := svc.List(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, first.ID, notes[0].ID)

	updated, err := svc.Update(ctx, second.ID, &model.NoteRequest{NoteDate: model.NewDate(2024, 1, 10), Body: "Crown cemented"})
	require.NoError(t, err)
	assert.Equal(t, "Crown cemented", updated.Body)

	_, err = svc.Delete(ctx, first.ID)
	require.NoError(t, err)
	_, err = svc.Delete(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNoteNotFound)

	_, err = svc.Create(ctx, p.ID+1, &model.NoteRequest{NoteDate: model.NewDate(2024, 1, 2), Body: "x"})
	assert.ErrorIs(t, err, ErrPatientNotFound)

	var verr *apperrors.ValidationError
	_, err = svc.Create(ctx, p.ID, &model.NoteRequest{})
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
}
