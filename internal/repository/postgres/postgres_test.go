package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-ledger/internal/model"
	"github.com/jwalitptl/clinic-ledger/internal/repository"
)

// openTestDB connects to LEDGER_TEST_DATABASE_URL, migrates it and clears
// the ledger tables. Tests are skipped when the variable is unset.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("LEDGER_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("LEDGER_TEST_DATABASE_URL not set")
	}
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = NewMigrator(db).Up(context.Background())
	require.NoError(t, err)
	_, err = db.Exec(`TRUNCATE payments, treatment_notes, treatments, patients, users, outbox_events RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return db
}

func TestMigratorLoad(t *testing.T) {
	migrations, err := NewMigrator(nil).Load()
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "001_init.sql", migrations[0].Name)
	assert.Contains(t, migrations[0].SQL, "patients_mobile_key")
	assert.Equal(t, 2, migrations[1].Version)
}

func TestPostgresLedger(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	p := &model.Patient{
		AppointmentDate: model.NewDate(2024, 1, 5),
		Name:            "Asha",
		Type:            model.PatientTypeNew,
		Mobile:          "+919999999999",
		City:            "Guntur",
		Problem:         "Toothache",
	}
	require.NoError(t, store.Patients.Create(ctx, p))
	assert.NotZero(t, p.ID)

	dup := *p
	err := store.Patients.Create(ctx, &dup)
	assert.ErrorIs(t, err, repository.ErrDuplicateMobile)

	_, err = store.Patients.Get(ctx, p.ID+100)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	rec, err := store.Treatments.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, store.Treatments.Upsert(ctx, &model.TreatmentRecord{
		PatientID: p.ID, Plan: "RCT", FinalAmount: decimal.RequireFromString("5000"), Consultant: "Dr K", Lab: "L1",
	}))
	require.NoError(t, store.Treatments.Upsert(ctx, &model.TreatmentRecord{
		PatientID: p.ID, Plan: "Crown", FinalAmount: decimal.RequireFromString("6000"),
	}))
	rec, err = store.Treatments.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Crown", rec.Plan)
	assert.Empty(t, rec.Lab)
	assert.True(t, rec.FinalAmount.Equal(decimal.RequireFromString("6000")))

	for _, amt := range []string{"2000", "1000.50"} {
		require.NoError(t, store.Payments.Create(ctx, &model.Payment{
			PatientID: p.ID, PaymentDate: model.NewDate(2024, 1, 6), Amount: decimal.RequireFromString(amt), Mode: model.PaymentModeCash,
		}))
	}
	sum, err := store.Payments.SumByPatient(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "3000.5", sum.String())

	payments, err := store.Payments.ListByPatient(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	require.NoError(t, store.Payments.Delete(ctx, payments[0].ID))
	require.NoError(t, store.Payments.Delete(ctx, payments[0].ID))

	sum, err = store.Payments.SumByPatient(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "1000.5", sum.String())
}
