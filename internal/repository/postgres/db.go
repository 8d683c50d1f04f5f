package postgres

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/jwalitptl/clinic-ledger/internal/config"
	"github.com/jwalitptl/clinic-ledger/internal/repository"
)

func NewDB(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// NewStore wires every ledger repository to one connection pool.
func NewStore(db *sqlx.DB) *repository.Store {
	base := NewBaseRepository(db)
	return &repository.Store{
		Patients:   NewPatientRepository(base),
		Treatments: NewTreatmentRepository(base),
		Payments:   NewPaymentRepository(base),
		Notes:      NewNoteRepository(base),
		Users:      NewUserRepository(base),
		Outbox:     NewOutboxRepository(base),
		Ping:       db.PingContext,
		Close:      db.Close,
	}
}
