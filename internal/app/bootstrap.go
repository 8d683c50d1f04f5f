package app

import (
	"fmt"

	"github.com/jwalitptl/clinic-ledger/internal/config"
	"github.com/jwalitptl/clinic-ledger/internal/repository"
	"github.com/jwalitptl/clinic-ledger/internal/repository/memory"
	"github.com/jwalitptl/clinic-ledger/internal/repository/postgres"
	"github.com/jwalitptl/clinic-ledger/pkg/logger"
)

// OpenStore connects the configured storage driver.
func OpenStore(cfg config.DatabaseConfig) (*repository.Store, error) {
	switch cfg.Driver {
	case "memory":
		return memory.NewStore(), nil
	case "postgres":
		db, err := postgres.NewDB(cfg)
		if err != nil {
			return nil, err
		}
		return postgres.NewStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewLogger builds the process logger and installs it globally.
func NewLogger(cfg config.LoggingConfig) *logger.Logger {
	lc := &logger.Config{
		Level:  logger.ParseLevel(cfg.Level),
		Format: cfg.Format,
	}
	if cfg.File.Enabled {
		lc.File = &logger.FileConfig{
			Path:       cfg.File.Path,
			MaxSizeMB:  cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAgeDays: cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		}
	}
	l := logger.NewLogger(lc)
	l.SetGlobal()
	return l
}
