package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-ledger/internal/repository/postgres"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(ctx context.Context, m *postgres.Migrator) error {
				applied, err := m.Up(ctx)
				if err != nil {
					return fmt.Errorf("failed to run migrations: %w", err)
				}
				if len(applied) == 0 {
					fmt.Println("Schema is up to date.")
					return nil
				}
				for _, name := range applied {
					fmt.Printf("Applied %s\n", name)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(ctx context.Context, m *postgres.Migrator) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to read migration status: %w", err)
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED AT")
				for _, s := range statuses {
					appliedAt := "pending"
					if s.Applied && s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format(time.RFC3339)
					}
					fmt.Fprintf(w, "%03d\t%s\t%s\n", s.Version, s.Name, appliedAt)
				}
				return w.Flush()
			})
		},
	})

	return cmd
}

func withMigrator(fn func(ctx context.Context, m *postgres.Migrator) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("migrations need the postgres driver, got %q", cfg.Database.Driver)
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	return fn(ctx, postgres.NewMigrator(db))
}
