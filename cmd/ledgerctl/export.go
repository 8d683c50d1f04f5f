package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-ledger/internal/app"
	"github.com/jwalitptl/clinic-ledger/internal/document"
	"github.com/jwalitptl/clinic-ledger/internal/email"
)

func newExportCommand() *cobra.Command {
	var (
		format string
		outDir string
		mail   bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the patients financial report",
		Long: `Writes patients_financial_report_YYYY-MM-DD.<xlsx|csv> with one row per patient,
latest appointment first. With --mail the file is also sent to export.recipients.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if format == "" {
				format = cfg.Export.Format
			}
			f, err := document.ParseFormat(format)
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = cfg.Export.Directory
			}

			store, err := app.OpenStore(cfg.Database)
			if err != nil {
				return err
			}
			defer store.Close()
			svcs := app.NewServices(cfg, store, nil)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			var buf bytes.Buffer
			if err := svcs.Statements.ExportSummary(ctx, f, &buf); err != nil {
				return fmt.Errorf("failed to build report: %w", err)
			}

			name := f.FileName(time.Now())
			path := filepath.Join(outDir, name)
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			if err := os.WriteFile(path, buf.Bytes(), 0o640); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			log.Info().Str("path", path).Int("bytes", buf.Len()).Msg("Report written")

			if !mail {
				return nil
			}
			mailer := email.NewSMTPService(cfg.SMTP)
			err = mailer.SendExport(ctx, cfg.Export.Recipients,
				fmt.Sprintf("%s: patients financial report", cfg.Clinic.Name),
				"The latest patients financial report is attached.",
				email.Attachment{Name: name, ContentType: f.ContentType(), Data: buf.Bytes()},
			)
			if err != nil {
				return err
			}
			log.Info().Strs("recipients", cfg.Export.Recipients).Msg("Report mailed")
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "xlsx or csv (default: export.format)")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default: export.directory)")
	cmd.Flags().BoolVar(&mail, "mail", false, "mail the report to export.recipients")
	return cmd
}
