package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rpattn/listimport/internal/app"
	"github.com/rpattn/listimport/internal/config"
	"github.com/rpattn/listimport/internal/db"
	"github.com/rpattn/listimport/internal/export"
	"github.com/rpattn/listimport/internal/fieldloader"
	"github.com/rpattn/listimport/internal/ingestion"

	"github.com/spf13/cobra"
)

// errIncomplete is returned in strict mode when records were not written.
var errIncomplete = errors.New("import finished with rejected or failed records")

type rootOptions struct {
	configDir string
	logLevel  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:          "listimport",
		Short:        "Import CSV and XLSX records into a list store",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configDir, "config", ".", "Directory containing config.yaml")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	cmd.AddCommand(newImportCmd(&opts), newMigrateCmd(&opts), newFieldsCmd(&opts), newLogsCmd(&opts))
	return cmd
}

func loadConfig(opts *rootOptions) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(opts.configDir)
	if err != nil {
		return cfg, nil, err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	return cfg, app.NewLogger(os.Stderr, cfg.LogLevel), nil
}

func newImportCmd(root *rootOptions) *cobra.Command {
	var (
		file    string
		migrate bool
		strict  bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a file into the target list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(root)
			if err != nil {
				return err
			}

			rt, err := app.Start(cmd.Context(), cfg, logger, migrate)
			if err != nil {
				logger.Error("failed to start", slog.String("error", err.Error()))
				return err
			}
			defer rt.Close()

			name, reader, err := rt.Opener.Open(cmd.Context(), file)
			if err != nil {
				return err
			}
			defer reader.Close()

			service := rt.NewService(fieldloader.NewFieldLoader(rt.Fields, cfg.Target.ListName))
			summary, err := service.Import(cmd.Context(), ingestion.Request{FileName: name, Data: reader})
			if err != nil {
				logger.Error("import failed", slog.String("error", err.Error()))
				return err
			}

			if err := writeJSON(cmd.OutOrStdout(), summary); err != nil {
				return err
			}
			if strict && (summary.Rejected > 0 || summary.Failed > 0) {
				return errIncomplete
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Input file path or s3://bucket/key location (required)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply list store migrations before importing")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any record was rejected or failed")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newMigrateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply list store migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(root)
			if err != nil {
				return err
			}
			return db.RunMigrations(cfg.Database, logger)
		},
	}
}

func newFieldsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the target list fields and how their values are resolved",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(root)
			if err != nil {
				return err
			}
			rt, err := app.Start(cmd.Context(), cfg, logger, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			fields, err := rt.Fields.List(cmd.Context(), cfg.Target.ListName)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), fields)
		},
	}
}

func newLogsCmd(root *rootOptions) *cobra.Command {
	var (
		file   string
		format string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recorded import failures",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "csv" {
				return fmt.Errorf("invalid --format %q (want json or csv)", format)
			}
			cfg, logger, err := loadConfig(root)
			if err != nil {
				return err
			}
			rt, err := app.Start(cmd.Context(), cfg, logger, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			if format == "csv" {
				_, err := export.NewService(rt.Logs).WriteFailures(cmd.Context(), cmd.OutOrStdout(), cfg.Target.ListName, file)
				return err
			}

			logs, err := rt.Logs.List(cmd.Context(), cfg.Target.ListName, file, limit, offset)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), logs)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Only show failures of this file name")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json, or csv for a full correction report")
	cmd.Flags().IntVar(&limit, "limit", 200, "Maximum number of entries")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of entries to skip")
	return cmd
}

func writeJSON(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
