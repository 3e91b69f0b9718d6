package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"clinic/backend/internal/config"
	"clinic/backend/internal/store"
	"clinic/backend/internal/store/postgres"
	"clinic/backend/migrations"
)

func migrateCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending postgres migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			log := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			if cfg.StoreBackend != config.BackendPostgres {
				return fmt.Errorf("migrate: store backend is %q, want %q", cfg.StoreBackend, config.BackendPostgres)
			}

			ctx := cmd.Context()
			log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
			st, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{MaxOpenConns: 2})
			if err != nil {
				return err
			}
			defer st.Close()

			version, err := st.Migrate(ctx, migrations.FS)
			if err != nil {
				return err
			}
			log.Info("schema migrated", slog.Uint64("version", uint64(version)))
			return nil
		},
	}
}

func exportCmd(configFile *string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every record of the configured store as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, *configFile, func(ctx context.Context, st store.Store, log *slog.Logger) error {
				data, err := st.ReadAll(ctx)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if out != "-" {
					f, err := os.Create(out)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}
				if err := writeDataset(w, data); err != nil {
					return err
				}
				log.Info("dataset exported", datasetLogArgs("out", out, data)...)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "-", "output file, - for stdout")
	return cmd
}

func importCmd(configFile *string) *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the configured store's contents with a JSON dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in == "" {
				return errors.New("import: --in is required")
			}
			raw, err := os.ReadFile(in)
			if err != nil {
				return err
			}
			var data store.Dataset
			if err := json.Unmarshal(raw, &data); err != nil {
				return fmt.Errorf("import: decode %s: %w", in, err)
			}
			if err := data.Check(); err != nil {
				return fmt.Errorf("import %s: %w", in, err)
			}

			return withStore(cmd, *configFile, func(ctx context.Context, st store.Store, log *slog.Logger) error {
				if err := st.WriteAll(ctx, data.Normalize()); err != nil {
					return err
				}
				log.Info("dataset imported", datasetLogArgs("in", in, data)...)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "JSON dataset to load")
	return cmd
}

func writeDataset(w io.Writer, data store.Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data.Normalize())
}

func datasetLogArgs(fileKey, file string, data store.Dataset) []any {
	return []any{
		slog.String(fileKey, file),
		slog.Int(string(store.Patients), len(data.Patients)),
		slog.Int(string(store.Doctors), len(data.Doctors)),
		slog.Int(string(store.Appointments), len(data.Appointments)),
	}
}

// withStore opens the configured store for a data command. Logs go to the
// command's stderr so stdout carries only data.
func withStore(cmd *cobra.Command, configFile string, fn func(context.Context, store.Store, *slog.Logger) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	log := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn("store close failed", slog.Any("err", err))
		}
	}()
	return fn(ctx, st, log)
}
