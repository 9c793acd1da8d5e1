package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/qualitycheck/internal/config"
	"github.com/JonMunkholm/qualitycheck/internal/core"
	"github.com/JonMunkholm/qualitycheck/internal/logging"
)

// app holds what every subcommand needs once the root has loaded it.
type app struct {
	profile string
	cfg     *config.Config
	logs    io.Closer
}

// close releases the log file. It is safe to call more than once.
func (a *app) close() error {
	if a.logs == nil {
		return nil
	}
	err := a.logs.Close()
	a.logs = nil
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "qualitycheck",
		Short: "Compare a Complot export with a GIS layer",
		Long: `qualitycheck joins a Complot CSV export and a GIS layer workbook on the
file link column, compares block, parcel, plot and address for every
linked pair and writes an Excel report plus a plain-text summary.

Configuration comes from the environment (QC_*, SERVER_*, RUN_*, LOG_*),
an optional .env file and an optional YAML match profile.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithProfile(a.profile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logs = logging.Setup(logging.Options{
				Level:      cfg.Logging.Level,
				Format:     cfg.Logging.Format,
				File:       cfg.Logging.File,
				MaxSizeMB:  cfg.Logging.FileMaxSizeMB,
				MaxBackups: cfg.Logging.FileMaxBackups,
			})
			slog.Debug("configuration loaded", "config", cfg.String())
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	root.PersistentFlags().StringVar(&a.profile, "profile", "", "YAML match profile overriding the QC_* settings")

	root.AddCommand(
		newRunCmd(a),
		newServeCmd(a),
		newFieldsCmd(a),
	)
	return root
}

// openHistory returns the Postgres run history when DATABASE_URL is set,
// and nil (in-memory history) otherwise. The returned func releases the pool.
func openHistory(ctx context.Context, cfg *config.Config) (core.RunHistory, func(), error) {
	if cfg.Database.URL == "" {
		return nil, func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	history, err := core.NewPgRunHistory(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	slog.Info("run history stored in database")
	return history, pool.Close, nil
}
