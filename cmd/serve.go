package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/harshpatel5940/webhookauth/internal/config"
	"github.com/harshpatel5940/webhookauth/internal/database"
	"github.com/harshpatel5940/webhookauth/internal/logging"
	"github.com/harshpatel5940/webhookauth/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		Short:   "Run the webhook receiver",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info().
		Str("port", cfg.Port).
		Bool("check_client_ip", cfg.CheckClientIP).
		Bool("trust_proxy_headers", cfg.TrustProxyHeaders).
		Bool("persistence", cfg.PersistenceEnabled()).
		Msg("configuration loaded")

	// Setup context with signal handling
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database (optional - deliveries are not audited without it)
	var db *database.DB
	if cfg.PersistenceEnabled() {
		db, err = database.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error().Err(err).Msg("failed to connect to database")
			return err
		}
		defer db.Close()
		logger.Info().Msg("connected to database")

		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Error().Err(err).Msg("failed to run migrations")
			return err
		}
		logger.Info().Msg("migrations completed")
	} else {
		logger.Warn().Msg("no DATABASE_URL configured - delivery audit log disabled")
	}

	// Create and start server
	srv := server.New(cfg, db, logger)

	if err := srv.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("server error")
		return err
	}

	logger.Info().Msg("server stopped gracefully")
	return nil
}
