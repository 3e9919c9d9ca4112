package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/izposoja/internal/api"
	"github.com/erazemk/izposoja/internal/audit"
	"github.com/erazemk/izposoja/internal/config"
	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/ledger"
	"github.com/erazemk/izposoja/internal/rental"
	"github.com/erazemk/izposoja/internal/store"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (the default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

// engine is the wired rental engine on top of one database.
type engine struct {
	store   *store.Store
	ledger  *ledger.Ledger
	rentals *rental.Service
}

func newEngine(database *sql.DB, cfg config.Config) (*engine, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	tariff, err := cfg.Tariff()
	if err != nil {
		return nil, err
	}

	s := store.New(database)
	var rec audit.Recorder = audit.SlogRecorder{}
	if cfg.AuditDB {
		rec = audit.Multi{audit.SlogRecorder{}, audit.StoreRecorder{Store: s}}
	}

	l := ledger.New(s, rec)
	return &engine{
		store:   s,
		ledger:  l,
		rentals: rental.NewService(s, l, rec, policy, tariff),
	}, nil
}

// openDatabase opens and migrates the configured database.
func openDatabase(path string) (*sql.DB, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(database); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	cfg := opts.cfg

	// Set up structured logging: INFO/WARN to stdout, ERROR to stderr.
	// Optionally also write to a log file.
	closeLog, err := setupLogger(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.LogPath)
	if err != nil {
		return err
	}
	defer closeLog()

	// Check if DB exists, auto-init if not.
	if _, err := os.Stat(cfg.DBPath); errors.Is(err, os.ErrNotExist) {
		database, password, err := initDatabase(cfg.DBPath, cfg.AdminUser)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		database.Close()

		printInitResult(cmd.OutOrStdout(), cfg.DBPath, cfg.AdminUser, password)
		fmt.Fprintln(cmd.OutOrStdout())
	}

	database, err := openDatabase(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	slog.Info("database ready", "path", cfg.DBPath)

	eng, err := newEngine(database, cfg)
	if err != nil {
		return err
	}

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := eng.store.JWTSecret(cmd.Context())
	if err != nil {
		return fmt.Errorf("getting JWT secret: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", api.NewRouter(api.Deps{
		Store:     eng.store,
		Ledger:    eng.ledger,
		Rentals:   eng.rentals,
		JWTSecret: jwtSecret,
	}))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	policy := eng.rentals.Policy()
	slog.Info("server started", "addr", cfg.Addr,
		"daily_late_fee", policy.DailyLateFee.String(), "max_days", policy.MaxDays, "audit_db", cfg.AuditDB)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}
