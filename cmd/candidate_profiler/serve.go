package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-profiler/internal/db"
	"github.com/jonathan/candidate-profiler/internal/logger"
	"github.com/jonathan/candidate-profiler/internal/server"
	"github.com/jonathan/candidate-profiler/internal/server/ratelimit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Serve the extraction and merge pipeline over HTTP. Candidate storage endpoints are
enabled when a database URL is configured.

Endpoints:
  GET    /health
  POST   /extract
  POST   /candidates
  POST   /candidates/stream   (Server-Sent Events)
  GET    /candidates
  GET    /candidates/{id}
  DELETE /candidates/{id}`,
	RunE: runServe,
}

var (
	serveAddr        string
	serveNoRateLimit bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Address to listen on")
	serveCmd.Flags().BoolVar(&serveNoRateLimit, "no-rate-limit", false, "Disable per-client rate limiting")

	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(commandContext(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, err := newRunner(settings)
	if err != nil {
		return err
	}

	var store db.Store
	if settings.DatabaseURL != "" {
		store, err = openStore(ctx, settings)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
	}

	limits := ratelimit.DefaultConfig()
	limits.Enabled = !serveNoRateLimit

	srv, err := server.New(server.Config{
		Addr:            serveAddr,
		Runner:          runner,
		Store:           store,
		RateLimit:       limits,
		ReviewThreshold: settings.ReviewThreshold,
		Logger:          *logger.Ctx(ctx),
	})
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}
