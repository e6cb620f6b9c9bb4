package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nbjcoach/nbjfeedback"
	"github.com/nbjcoach/nbjfeedback/internal/config"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the feedback HTTP server.

  POST /api/nbj_feedback             default profile (NBJ_PROFILE)
  POST /api/nbj_feedback/{profile}   perspective, tone or reflection
  GET  /health                       liveness`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides NBJ_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.ServerAddr = serveAddr
	}

	app, err := nbjfeedback.NewBuilder().
		WithConfig(cfg).
		WithLogger(slog.Default()).
		Build()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		return err
	}
	slog.Info("Server stopped")
	return nil
}
