package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/veridex-io/mailguard/internal/config"
	"github.com/veridex-io/mailguard/internal/server"
	"github.com/veridex-io/mailguard/internal/trigger"
)

var (
	servePort         int
	serveGlobalRPM    int
	servePerClientRPM int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the mailguard server with webhook and scheduled triggers",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP server port")
	serveCmd.Flags().IntVar(&serveGlobalRPM, "global-rpm", 600, "total requests/minute across all clients")
	serveCmd.Flags().IntVar(&servePerClientRPM, "per-client-rpm", 120, "requests/minute per client address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	runner, tools, runs, err := buildRunner(cfg)
	if err != nil {
		return err
	}
	defer runs.Close()

	if cfg.WebhookToken == "" {
		log.Warn().Msg("MAILGUARD_WEBHOOK_TOKEN not set — document webhook accepts unauthenticated requests")
	}
	webhook := trigger.NewWebhookHandler(runner, cfg.WebhookToken)

	scheduler := trigger.NewScheduler()
	if cfg.SweepSchedule != "" {
		digest := trigger.NewDigestJob(runs, tools)
		if err := scheduler.Register("daily_digest", cfg.SweepSchedule, digest); err != nil {
			return fmt.Errorf("registering digest schedule: %w", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := server.NewServer(runner, runs, webhook,
		server.WithToolClient(tools),
		server.WithRateLimiter(server.NewRateLimiter(serveGlobalRPM, servePerClientRPM)),
	)

	addr := fmt.Sprintf(":%d", servePort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().
		Str("addr", addr).
		Int("cron_entries", scheduler.Entries()).
		Str("tool_endpoint", cfg.ToolEndpoint).
		Str("reasoning_model", cfg.ReasoningModel).
		Msg("mailguard_serve_started")

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown_signal_received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	log.Info().Msg("mailguard_serve_stopped")
	return nil
}
