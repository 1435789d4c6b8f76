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

	"github.com/cgeisenberger/lisanon/internal/config"
	"github.com/cgeisenberger/lisanon/internal/engine"
	"github.com/cgeisenberger/lisanon/internal/preset"
	"github.com/cgeisenberger/lisanon/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the de-identification pipeline over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP server port")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	p, err := preset.Load(cfg.Preset)
	if err != nil {
		return err
	}

	ner := engine.NewHTTPEngine(cfg.EngineURL, cfg.EngineTimeout)
	srv := server.New(p, server.WithEngine(ner))

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", servePort),
		Handler: srv,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", servePort).Str("preset", p.Name).Msg("server_listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	log.Info().Msg("server_stopped")
	return nil
}
