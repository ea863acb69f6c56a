package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/grimaldi89/martechito/internal/server"
	"github.com/grimaldi89/martechito/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and WebSocket API server",
	Long: `Starts the assistant's HTTP server: chat with per-session state,
ingestion triggers, and a WebSocket chat endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		embedder, err := buildEmbedder(cfg)
		if err != nil {
			return err
		}
		provider, err := buildProvider(cfg)
		if err != nil {
			return err
		}

		manager, store, err := openIndex(cfg, embedder)
		if err != nil {
			return err
		}

		cat, err := openCatalog(cfg)
		if err != nil {
			return err
		}
		defer cat.Close()

		sink := telemetry.NewSink(cfg.Telemetry.URL)
		retriever := buildRetriever(cfg, embedder, store)
		engine := buildEngine(cfg, provider, retriever, sink)
		pipeline := buildPipeline(cfg, embedder, manager, store)

		srv := server.New(server.Config{
			Port:     cfg.Server.Port,
			AllowAll: cfg.Server.AllowAll,
			Include:  cfg.Include,
			Exclude:  cfg.Exclude,
		}, cat, pipeline, engine)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		sink.Flush()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
