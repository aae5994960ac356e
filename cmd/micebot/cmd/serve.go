package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"micebot/internal/api"
	"micebot/internal/bot"
	"micebot/internal/config"
	"micebot/internal/handler"
	"micebot/internal/messages"
	"micebot/internal/middleware"
	"micebot/internal/router"
	"micebot/internal/tracing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Authenticate against the API and start the webhook server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to run the server on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind the server to")
	_ = viper.BindPFlag("SERVER_PORT", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("SERVER_HOST", serveCmd.Flags().Lookup("host"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	logger.Info().Msg("starting micebot")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(cfg.Tracing, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("failed to flush traces")
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	catalog, err := loadCatalog(ctx, cfg.Messages, logger)
	if err != nil {
		return fmt.Errorf("failed to load messages: %w", err)
	}

	client := newClient(cfg, logger, api.WithMetrics(api.NewMetrics(reg)))

	authenticated, err := client.Authenticate(ctx)
	if err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}
	if !authenticated {
		return errors.New("authentication rejected: check API_USERNAME and API_PASSWORD")
	}
	logger.Info().Str("endpoint", cfg.API.Endpoint).Msg("authenticated against the API")

	commandBot := bot.New(client, catalog, bot.Settings{
		Prefix:         cfg.Bot.CommandPrefix,
		DateTimeFormat: cfg.Bot.DateTimeFormat,
		DefaultSummary: cfg.Bot.DefaultProductSummary,
		DeleteAfter:    cfg.Bot.DeleteMessageAfter,
		Thumbnail:      cfg.Bot.ThumbnailURL,
		AdminRoles:     cfg.Bot.AdminRoles,
	}, logger)

	mux := router.New(handler.NewMessageHandler(commandBot, logger), router.Options{
		WebhookSecret: cfg.Bot.WebhookSecret,
		Gatherer:      reg,
		HTTPMetrics:   middleware.NewHTTPMetrics(reg),
		Tracer:        otel.Tracer("micebot/internal/router"),
		Logger:        logger,
	})

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
		return nil
	})

	return g.Wait()
}

// loadCatalog loads the reply catalog from S3, the local file or the built-in defaults.
func loadCatalog(ctx context.Context, cfg config.MessagesConfig, logger zerolog.Logger) (*messages.Catalog, error) {
	var s3Loader messages.Loader
	if cfg.S3Enabled {
		loader, err := messages.NewS3Loader(ctx, cfg.S3Bucket, cfg.S3Region, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			s3Loader = loader
		}
	}

	loader := messages.NewFallbackLoader(s3Loader, messages.NewFileLoader(logger), cfg.S3Key, cfg.S3Enabled, logger)
	return loader.Load(ctx, cfg.File)
}
