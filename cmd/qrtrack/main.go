package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/qrtrack/internal/config"
	"github.com/deppfellow/qrtrack/internal/database"
	"github.com/deppfellow/qrtrack/internal/handler"
	"github.com/deppfellow/qrtrack/internal/logger"
	"github.com/deppfellow/qrtrack/internal/repository"
	"github.com/deppfellow/qrtrack/internal/router"
	"github.com/deppfellow/qrtrack/internal/server"
	"github.com/deppfellow/qrtrack/internal/service"
	"github.com/rs/zerolog"
)

const (
	// DefaultContextTimeout bounds schema bootstrap and graceful shutdown.
	DefaultContextTimeout = 30 * time.Second
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	loggerService := logger.NewLoggerService(&cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(&cfg.Observability, loggerService)

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	migrateCtx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout)
	err = database.Migrate(migrateCtx, &log, srv.DB)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap database schema")
	}

	repos := repository.NewRepositories(srv)

	services, err := service.NewServices(srv, repos)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create services")
	}

	handlers := handler.NewHandlers(srv, services)
	r := router.NewRouter(srv, handlers)

	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
