package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"fluxo/internal/config"
	"fluxo/internal/database"
	"fluxo/internal/events"
	"fluxo/internal/logger"
	"fluxo/internal/router"
	"fluxo/internal/telemetry"
)

// @title           Fluxo API
// @version         1.0
// @description     Fluxo is a cash-box ledger: named boxes, signed movements mirrored onto the Principal box, bills paid from several boxes, rollovers and reports.

// @host      localhost:3333
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.

const shutdownTimeout = 10 * time.Second

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTracing(ctx, appConfig.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warnw("tracer shutdown failed", "error", err)
		}
	}()

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("database close failed", "error", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if appConfig.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(appConfig.AMQPURL, appConfig.AMQPExchange, appConfig.AMQPRoutingKey)
		if err != nil {
			return fmt.Errorf("failed to connect event publisher: %w", err)
		}
		publisher = amqpPublisher
		log.Infow("Publishing ledger events", "exchange", appConfig.AMQPExchange)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warnw("event publisher close failed", "error", err)
		}
	}()

	metrics := telemetry.NewMetrics()
	svc := router.NewServices(dbManager.DB(), appConfig, publisher, metrics)

	if _, err := svc.Box.EnsurePrincipal(ctx); err != nil {
		return fmt.Errorf("failed to seed the Principal box: %w", err)
	}
	if !svc.Auth.Enabled() {
		log.Warn("AUTH_PASSWORD_HASH is not set, the API is open")
	}

	handler := router.New(svc, metrics, router.Options{
		MetricsAPIKey: appConfig.MetricsAPIKey,
		Ping:          dbManager.Ping,
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Fluxo server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
