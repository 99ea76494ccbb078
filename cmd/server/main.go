package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"greenride/internal/app"
	"greenride/internal/config"
	"greenride/internal/handler"
	"greenride/internal/logging"
	"greenride/internal/maps"
	internalRedis "greenride/internal/redis"
	"greenride/internal/repository/memory"
	"greenride/internal/repository/postgres"
	"greenride/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()
	logger := logging.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic first so the database can be instrumented.
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logger.Error("failed to initialize New Relic", slog.String("error", err.Error()))
		} else {
			logger.Info("New Relic enabled", slog.String("app", cfg.NewRelic.AppName))
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		logger.Error("failed to connect to redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()
	logger.Info("connected to Redis")

	// Wire dependencies.
	server, err := wireServer(ctx, db, redisClient, nrApp, cfg, logger)
	if err != nil {
		logger.Error("failed to wire server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start server in goroutine.
	go func() {
		logger.Info("starting server", slog.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(ctx context.Context, db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config, logger *slog.Logger) (*http.Server, error) {
	// Redis stores.
	liveStore := internalRedis.NewLiveLocationStore(redisClient)
	geoIndex := internalRedis.NewDriverGeoIndex(redisClient)

	// Live matching state is in memory; only terminal trips persist.
	presenceRegistry := memory.NewPresenceRegistry()
	offerBoard := memory.NewOfferBoard()
	notificationInbox := memory.NewNotificationInbox()

	tripArchive := postgres.NewTripArchive(db)
	if err := tripArchive.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	// Route geometry is optional; without a Maps key trips simply have
	// no polyline.
	var routeProvider service.RouteProvider
	if cfg.Maps.Enabled && cfg.Maps.APIKey != "" {
		routeService, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			return nil, err
		}
		routeProvider = routeService
	}

	// Services.
	notificationService := service.NewNotificationService(notificationInbox, logger)
	presenceService := service.NewPresenceService(presenceRegistry, geoIndex)
	boardService := service.NewBoardService(offerBoard, presenceRegistry, tripArchive, notificationService, routeProvider, cfg.Matching.MaxDeviationKm, logger)
	liveService := service.NewLiveLocationService(liveStore)
	tripService := service.NewTripService(offerBoard, presenceRegistry, liveStore, tripArchive, notificationService, logger)
	analyticsService := service.NewAnalyticsService(tripArchive)

	// Handlers.
	driverHandler := handler.NewDriverHandler(presenceService, boardService, liveService)
	riderHandler := handler.NewRiderHandler(boardService, liveService)
	tripHandler := handler.NewTripHandler(tripService, analyticsService)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		DriverHandler:       driverHandler,
		RiderHandler:        riderHandler,
		TripHandler:         tripHandler,
		NotificationHandler: notificationHandler,
		RedisClient:         redisClient,
		NewRelicApp:         nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, nil
}
