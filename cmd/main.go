package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bistro/internal/api"
	"bistro/internal/config"
	"bistro/internal/database"
	"bistro/internal/events"
	"bistro/internal/kitchen"
	"bistro/internal/logger"
	"bistro/internal/monitoring"

	"github.com/gin-gonic/gin"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
	seed        = flag.Bool("seed", false, "Replace the menu with the default items at start-up")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.Metrics.Port = *metricsPort
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	gin.SetMode(cfg.Server.Mode)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	// Initialize context
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize database; an unreachable store stops start-up
	store, err := database.Open(ctx, database.Options{
		URI:             cfg.Database.URI,
		Name:            cfg.Database.Name,
		Timeout:         cfg.Database.Timeout,
		CredentialsFile: cfg.Database.CredentialsFile,
		Debug:           cfg.Database.Debug,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()
	log.Info("connected to database", "backend", database.Backend(cfg.Database.URI))

	if *seed {
		items, err := database.Seed(ctx, store)
		if err != nil {
			return err
		}
		log.Info("menu seeded", "items", len(items))
	}

	monitor := monitoring.NewMonitor()

	hub := kitchen.NewHub(log.With("component", "kitchen"), cfg.Server.CORSOrigins...)
	hub.OnCount = monitor.SetKitchenClients
	defer hub.Close()

	publishers := events.Multi{hub}
	if cfg.Messaging.AMQPURL != "" {
		amqpPub, err := events.DialAMQP(cfg.Messaging.AMQPURL)
		if err != nil {
			// Events are best-effort; the API still serves without a broker
			log.Warn("order events will not be sent to the broker", "error", err)
		} else {
			defer amqpPub.Close()
			publishers = append(publishers, amqpPub)
			log.Info("publishing order events to broker")
		}
	}

	// Initialize API server
	restaurant := api.NewRestaurantAPI(store, api.Options{
		Logger:      log,
		Monitor:     monitor,
		Hub:         hub,
		Publisher:   publishers,
		CORSOrigins: cfg.Server.CORSOrigins,
		JWTSecret:   cfg.Auth.JWTSecret,
	})
	if cfg.Auth.JWTSecret == "" {
		log.Warn("admin routes are not protected; set JWT_SECRET to require a token")
	}

	// Start metrics server
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = startMetricsServer(cfg.Metrics, monitor, log)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           restaurant.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting API server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	select {
	case <-ctx.Done():
		log.Info("shutting down servers")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("API server error: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("API server shutdown error", "error", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Error("metrics server shutdown error", "error", err)
		}
	}
	return nil
}

func startMetricsServer(cfg config.MetricsConfig, monitor *monitoring.Monitor, log *slog.Logger) *http.Server {
	path := cfg.Path
	if path == "" {
		path = "/metrics"
	}

	metricsRouter := gin.New()
	metricsRouter.Use(gin.Recovery())
	metricsRouter.GET(path, gin.WrapH(monitor.Handler()))

	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           metricsRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting metrics server", "port", cfg.Port, "path", path)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", "error", err)
		}
	}()
	return metricsServer
}
