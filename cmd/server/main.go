// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/gousb"
	"go.uber.org/zap"

	_ "smartvns/docs"
	"smartvns/internal/config"
	"smartvns/internal/database"
	"smartvns/internal/discovery"
	serialscanner "smartvns/internal/discovery/serial"
	usbscanner "smartvns/internal/discovery/usb"
	"smartvns/internal/handler"
	"smartvns/internal/repository"
	"smartvns/internal/routes"
	"smartvns/internal/service"
	"smartvns/internal/utils"
)

// Application represents the main application
type Application struct {
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
	database *database.DB

	// Services
	deviceService    *service.DeviceService
	configService    *service.ConfigService
	discoveryService *service.DiscoveryService

	// Repositories
	deviceRepo repository.DeviceRepository
	configRepo repository.ConfigRepository
	eventRepo  repository.EventRepository

	// Infrastructure
	sessions       *service.SessionManager
	eventBus       *handler.EventBus
	scannerManager *discovery.ScannerManager

	backgroundCancel context.CancelFunc
}

// @title SmartVNS Device Service API
// @version 1.0.0
// @description Device management service for SmartVNS trackers and stimulators: configuration, stimulation control, pairing and discovery

// @contact.name SmartVNS Service Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8086
// @BasePath /api/v1
func main() {
	app, err := NewApplication()
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		app.logger.Fatal("Failed to start application", zap.Error(err))
	}
}

// NewApplication creates a new application instance
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLogger := utils.NewServiceLogger(logger, "smartvns-service")
	serviceLogger.LogServiceStart(cfg.App.Version, cfg)

	app := &Application{
		config: cfg,
		logger: logger,
	}

	if err := app.initializeDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initializeRepositories(); err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	if err := app.initializeScanners(); err != nil {
		return nil, fmt.Errorf("failed to initialize scanners: %w", err)
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initializeServer(); err != nil {
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	return app, nil
}

// initializeDatabase sets up database connection and runs migrations
func (app *Application) initializeDatabase() error {
	db, err := database.NewConnection(app.config, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}

	app.database = db

	migrator := database.NewMigrator(db, app.logger, &app.config.Database)
	if err := migrator.Up(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	app.logger.Info("Database initialized successfully")
	return nil
}

// initializeRepositories creates repository instances
func (app *Application) initializeRepositories() error {
	app.deviceRepo = repository.NewDeviceRepository(app.database, app.logger)
	app.configRepo = repository.NewConfigRepository(app.database, app.logger)
	app.eventRepo = repository.NewEventRepository(app.database, app.logger)

	app.logger.Info("Repositories initialized successfully")
	return nil
}

// initializeScanners registers the transport scanners usable on this host
func (app *Application) initializeScanners() error {
	app.scannerManager = discovery.NewScannerManager(app.logger)

	app.scannerManager.RegisterScanner(serialscanner.NewScanner(app.logger, &serialscanner.Config{
		ScanTimeout: app.config.Device.Serial.Timeout,
		VendorID:    app.config.Device.USB.VendorID,
		ProductID:   app.config.Device.USB.ProductID,
	}))

	app.scannerManager.RegisterScanner(usbscanner.NewScanner(app.logger, &usbscanner.Config{
		ScanTimeout: app.config.Device.USB.Timeout,
		VendorID:    gousb.ID(app.config.Device.USB.VendorID),
		ProductID:   gousb.ID(app.config.Device.USB.ProductID),
	}))

	app.logger.Info("Scanners initialized",
		zap.Strings("available", app.scannerManager.GetAvailableScanners()),
	)
	return nil
}

// initializeServices creates service instances
func (app *Application) initializeServices() error {
	app.sessions = service.NewSessionManager(app.config, app.logger)

	app.eventBus = handler.NewEventBus(app.logger)
	go app.eventBus.Start()

	app.deviceService = service.NewDeviceService(
		app.deviceRepo,
		app.eventRepo,
		app.sessions,
		app.config,
		app.logger,
		app.eventBus,
	)

	app.configService = service.NewConfigService(
		app.deviceRepo,
		app.configRepo,
		app.eventRepo,
		app.sessions,
		app.logger,
		app.eventBus,
	)

	app.discoveryService = service.NewDiscoveryService(
		app.scannerManager,
		app.deviceRepo,
		app.config,
		app.logger,
	)

	app.logger.Info("Services initialized successfully")
	return nil
}

// initializeServer sets up HTTP server and routes
func (app *Application) initializeServer() error {
	routerManager := routes.NewRouter(
		app.config,
		app.logger,
		app.database,
		app.deviceService,
		app.configService,
		app.discoveryService,
		app.eventBus,
	)

	router := routerManager.SetupRouter()

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}

	app.logger.Info("HTTP server initialized",
		zap.String("address", app.config.GetServerAddr()),
	)

	return nil
}

// startBackgroundServices starts background services
func (app *Application) startBackgroundServices() {
	ctx, cancel := context.WithCancel(context.Background())
	app.backgroundCancel = cancel

	go app.deviceService.StartBatteryPolling(ctx)
	go app.startCleanupService(ctx)

	app.logger.Info("Background services started")
}

// startCleanupService removes old snapshots and events periodically
func (app *Application) startCleanupService(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	app.logger.Info("Cleanup service started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		cleanupCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)

		// Snapshots and events older than 30 days
		oldDate := time.Now().AddDate(0, 0, -30)

		deletedSnapshots, err := app.configRepo.DeleteOldSnapshots(cleanupCtx, oldDate)
		if err != nil {
			app.logger.Error("Failed to cleanup old config snapshots", zap.Error(err))
		} else if deletedSnapshots > 0 {
			app.logger.Info("Cleaned up old config snapshots", zap.Int64("deleted", deletedSnapshots))
		}

		deletedEvents, err := app.eventRepo.DeleteOldEvents(cleanupCtx, oldDate)
		if err != nil {
			app.logger.Error("Failed to cleanup old device events", zap.Error(err))
		} else if deletedEvents > 0 {
			app.logger.Info("Cleaned up old device events", zap.Int64("deleted", deletedEvents))
		}

		cancel()
	}
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	app.shutdown()
}

// shutdown performs graceful shutdown
func (app *Application) shutdown() {
	serviceLogger := utils.NewServiceLogger(app.logger, "smartvns-service")
	serviceLogger.LogServiceStop("shutdown signal received")

	if app.backgroundCancel != nil {
		app.backgroundCancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}

	// Console sessions hold serial ports open, release them before exit
	app.sessions.CloseAll()
	app.eventBus.Stop()

	if app.database != nil {
		if err := app.database.Close(); err != nil {
			app.logger.Error("Database close error", zap.Error(err))
		} else {
			app.logger.Info("Database connection closed")
		}
	}

	if err := utils.CloseLogger(app.logger); err != nil {
		fmt.Printf("Logger close error: %v\n", err)
	}

	app.logger.Info("Application shutdown completed")
}

func (app *Application) Start() error {
	go func() {
		app.logger.Info("Starting HTTP server",
			zap.String("address", app.server.Addr),
		)

		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	app.startBackgroundServices()

	app.waitForShutdown()

	return nil
}
