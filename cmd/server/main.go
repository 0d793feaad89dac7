// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "mcintosh-service/docs"
	"mcintosh-service/internal/config"
	"mcintosh-service/internal/database"
	"mcintosh-service/internal/driver"
	"mcintosh-service/internal/handler"
	"mcintosh-service/internal/repository"
	"mcintosh-service/internal/routes"
	"mcintosh-service/internal/service"
	"mcintosh-service/internal/utils"
)

// auditRetention is how long audited commands are kept
const auditRetention = 30 * 24 * time.Hour

// Application represents the main application
type Application struct {
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
	database *database.DB
	router   *routes.Router
	eventBus *handler.EventBus

	// Services
	deviceService    *service.DeviceService
	operationService *service.OperationService
	discoveryService *service.DiscoveryService
	statusPoller     *service.StatusPoller

	// Repositories
	operationRepo repository.OperationRepository

	// Driver registry
	driverRegistry *driver.Registry

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// @title McIntosh Service API
// @version 1.0.0
// @description Control and monitoring API for McIntosh audio processors over RS-232 or IP

// @contact.name McIntosh Service API Support

// @host localhost:8084
// @BasePath /api/v1
func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	migrateAction := flag.String("migrate", "", "run an audit log schema action and exit: up, down, version or force N")
	flag.Parse()

	if *migrateAction != "" {
		cmd, err := parseMigrateCommand(*migrateAction, flag.Args())
		if err == nil {
			err = runMigrate(*configPath, cmd)
		}
		if err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	app, err := NewApplication(*configPath)
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		app.logger.Fatal("Failed to start application", zap.Error(err))
	}
}

// NewApplication creates a new application instance
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLogger := utils.NewServiceLogger(logger, "mcintosh-service")
	serviceLogger.LogServiceStart(cfg.App.Version, map[string]interface{}{
		"environment":   cfg.App.Environment,
		"model":         cfg.Device.Model,
		"target":        service.RedactTarget(cfg.Device.URL),
		"poll_interval": cfg.Device.PollInterval.String(),
		"database":      cfg.Database.Enabled,
	})

	app := &Application{
		config:   cfg,
		logger:   logger,
		eventBus: handler.NewEventBus(logger),
	}

	if err := app.initializeDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initializeRepositories(); err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	if err := app.initializeDriverRegistry(); err != nil {
		return nil, fmt.Errorf("failed to initialize driver registry: %w", err)
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initializeServer(); err != nil {
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	return app, nil
}

// initializeDatabase connects to postgres and runs migrations when enabled
func (app *Application) initializeDatabase() error {
	if !app.config.Database.Enabled {
		app.logger.Info("Database disabled, audit log kept in memory")
		return nil
	}

	db, err := database.NewConnection(&app.config.Database, app.logger)
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
	if app.database != nil {
		app.operationRepo = repository.NewOperationRepository(app.database, app.logger)
	} else {
		app.operationRepo = repository.NewMemoryOperationRepository(repository.DefaultMemoryCapacity, app.logger)
	}

	app.logger.Info("Repositories initialized successfully")
	return nil
}

// initializeDriverRegistry sets up the processor driver registry
func (app *Application) initializeDriverRegistry() error {
	app.driverRegistry = driver.NewRegistry(app.logger)
	driver.RegisterDefaultDrivers(app.driverRegistry, app.logger)

	app.logger.Info("Driver registry initialized successfully",
		zap.Int("registered_models", len(app.driverRegistry.ListModels())),
	)
	return nil
}

// initializeServices creates service instances
func (app *Application) initializeServices() error {
	deviceService, err := service.NewDeviceService(
		app.driverRegistry,
		app.config.Device,
		app.eventBus,
		app.logger,
	)
	if err != nil {
		return err
	}
	app.deviceService = deviceService

	app.operationService = service.NewOperationService(
		app.operationRepo,
		deviceService.Profile().ID,
		app.eventBus,
		app.logger,
	)

	app.statusPoller = service.NewStatusPoller(
		deviceService,
		app.config.Device.PollInterval,
		app.eventBus,
		app.logger,
	)

	app.discoveryService = service.NewDiscoveryService(
		app.driverRegistry,
		app.config.Discovery,
		app.logger,
	)

	app.logger.Info("Services initialized successfully")
	return nil
}

// initializeServer sets up HTTP server and routes
func (app *Application) initializeServer() error {
	app.router = routes.NewRouter(
		app.config,
		app.logger,
		app.database,
		app.deviceService,
		app.operationService,
		app.discoveryService,
		app.statusPoller,
		app.eventBus,
	)

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      app.router.SetupRouter(),
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}

	app.logger.Info("HTTP server initialized",
		zap.String("address", app.config.GetServerAddr()),
	)

	return nil
}

// startBackgroundServices connects to the processor and starts the loops
// that keep it connected, poll its state and stream events
func (app *Application) startBackgroundServices() {
	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel

	app.goBackground(app.eventBus.Start)

	app.goBackground(func() {
		// A failed first connect is retried by the supervisor
		if err := app.deviceService.Connect(ctx); err != nil {
			app.logger.Warn("Initial connection failed, retrying in background",
				zap.Duration("retry_delay", app.config.Device.RetryDelay),
			)
		}
		app.deviceService.Supervise(ctx)
	})
	app.goBackground(func() { app.statusPoller.Run(ctx) })
	app.goBackground(func() { app.router.WebSocketHandler().Run(ctx) })
	app.goBackground(func() { app.startCleanupService(ctx) })

	app.logger.Info("Background services started")
}

func (app *Application) goBackground(fn func()) {
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		defer utils.LogPanic(app.logger)
		fn()
	}()
}

// startCleanupService removes audited commands past retention
func (app *Application) startCleanupService(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	app.logger.Info("Cleanup service started", zap.Duration("retention", auditRetention))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		cleanupCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		deleted, err := app.operationService.Cleanup(cleanupCtx, auditRetention)
		cancel()
		if err != nil {
			utils.LogError(app.logger, "Failed to cleanup old operations", err)
		} else if deleted > 0 {
			app.logger.Info("Cleaned up old operations", zap.Int64("deleted", deleted))
		}
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
	serviceLogger := utils.NewServiceLogger(app.logger, "mcintosh-service")
	serviceLogger.LogServiceStop("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}

	// Stop background loops, then the bus they publish to
	app.cancel()
	if err := app.deviceService.Close(); err != nil {
		app.logger.Error("Processor close error", zap.Error(err))
	}
	app.eventBus.Stop()
	app.wg.Wait()

	if app.database != nil {
		if err := app.database.Close(); err != nil {
			app.logger.Error("Database close error", zap.Error(err))
		} else {
			app.logger.Info("Database connection closed")
		}
	}

	app.logger.Info("Application shutdown completed")

	if err := utils.CloseLogger(app.logger); err != nil {
		fmt.Printf("Logger close error: %v\n", err)
	}
}

// Start serves HTTP and runs the background services until a shutdown signal
func (app *Application) Start() error {
	go func() {
		app.logger.Info("Starting HTTP server",
			zap.String("address", app.server.Addr),
		)

		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	app.startBackgroundServices()

	app.waitForShutdown()

	return nil
}
