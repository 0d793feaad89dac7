// cmd/server/migrate.go
package main

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"mcintosh-service/internal/config"
	"mcintosh-service/internal/database"
	"mcintosh-service/internal/utils"
)

// migrateCommand is one audit log schema action requested with -migrate
type migrateCommand struct {
	action  string
	version int
}

// parseMigrateCommand validates -migrate and its positional arguments
func parseMigrateCommand(action string, args []string) (*migrateCommand, error) {
	switch action {
	case "up", "down", "version":
		if len(args) != 0 {
			return nil, fmt.Errorf("migrate %s takes no arguments", action)
		}
		return &migrateCommand{action: action}, nil
	case "force":
		if len(args) != 1 {
			return nil, fmt.Errorf("migrate force needs a version")
		}
		version, err := strconv.Atoi(args[0])
		if err != nil || version < -1 {
			return nil, fmt.Errorf("invalid migration version %q", args[0])
		}
		return &migrateCommand{action: action, version: version}, nil
	default:
		return nil, fmt.Errorf("unknown migrate action %q (up, down, version, force N)", action)
	}
}

// runMigrate applies cmd to the configured database and returns
func runMigrate(configPath string, cmd *migrateCommand) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if !cfg.Database.Enabled {
		return fmt.Errorf("database is disabled, the audit log is kept in memory")
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer utils.CloseLogger(logger)

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger, &cfg.Database)
	switch cmd.action {
	case "up":
		return migrator.Up()
	case "down":
		return migrator.Down()
	case "force":
		return migrator.Force(cmd.version)
	default:
		version, dirty, err := migrator.Version()
		if err != nil {
			return err
		}
		logger.Info("Audit log schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		fmt.Printf("version %d dirty=%t\n", version, dirty)
		return nil
	}
}
