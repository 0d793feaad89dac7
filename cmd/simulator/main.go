// cmd/simulator/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mcintosh-service/internal/config"
	"mcintosh-service/internal/simulator"
	"mcintosh-service/internal/utils"
)

// Runs an emulated processor on the IP control port for local development
func main() {
	addr := flag.String("addr", "127.0.0.1:84", "listen address")
	name := flag.String("name", "MX160", "name reported to !DEVICE?")
	delay := flag.Duration("delay", 0, "delay before each reply")
	quoted := flag.Bool("quoted-names", false, "append quoted names to source replies")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger, err := utils.NewLogger(&config.LoggingConfig{
		Level:  *level,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer utils.CloseLogger(logger)

	sim := simulator.New(logger,
		simulator.WithModelName(*name),
		simulator.WithReplyDelay(*delay),
		simulator.WithQuotedSourceNames(*quoted),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting simulator",
		zap.String("addr", *addr),
		zap.String("name", *name),
		zap.Duration("reply_delay", *delay),
	)
	start := time.Now()
	if err := sim.Serve(ctx, *addr); err != nil {
		logger.Fatal("Simulator failed", zap.Error(err))
	}
	logger.Info("Simulator stopped",
		zap.Duration("uptime", time.Since(start)),
		zap.Int("commands", len(sim.Commands())),
	)
}
