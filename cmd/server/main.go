package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/platform-allocator/internal/application"
	"github.com/eugenenazirov/platform-allocator/internal/config"
	"github.com/eugenenazirov/platform-allocator/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	overrides, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "platform-allocator: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app, cfg.ShutdownGracePeriod, logger)
}

// parseFlags maps command-line flags onto config overrides. Only flags the
// user actually passed are set, so every supplied value reaches validation.
func parseFlags(args []string) (*config.CLIOverrides, error) {
	var limitSet, rpsSet, burstSet bool

	kingpinApp := kingpin.New("platform-allocator", "Platform Allocator - minimal transport platforms for paired items under a weight limit")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	defaultLimit := kingpinApp.Flag("default-limit", "Platform weight limit used when a request omits one").IsSetByUser(&limitSet).Float64()
	rateLimitRPS := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").IsSetByUser(&rpsSet).Float64()
	rateLimitBurst := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").IsSetByUser(&burstSet).Int()
	logLevel := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").String()

	if _, err := kingpinApp.Parse(args); err != nil {
		return nil, err
	}

	overrides := &config.CLIOverrides{ConfigFile: *configFile}
	if *port != "" {
		overrides.Port = port
	}
	if limitSet {
		overrides.DefaultLimit = defaultLimit
	}
	if rpsSet {
		overrides.RateLimitRPS = rateLimitRPS
	}
	if burstSet {
		overrides.RateLimitBurst = rateLimitBurst
	}
	if *logLevel != "" {
		overrides.LogLevel = logLevel
	}
	return overrides, nil
}

func shutdown(app *application.App, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("shutting down server", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := app.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
