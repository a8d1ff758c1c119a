// Package cli holds the start-up steps shared by cmd/carteira and
// cmd/carteira-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"carteira/internal/backend"
	"carteira/internal/config"
	"carteira/internal/log"
)

// Bootstrap loads .env (when present) and the configuration, builds the
// process logger and exits if the configuration is invalid.
func Bootstrap(component string) (*config.Config, *log.Logger) {
	// Missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: component,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// OpenBackend creates the configured store. With publish false the AMQP
// publisher is skipped even when AMQP_URL is set.
func OpenBackend(logger *log.Logger, cfg *config.Config, publish bool) (backend.Config, *backend.Factory, *backend.Result) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger)
	storeCfg := bcfg
	if !publish {
		storeCfg.AMQPURL = ""
	}
	res, err := factory.Create(storeCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", bcfg.Type)
		os.Exit(1)
	}
	return bcfg, factory, res
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM, logging
// which signal arrived. Calling stop releases the handler.
func SignalContext(logger *log.Logger) (ctx context.Context, stop context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String(), log.FieldOperation, log.OpShutdown)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
