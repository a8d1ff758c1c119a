package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"carteira/internal/backend"
	"carteira/internal/cli"
	"carteira/internal/log"
	"carteira/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentWorker)
	logger.Info("Starting carteira-worker")

	// The worker only consumes, so the store is opened without a publisher.
	bcfg, factory, res := cli.OpenBackend(logger, cfg, false)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()
	if bcfg.Type == backend.MemoryBackend {
		logger.Warn("Memory backend does not share data with the server; statements will be empty")
	}

	consumer, err := factory.Consumer(bcfg)
	if err != nil {
		logger.Error("Failed to connect to AMQP", log.FieldError, err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	mirror, err := factory.Mirror(initCtx, bcfg)
	cancel()
	if err != nil {
		logger.Error("Failed to initialize transaction mirror", log.FieldError, err)
		os.Exit(1)
	}
	mailer := factory.Mailer(bcfg)

	handler := worker.NewEventHandler(res.Store, mailer, mirror, logger)
	job := worker.NewStatementJob(res.Store, mailer, logger)
	scheduler, err := worker.NewScheduler(cfg.StatementSchedule, job, logger)
	if err != nil {
		logger.Error("Invalid statement schedule", log.FieldError, err, "schedule", cfg.StatementSchedule)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Consuming events", "exchange", bcfg.AMQPExchange, "queue", bcfg.AMQPQueue)
		return consumer.Consume(gctx, handler.Handle)
	})
	g.Go(func() error {
		return scheduler.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully", log.FieldOperation, log.OpShutdown)
}
