package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"carteira/internal/auth"
	"carteira/internal/cache"
	"carteira/internal/cli"
	apphttp "carteira/internal/http"
	"carteira/internal/log"
	"carteira/internal/notify"
	"carteira/internal/services"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentApp)

	bcfg, _, res := cli.OpenBackend(logger, cfg, true)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	inbox := notify.NewInbox()
	authSvc := services.NewAuthService(res.Store, res.Events, logger.WithComponent(log.ComponentAuth))
	ledger := services.NewLedgerService(res.Store, res.Store, inbox, res.Events, logger.WithComponent(log.ComponentLedger))

	caches := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	caches.Register("ledger_snapshots", ledger.Snapshots())
	caches.Register("notifications", inbox.Cache())

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:           ":" + cfg.Port,
		CookieSecure:   cfg.CookieSecure,
		SessionTTL:     cfg.SessionTTL,
		RememberTTL:    cfg.RememberTTL,
		UploadMaxBytes: cfg.UploadMaxBytes,
	}, apphttp.Deps{
		Auth:   authSvc,
		Ledger: ledger,
		Tokens: auth.NewTokenIssuer(cfg.SessionSecret),
		Store:  res.Store,
		Logger: logger,
		Caches: caches,
	})
	if err != nil {
		logger.Error("Failed to create HTTP server", log.FieldError, err)
		os.Exit(1)
	}
	caches.StartCleanup(5 * time.Minute)
	defer caches.Stop()

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting carteira server",
			"port", cfg.Port, "backend", bcfg.Type, "events", cfg.EventsEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", log.FieldError, err)
	}

	reqs, limits, suspicious := srv.Metrics()
	logger.Info("Server stopped gracefully",
		"requests", reqs.TotalRequests,
		"server_errors", reqs.ServerErrors,
		"rate_limit_hits", limits.TotalHits,
		"suspicious_requests", suspicious)
}
