package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"birthday-inbox/internal/api"
	"birthday-inbox/internal/auth"
	"birthday-inbox/internal/certs"
	"birthday-inbox/internal/config"
	"birthday-inbox/internal/database"
	"birthday-inbox/internal/logging"
	"birthday-inbox/internal/messaging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("initializing database", zap.String("path", cfg.DBPath))
	db, err := database.Open(database.Config{Path: cfg.DBPath, BusyTimeout: cfg.DBBusyTimeout})
	if err != nil {
		return err
	}
	defer db.Close()

	if count, err := database.NewUserRepo(db).Count(context.Background()); err == nil {
		logger.Info("database ready", zap.Int("users", count))
	}

	authSvc := auth.NewService(db, logger, cfg.SessionTimeout)
	if purged, err := authSvc.PurgeExpiredSessions(context.Background()); err != nil {
		logger.Warn("failed to purge expired sessions", zap.Error(err))
	} else if purged > 0 {
		logger.Info("purged expired sessions", zap.Int64("count", purged))
	}

	deps := api.Deps{
		DB:           db,
		Auth:         authSvc,
		Messaging:    messaging.NewService(db, logger),
		Limiter:      auth.NewRateLimiter(cfg.LoginMaxAttempts, cfg.LoginWindow, cfg.LoginBlock),
		Logger:       logger,
		CookieSecure: cfg.CookieSecure,
		TrustedProxy: cfg.TrustedProxy,
	}
	if cfg.Debug {
		logger.Warn("debug mode enabled, GET /db exposes the database contents")
		deps.Inspector = database.NewInspector(db, cfg.DBPath)
	}

	e := api.NewServer(deps)

	errCh := make(chan error, 1)
	go func() {
		addr := cfg.Addr()
		if cfg.TLSEnabled {
			certPath, keyPath, err := certs.EnsureCertificates(cfg.TLSCertDir)
			if err != nil {
				errCh <- err
				return
			}
			logger.Info("starting HTTPS server", zap.String("addr", addr))
			errCh <- e.StartTLS(addr, certPath, keyPath)
			return
		}
		logger.Info("starting HTTP server", zap.String("addr", addr))
		errCh <- e.Start(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}
