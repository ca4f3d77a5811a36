// Package server initializes and runs the auth service: it wires the
// repositories, rate limiter, token service, and HTTP transport together,
// and handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/iammonth1997/tdlao-hr-web/internal/logging"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/auth"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/config"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/httpapi"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/ratelimit"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/repositories/repomanager"
	"github.com/iammonth1997/tdlao-hr-web/internal/server/services"
)

// counterPurgeInterval paces the background sweep of expired rate-limit
// buckets. Stale rows are harmless, this is housekeeping only.
const counterPurgeInterval = 10 * time.Minute

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	repos  repomanager.RepositoryManager
	api    *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	rm, err := repomanager.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	limiter := ratelimit.NewLimiter(rm.Counters(), logger)
	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.SessionTTL)
	svc := services.NewAuthService(rm, limiter, tokens, cfg, logger)
	api := httpapi.NewServer(svc, rm.Conn(), cfg, logger)

	return &App{config: cfg, logger: logger, repos: rm, api: api}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.api.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "listening", "addr", app.config.EndpointAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server error", "error", err)
		cancelFunc()
	}
}

func (app *App) startCounterPurger(ctx context.Context) {
	ticker := time.NewTicker(counterPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := app.repos.Counters().Purge(ctx)
			if err != nil {
				app.logger.Warn(ctx, "counter purge failed", "error", err)
			} else if purged > 0 {
				app.logger.Info(ctx, "purged expired rate counters", "rows", purged)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting auth service")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startCounterPurger(ctx)
	}()

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
