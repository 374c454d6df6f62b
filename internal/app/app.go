package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/paramstock/alerter/internal/config"
	"github.com/paramstock/alerter/internal/delivery/httpapi"
	"github.com/paramstock/alerter/internal/domain"
	"github.com/paramstock/alerter/internal/infra/db"
	"github.com/paramstock/alerter/internal/infra/log"
	"github.com/paramstock/alerter/internal/infra/memstore"
	"github.com/paramstock/alerter/internal/infra/metrics"
	"github.com/paramstock/alerter/internal/infra/quotes"
	"github.com/paramstock/alerter/internal/infra/telegram"
	"github.com/paramstock/alerter/internal/infra/twilio"
	"github.com/paramstock/alerter/internal/usecase"
	"go.uber.org/zap"
)

type App struct {
	checker   *usecase.PriceChecker
	server    *httpapi.Server
	stats     *metrics.Client
	logger    *zap.Logger
	cleanupFn func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := log.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	stats := metrics.NewClient(cfg.StatsdAddr, cfg.StatsdPrefix, logger)

	var store domain.AlertStore
	cleanup := func() error { return nil }
	switch cfg.StoreDriver {
	case config.StorePostgres:
		dbConn, err := db.Open(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		store = db.NewAlertRepository(dbConn)
		cleanup = func() error {
			sqlDB, err := dbConn.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
	case config.StoreMemory:
		store = memstore.New()
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	quoteSource := quotes.NewYahooClient(cfg.QuoteBaseURL, cfg.QuoteTimeout, logger)

	var notifier usecase.Notifier
	switch cfg.NotifierDriver {
	case config.NotifierTwilio:
		notifier = twilio.NewNotifier(
			cfg.TwilioBaseURL,
			cfg.TwilioAccountSID,
			cfg.TwilioAuthToken,
			cfg.TwilioFromNumber,
			cfg.TwilioTimeout,
			logger,
		)
	case config.NotifierTelegram:
		notifier, err = telegram.NewNotifier(cfg.TelegramBotToken, logger)
		if err != nil {
			return nil, fmt.Errorf("init telegram notifier: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown notifier driver %q", cfg.NotifierDriver)
	}

	alertUC := usecase.NewAlertUsecase(store)
	checker := usecase.NewPriceChecker(store, quoteSource, notifier, stats, cfg.CheckInterval, logger)
	handler := httpapi.NewHandler(alertUC, logger)
	server := httpapi.NewServer(cfg.HTTPPort, handler.InitRoutes())

	return &App{
		checker:   checker,
		server:    server,
		stats:     stats,
		logger:    logger,
		cleanupFn: cleanup,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("alerter service starting")

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.checker.Run(ctx)
	}()

	serverErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	a.logger.Info("alerter service started")

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("failed to shutdown http server", zap.Error(err))
	}

	wg.Wait()
	return nil
}

func (a *App) Shutdown() {
	a.logger.Info("alerter service shutting down")
	a.stats.Close()
	if a.cleanupFn != nil {
		if err := a.cleanupFn(); err != nil {
			a.logger.Warn("failed to close database", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
