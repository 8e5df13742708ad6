package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assetmanager/src/api"
	apicontrollers "assetmanager/src/api/controllers"
	apihandlers "assetmanager/src/api/handlers"
	"assetmanager/src/cache"
	"assetmanager/src/clients/naver"
	"assetmanager/src/clients/oauth"
	"assetmanager/src/clients/polygon"
	"assetmanager/src/config"
	"assetmanager/src/database"
	"assetmanager/src/ingestion"
	"assetmanager/src/metrics"
	"assetmanager/src/repositories"
	"assetmanager/src/services"
	"assetmanager/src/utils"
	redis_utils "assetmanager/src/utils/redis"
	"assetmanager/src/worker"
	workercontrollers "assetmanager/src/worker/controllers"
	workerhandlers "assetmanager/src/worker/handlers"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

const streamRetryInterval = 5 * time.Second

func main() {
	cfg, err := config.LoadConfig("./settings", os.Getenv("ENV"))
	if err != nil {
		logrus.WithError(err).Fatal("Error while loading config")
	}
	logger := utils.NewLogger(utils.ParseLevel(cfg.Service.LogLevel), cfg.Service.LogFile != "", cfg.Service.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errC, err := run(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Couldn't run")
	}

	if err := <-errC; err != nil {
		logger.WithError(err).Fatal("Error while running")
	}
}

type dependencies struct {
	db     *pgxpool.Pool
	caches *cache.Caches
	naver  *naver.NaverServiceClient
	close  func()
}

func setup(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*dependencies, error) {
	db, err := database.SetupDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var store cache.Store
	closeStore := func() {}
	if cfg.Databases.Redis.Host == "" {
		logger.Warn("No Redis host configured, using the in-process cache")
		store = cache.NewMemoryStore()
	} else {
		handler, err := redis_utils.NewRedisHandler(ctx, cfg)
		if err != nil {
			db.Close()
			return nil, err
		}
		store = handler
		closeStore = func() { _ = handler.Close() }
	}

	naverClient, err := naver.NewClient(cfg)
	if err != nil {
		db.Close()
		closeStore()
		return nil, fmt.Errorf("failed to create naver client: %w", err)
	}

	return &dependencies{
		db:     db,
		caches: cache.New(store, cfg),
		naver:  naverClient,
		close: func() {
			closeStore()
			db.Close()
		},
	}, nil
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (<-chan error, error) {
	deps, err := setup(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	snapshotRepo := repositories.NewPriceSnapshotRepository(deps.db)
	exchangeRateService := services.NewExchangeRateService(repositories.NewExchangeRateRepository(deps.db), deps.caches.ExchangeRates, deps.naver)

	var httpServer *http.Server
	var background func(ctx context.Context) error
	switch cfg.Service.Type {
	case config.API:
		priceService := services.NewPriceService(deps.caches.Stocks, snapshotRepo)
		assetService := services.NewAssetService(
			repositories.NewStockRepository(deps.db),
			repositories.NewHoldingRepository(deps.db),
			snapshotRepo,
			repositories.NewDividendRepository(deps.db),
			priceService,
			exchangeRateService,
			cfg.Service.ReportingCurrency,
		)
		authService := services.NewAuthService(cfg, repositories.NewUserRepository(deps.db), deps.caches.RefreshTokens, oauth.NewClient(cfg))

		controller := apicontrollers.NewController(assetService, authService)
		server := api.NewServer(apihandlers.NewHandler(controller, cfg.Service.DummyUserID, logger), cfg)
		httpServer = api.NewHTTPServer(server, cfg.Service.Port)
	case config.WORKER:
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := metrics.NewIngestion()
		if err := m.Register(registry); err != nil {
			deps.close()
			return nil, err
		}

		controller := newWorkerController(cfg, deps, snapshotRepo, exchangeRateService, m, logger)
		if err := controller.LoadSchedules(ctx, cfg); err != nil {
			deps.close()
			return nil, err
		}
		background = func(ctx context.Context) error {
			defer controller.StopSchedules()
			return controller.Start(ctx)
		}
		server := worker.NewServer(workerhandlers.NewHandler(controller, logger), registry)
		httpServer = worker.NewHTTPServer(server, cfg.Service.Port)
	default:
		deps.close()
		return nil, fmt.Errorf("unknown service type %q", cfg.Service.Type)
	}

	errC := make(chan error, 2)

	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		ctxTimeout, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer func() {
			deps.close()
			cancel()
			close(errC)
		}()

		httpServer.SetKeepAlivesEnabled(false)
		if err := httpServer.Shutdown(ctxTimeout); err != nil {
			errC <- err
		}
		logger.Info("Shutdown completed")
	}()

	if background != nil {
		go func() {
			if err := background(ctx); err != nil {
				logger.WithError(err).Error("Background ingestion stopped")
			}
		}()
	}

	go func() {
		logger.WithFields(logrus.Fields{"type": cfg.Service.Type, "port": cfg.Service.Port}).Info("Starting server")

		// "ListenAndServe always returns a non-nil error. After Shutdown or Close, the returned error is
		// ErrServerClosed."
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()

	return errC, nil
}

func newWorkerController(cfg *config.Config, deps *dependencies, snapshotRepo repositories.PriceSnapshotRepository, exchangeRateService services.ExchangeRateServiceI, m *metrics.Ingestion, logger *logrus.Logger) *workercontrollers.Controller {
	stockRepo := repositories.NewStockRepository(deps.db)
	stockMinutely := repositories.NewMinutelyRepository(deps.db, repositories.StockMinutelyTable)
	indexMinutely := repositories.NewMinutelyRepository(deps.db, repositories.MarketIndexMinutelyTable)
	opts := ingestion.OptionsFromConfig(cfg)

	stockSinks := []ingestion.Sink{
		ingestion.NewObservationCacheSink(deps.caches.Stocks),
		ingestion.NewMinutelySink(stockMinutely),
	}
	indexSinks := []ingestion.Sink{
		ingestion.NewIndexCacheSink(deps.caches.MarketIndices),
		ingestion.NewMinutelySink(indexMinutely),
	}

	pollers := []workercontrollers.Collector{
		ingestion.NewCollector(
			ingestion.NewDomesticStockSource(deps.naver, ingestion.StockUniverse(stockRepo, "KOREA", cfg.Ingestion.DomesticStockCodes)),
			stockSinks, opts, m, logger),
		ingestion.NewCollector(
			ingestion.NewWorldStockSource(deps.naver, ingestion.StaticUniverse(cfg.Ingestion.WorldStockCodes), opts.Parallelism),
			stockSinks, opts, m, logger),
		ingestion.NewCollector(ingestion.NewWorldIndexSource(deps.naver), indexSinks, opts, m, logger),
	}

	workers := map[string]workercontrollers.Worker{}
	if cfg.ExternalClients.Polygon.APIKey != "" && len(cfg.ExternalClients.Polygon.Subscriptions) > 0 {
		listener := polygon.NewListener(cfg, logger)
		consumer := ingestion.NewStreamConsumer(listener, stockSinks, time.Second, m, logger)
		workers["polygon-listener"] = func(ctx context.Context) error {
			err := listener.Run(ctx, streamRetryInterval)
			if errors.Is(err, polygon.ErrAuthFailed) {
				logger.WithError(err).Error("Streaming feed rejected the API key")
				return nil
			}
			return err
		}
		workers[ingestion.StreamSourceName] = consumer.Run
	} else {
		logger.Warn("Polygon API key or subscriptions missing, streaming feed disabled")
	}

	rollupService := services.NewRollupService(stockRepo, stockMinutely, snapshotRepo)
	return workercontrollers.NewController(pollers, workers, exchangeRateService, rollupService, logger)
}
