package app

import (
	"context"
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appconfig "equipviz/internal/config"
	"equipviz/internal/db"
	httpserver "equipviz/internal/http"
	"equipviz/internal/http/handlers"
	"equipviz/internal/http/middleware"
	"equipviz/internal/ingest"
	"equipviz/internal/metrics"
	"equipviz/internal/password"
	redisstore "equipviz/internal/redis"
	"equipviz/internal/report"
	"equipviz/internal/repository"
	"equipviz/internal/service"
)

// App wires dependencies for the equipviz server.
type App struct {
	server *httpserver.Server
	db     *sql.DB
	redis  *redis.Client
	logger *zap.Logger
}

// New builds application graph.
func New(cfg *appconfig.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	redisClient, err := redisstore.NewClient(cfg.Redis.Addr, cfg.Redis.Password)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	userRepo := repository.NewUserRepository(sqlDB)
	datasetRepo := repository.NewDatasetRepository(sqlDB)
	blacklist := redisstore.NewTokenBlacklist(redisClient)

	hasher := password.NewBcryptHasher(0)
	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())
	authSvc := service.NewAuthService(userRepo, hasher, tokenSvc, blacklist, logger)
	datasetSvc := service.NewDatasetService(datasetRepo, cfg.Retention.MaxDatasets, m, logger)
	analyticsSvc := service.NewAnalyticsService(datasetRepo, report.NewGenerator(), m, logger)

	builder := ingest.NewBuilder(ingest.Options{
		Duplicates: ingest.DuplicatePolicy(cfg.Upload.Duplicates),
	})

	deps := httpserver.RouterDeps{
		AuthHandlers:      handlers.NewAuthHandlers(authSvc, logger),
		DatasetHandlers:   handlers.NewDatasetHandlers(datasetSvc, analyticsSvc, builder, cfg.MaxUploadBytes(), m, logger),
		EquipmentHandlers: handlers.NewEquipmentHandlers(datasetSvc, logger),
		HealthHandler:     handlers.NewHealthHandler(),
		MetricsHandler:    promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Logger:            logger,
	}

	router := httpserver.NewRouter(deps, middleware.Auth(tokenSvc))
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server: server,
		db:     sqlDB,
		redis:  redisClient,
		logger: logger,
	}, nil
}

// Run starts serving HTTP traffic until context cancellation.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases acquired resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
