package di

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/squadup/admin-api/internal/app"
	"github.com/squadup/admin-api/internal/config"
	"github.com/squadup/admin-api/internal/database"
	"github.com/squadup/admin-api/internal/health"
	"github.com/squadup/admin-api/internal/http/handler"
	"github.com/squadup/admin-api/internal/http/middleware"
	"github.com/squadup/admin-api/internal/http/router"
	"github.com/squadup/admin-api/internal/observability"
	"github.com/squadup/admin-api/internal/repository"
	"github.com/squadup/admin-api/internal/service"
	"github.com/squadup/admin-api/internal/session"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewProfileRepository,
	repository.NewReportRepository,
	repository.NewMatchRepository,
	repository.NewUserSessionRepository,
	repository.NewAdminUserRepository,
)

var ServiceSet = wire.NewSet(
	provideStatsCacheStore,
	provideAdminQueryService,
	wire.Bind(new(service.AdminQueryServiceInterface), new(*service.AdminQueryService)),
	session.NewResolver,
)

var HTTPSet = wire.NewSet(
	handler.NewAuthHandler,
	handler.NewAdminHandler,
	provideGlobalRateLimiter,
	provideAuthRateLimiter,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(provideApp)

type MigrationRunner struct {
	cfg *config.Config
	db  *gorm.DB
}

func NewMigrationRunner(cfg *config.Config, db *gorm.DB) *MigrationRunner {
	return &MigrationRunner{cfg: cfg, db: db}
}

func (m *MigrationRunner) Run() error {
	if err := database.Migrate(m.db); err != nil {
		return err
	}
	if _, err := database.Bootstrap(m.db, m.cfg.BootstrapAdminUserID, m.cfg.BootstrapAdminRole); err != nil {
		return err
	}
	fmt.Println("migration complete")
	return nil
}

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideOpenDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

func provideRuntimeDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	if _, err := database.Bootstrap(db, cfg.BootstrapAdminUserID, cfg.BootstrapAdminRole); err != nil {
		return nil, err
	}
	return db, nil
}

func provideRedisClient(cfg *config.Config, logger *slog.Logger) redis.UniversalClient {
	if !cfg.RedisEnabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	observability.InstrumentRedisClient(client, logger)
	return client
}

func provideStatsCacheStore(cfg *config.Config, redisClient redis.UniversalClient) service.StatsCacheStore {
	if cfg.RedisEnabled && redisClient != nil {
		return service.NewRedisStatsCacheStore(redisClient, cfg.RedisPrefix+":stats")
	}
	return service.NewInMemoryStatsCacheStore()
}

func provideAdminQueryService(
	cfg *config.Config,
	profiles repository.ProfileRepository,
	reports repository.ReportRepository,
	matches repository.MatchRepository,
	sessions repository.UserSessionRepository,
	cache service.StatsCacheStore,
	logger *slog.Logger,
) *service.AdminQueryService {
	return service.NewAdminQueryService(profiles, reports, matches, sessions, cache, cfg.StatsCacheTTL, logger)
}

func provideGlobalRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) router.GlobalRateLimiterFunc {
	if cfg.RedisEnabled && redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, cfg.RedisPrefix+":api")
		return middleware.NewDistributedRateLimiter(
			redisLimiter,
			cfg.APIRateLimitPerMin,
			time.Minute,
			middleware.FailOpen,
			"api",
		).Middleware()
	}
	return middleware.NewRateLimiter(cfg.APIRateLimitPerMin, time.Minute).Middleware()
}

func provideAuthRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) router.AuthRateLimiterFunc {
	if cfg.RedisEnabled && redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, cfg.RedisPrefix+":auth")
		return middleware.NewDistributedRateLimiter(
			redisLimiter,
			cfg.AuthRateLimitPerMin,
			time.Minute,
			middleware.FailClosed,
			"auth",
		).Middleware()
	}
	return middleware.NewRateLimiter(cfg.AuthRateLimitPerMin, time.Minute).Middleware()
}

func provideRouterDependencies(
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	adminHandler *handler.AdminHandler,
	resolver *session.Resolver,
	globalRateLimiter router.GlobalRateLimiterFunc,
	authRateLimiter router.AuthRateLimiterFunc,
	readiness *health.ProbeRunner,
) router.Dependencies {
	return router.Dependencies{
		Config:            cfg,
		AuthHandler:       authHandler,
		AdminHandler:      adminHandler,
		SessionResolver:   resolver,
		GlobalRateLimiter: globalRateLimiter,
		AuthRateLimiter:   authRateLimiter,
		Readiness:         readiness,
		EnableOTelHTTP:    cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient) *health.ProbeRunner {
	checkers := make([]health.Checker, 0, 3)
	if c := health.NewDBChecker(db); c != nil {
		checkers = append(checkers, c)
	}
	if cfg.RedisEnabled {
		if c := health.NewRedisChecker(redisClient); c != nil {
			checkers = append(checkers, c)
		}
	}
	if c := health.NewIdentityChecker(cfg.IdentityURL, cfg.IdentityAnonKey, cfg.IdentityTimeout); c != nil {
		checkers = append(checkers, c)
	}
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, cfg.ServerStartGracePeriod, checkers...)
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	redisClient redis.UniversalClient,
	db *gorm.DB,
) *app.App {
	return app.New(cfg, logger, server, runtime, redisClient, db)
}
