package di

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/app"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/config"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/database"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/http/handler"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/http/middleware"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/http/router"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/observability"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/repository"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/security"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(provideLogger)

var DatabaseSet = wire.NewSet(provideDB, provideErrorReporter)

var RepositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewSessionRepository,
	repository.NewMachineRepository,
	repository.NewScheduleRepository,
	repository.NewRecordRepository,
)

var SecuritySet = wire.NewSet(provideJWTManager, provideCookieManager)

var ServiceSet = wire.NewSet(
	provideSessionService,
	provideUserService,
	provideMachineService,
	provideScheduleService,
	wire.Bind(new(service.ScheduleServiceInterface), new(*service.ScheduleService)),
	provideRecordService,
	provideAttachmentStorage,
)

var HTTPSet = wire.NewSet(
	provideAuthMiddleware,
	provideRateLimiter,
	provideAuthHandler,
	handler.NewUserHandler,
	handler.NewMachineHandler,
	handler.NewScheduleHandler,
	handler.NewRecordHandler,
	handler.NewHealthHandler,
	provideRouter,
	provideServer,
)

var AppSet = wire.NewSet(provideApp)

func provideLogger(cfg *config.Config) *slog.Logger {
	logger := observability.NewLogger(cfg)
	slog.SetDefault(logger)
	return logger
}

func provideDB(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if cfg.BootstrapAdminEmail != "" {
		if err := database.PromoteBootstrapAdmin(db, logger, cfg.BootstrapAdminEmail); err != nil {
			return nil, fmt.Errorf("promote bootstrap admin: %w", err)
		}
	}
	return db, nil
}

func provideErrorReporter(cfg *config.Config, logger *slog.Logger) *database.ErrorReporter {
	return database.NewErrorReporter(logger, cfg.VerboseErrorLogging)
}

func provideJWTManager(cfg *config.Config) *security.JWTManager {
	return security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTAccessSecret)
}

func provideCookieManager(cfg *config.Config) *security.CookieManager {
	return security.NewCookieManager(cfg.CookieDomain, cfg.CookieSecure, cfg.CookieSameSite)
}

func provideSessionService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	jwtMgr *security.JWTManager,
	cfg *config.Config,
) service.SessionServiceInterface {
	return service.NewSessionService(users, sessions, jwtMgr, cfg.RefreshTokenPepper, cfg.JWTAccessTTL, cfg.SessionTTL)
}

func provideUserService(users repository.UserRepository, reporter *database.ErrorReporter) service.UserServiceInterface {
	return service.NewUserService(users, reporter)
}

func provideMachineService(machines repository.MachineRepository, reporter *database.ErrorReporter) service.MachineServiceInterface {
	return service.NewMachineService(machines, reporter)
}

func provideScheduleService(
	schedules repository.ScheduleRepository,
	machines repository.MachineRepository,
	reporter *database.ErrorReporter,
) *service.ScheduleService {
	return service.NewScheduleService(schedules, machines, reporter)
}

func provideAttachmentStorage(cfg *config.Config) (service.AttachmentStorage, error) {
	return service.NewMinIOAttachmentStorage(
		cfg.MinIOEndpoint,
		cfg.MinIOAccessKey,
		cfg.MinIOSecretKey,
		cfg.MinIOBucket,
		cfg.MinIOUseSSL,
	)
}

func provideRecordService(
	records repository.RecordRepository,
	machines repository.MachineRepository,
	schedules *service.ScheduleService,
	storage service.AttachmentStorage,
	reporter *database.ErrorReporter,
	logger *slog.Logger,
) service.RecordServiceInterface {
	return service.NewRecordService(records, machines, schedules, storage, reporter, logger)
}

func provideAuthMiddleware(jwtMgr *security.JWTManager) *middleware.Auth {
	return middleware.NewAuth(jwtMgr)
}

// provideRateLimiter returns nil when limiting is disabled; the router
// treats a nil limiter as "no limiting". With a Redis URL configured the
// counters are shared across instances, otherwise they live in-process.
func provideRateLimiter(cfg *config.Config, jwtMgr *security.JWTManager) *middleware.RateLimiter {
	if !cfg.RateLimitingEnabled {
		return nil
	}
	bypass := middleware.NewRequestBypassEvaluator(middleware.RequestBypassConfig{
		EnableInternalProbeBypass: true,
	}, jwtMgr)

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err == nil {
			client := redis.NewClient(opts)
			limiter := middleware.NewRedisFixedWindowLimiter(client, "rl")
			return middleware.NewDistributedRateLimiter(
				limiter, cfg.RateLimitMax, cfg.RateLimitWindow, middleware.FailOpen, "redis",
			).WithBypass(bypass)
		}
		slog.Warn("invalid REDIS_URL, falling back to local rate limiter", "error", err.Error())
	}
	return middleware.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow).WithBypass(bypass)
}

func provideAuthHandler(
	sessionSvc service.SessionServiceInterface,
	cookies *security.CookieManager,
	cfg *config.Config,
) *handler.AuthHandler {
	return handler.NewAuthHandler(sessionSvc, cookies, cfg.JWTAccessTTL, cfg.SessionTTL)
}

func provideRouter(
	cfg *config.Config,
	logger *slog.Logger,
	auth *middleware.Auth,
	limiter *middleware.RateLimiter,
	health *handler.HealthHandler,
	authH *handler.AuthHandler,
	machines *handler.MachineHandler,
	schedules *handler.ScheduleHandler,
	records *handler.RecordHandler,
	users *handler.UserHandler,
) http.Handler {
	return router.New(router.Deps{
		Config:    cfg,
		Logger:    logger,
		Auth:      auth,
		Limiter:   limiter,
		Health:    health,
		AuthH:     authH,
		Machines:  machines,
		Schedules: schedules,
		Records:   records,
		Users:     users,
	})
}

func provideServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func provideApp(cfg *config.Config, logger *slog.Logger, server *http.Server) *app.App {
	return app.New(cfg, logger, server)
}

// MigrationRunner opens the database and applies the schema, for the
// `migrate` subcommand.
type MigrationRunner struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewMigrationRunner(cfg *config.Config, logger *slog.Logger) *MigrationRunner {
	return &MigrationRunner{cfg: cfg, logger: logger}
}

func (m *MigrationRunner) Run() error {
	db, err := database.Open(m.cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	m.logger.Info("migrations applied")
	return nil
}
