// Package app wires configuration, storage and services into the object graph
// shared by the console and web binaries.
package app

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin/internal/repository"
	"github.com/noah-isme/academy-admin/internal/service"
	"github.com/noah-isme/academy-admin/pkg/cache"
	"github.com/noah-isme/academy-admin/pkg/config"
	"github.com/noah-isme/academy-admin/pkg/database"
	"github.com/noah-isme/academy-admin/pkg/export"
	"github.com/noah-isme/academy-admin/pkg/storage"
)

// App holds the long-lived dependencies of one process.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *sqlx.DB
	Store    *repository.Store
	Redis    *redis.Client
	Metrics  *service.MetricsService
	Exports  *storage.LocalStorage
	Sessions *repository.SessionRepository

	Academies   *service.AcademyService
	Students    *service.StudentService
	Modalities  *service.ModalityService
	Coaches     *service.CoachService
	Enrollments *service.EnrollmentService
	Users       *service.UserService
	Reports     *service.ReportService
	Auth        *service.SessionService
}

// New opens the database, applies migrations and builds every service.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := database.Migrate(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, session revocation disabled", zap.Error(err))
		redisClient = nil
	}

	exports, err := storage.NewLocalStorage(cfg.Exports.Dir)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("exports dir: %w", err)
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		DB:      db,
		Store:   repository.NewStore(db),
		Redis:   redisClient,
		Metrics: service.NewMetricsService(),
		Exports: exports,
	}
	a.Sessions = repository.NewSessionRepository(redisClient, logger)

	validate := validator.New()
	uow := service.NewUnitOfWork(a.Store, a.Metrics)

	a.Academies = service.NewAcademyService(uow, validate, logger)
	a.Students = service.NewStudentService(uow, validate, logger)
	a.Modalities = service.NewModalityService(uow, validate, logger)
	a.Coaches = service.NewCoachService(uow, validate, logger)
	a.Enrollments = service.NewEnrollmentService(uow, validate, logger)
	a.Users = service.NewUserService(uow, a.Sessions, a.Metrics, validate, logger)
	a.Reports = service.NewReportService(uow, export.NewRenderer(), a.Metrics, logger)
	a.Auth = service.NewSessionService(a.Users, a.Sessions, service.SessionConfig{
		Secret: cfg.Session.Secret,
		TTL:    cfg.Session.TTL,
	}, logger)

	return a, nil
}

// BootstrapAdmin creates the configured administrator when no user exists.
// A generated password is returned so the caller can show it once.
func (a *App) BootstrapAdmin(ctx context.Context) (string, error) {
	user, generated, err := a.Users.BootstrapAdmin(ctx, a.Config.Bootstrap.AdminUsername, a.Config.Bootstrap.AdminPassword)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", nil
	}
	return generated, nil
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	if err := a.Sessions.Close(); err != nil {
		a.Logger.Warn("Failed to close redis", zap.Error(err))
	}
	return a.DB.Close()
}
