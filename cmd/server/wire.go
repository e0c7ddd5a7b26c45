//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/agutorres/lineup-server/internal/config"
	contentdomain "github.com/agutorres/lineup-server/internal/domain/content"
	engagementdomain "github.com/agutorres/lineup-server/internal/domain/engagement"
	videodomain "github.com/agutorres/lineup-server/internal/domain/video"
	"github.com/agutorres/lineup-server/internal/infrastructure/auth"
	"github.com/agutorres/lineup-server/internal/infrastructure/database"
	"github.com/agutorres/lineup-server/internal/infrastructure/logger"
	"github.com/agutorres/lineup-server/internal/infrastructure/pipeline"
	contentrepo "github.com/agutorres/lineup-server/internal/infrastructure/repository/content"
	engagementrepo "github.com/agutorres/lineup-server/internal/infrastructure/repository/engagement"
	videorepo "github.com/agutorres/lineup-server/internal/infrastructure/repository/video"
	"github.com/agutorres/lineup-server/internal/infrastructure/storage"
	"github.com/agutorres/lineup-server/internal/interfaces/httpserver"
	"github.com/agutorres/lineup-server/internal/interfaces/httpserver/handlers"
)

var videoSet = wire.NewSet(
	videorepo.NewRepository,
	wire.Bind(new(videodomain.Repository), new(*videorepo.Repository)),
	pipeline.NewClient,
	wire.Bind(new(videodomain.PipelineClient), new(*pipeline.Client)),
	provideStorage,
	videodomain.NewService,
	provideDetailService,
	providePoller,
)

var contentSet = wire.NewSet(
	contentrepo.NewRepository,
	wire.Bind(new(contentdomain.Repository), new(*contentrepo.Repository)),
	contentdomain.NewService,
)

var engagementSet = wire.NewSet(
	engagementrepo.NewRepository,
	wire.Bind(new(engagementdomain.Repository), new(*engagementrepo.Repository)),
	wire.Bind(new(engagementdomain.VideoChecker), new(*videorepo.Repository)),
	engagementdomain.NewService,
)

// BuildApplication assembles the lineup server with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		auth.NewValidator,
		newDatabaseConfig,
		newGormDB,
		videoSet,
		contentSet,
		engagementSet,
		handlers.NewProvider,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

// provideStorage creates the appropriate image storage backend based on configuration.
func provideStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (videodomain.Storage, error) {
	if cfg.IsLocalStorage() {
		return storage.NewLocalStorage(cfg, log)
	}
	return storage.NewS3Storage(ctx, cfg, log)
}

func provideDetailService(repo *videorepo.Repository, store videodomain.Storage, cfg *config.Config) *videodomain.DetailService {
	return videodomain.NewDetailService(repo, store, cfg.MaxImageBytes, cfg.RemoteFetchTimeout, cfg.S3PresignTTL)
}

func providePoller(svc *videodomain.Service, cfg *config.Config, log zerolog.Logger) *videodomain.StatusPoller {
	return videodomain.NewStatusPoller(svc, cfg.PollInterval, cfg.PollTimeout, log)
}
