package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"github.com/agutorres/lineup-server/internal/config"
	contentdomain "github.com/agutorres/lineup-server/internal/domain/content"
	engagementdomain "github.com/agutorres/lineup-server/internal/domain/engagement"
	videodomain "github.com/agutorres/lineup-server/internal/domain/video"
	"github.com/agutorres/lineup-server/internal/infrastructure/auth"
	"github.com/agutorres/lineup-server/internal/infrastructure/database"
	"github.com/agutorres/lineup-server/internal/infrastructure/logger"
	"github.com/agutorres/lineup-server/internal/infrastructure/observability"
	"github.com/agutorres/lineup-server/internal/infrastructure/pipeline"
	contentrepo "github.com/agutorres/lineup-server/internal/infrastructure/repository/content"
	engagementrepo "github.com/agutorres/lineup-server/internal/infrastructure/repository/engagement"
	videorepo "github.com/agutorres/lineup-server/internal/infrastructure/repository/video"
	"github.com/agutorres/lineup-server/internal/infrastructure/storage"
	"github.com/agutorres/lineup-server/internal/interfaces/httpserver"
	"github.com/agutorres/lineup-server/internal/interfaces/httpserver/handlers"
)

// @title Lineup Server
// @version 1.0
// @description Upload brokering, transcoding status reconciliation and content API for lineup videos
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
type Application struct {
	httpServer *httpserver.HttpServer
	poller     *videodomain.StatusPoller
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, poller *videodomain.StatusPoller, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		poller:     poller,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	defer a.poller.Shutdown()
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	imageStorage, err := newStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize storage")
	}

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth")
	}

	pipelineClient := pipeline.NewClient(cfg, log)

	videoRepository := videorepo.NewRepository(db)
	videoService := videodomain.NewService(cfg, videoRepository, pipelineClient, log)
	detailService := videodomain.NewDetailService(videoRepository, imageStorage, cfg.MaxImageBytes, cfg.RemoteFetchTimeout, cfg.S3PresignTTL)
	poller := videodomain.NewStatusPoller(videoService, cfg.PollInterval, cfg.PollTimeout, log)

	contentService := contentdomain.NewService(contentrepo.NewRepository(db))
	engagementService := engagementdomain.NewService(engagementrepo.NewRepository(db), videoRepository)

	provider := handlers.NewProvider(cfg, videoService, detailService, poller, contentService, engagementService, log)
	httpServer := httpserver.New(cfg, log, provider, authValidator, db)
	app := NewApplication(httpServer, poller, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

// newStorage selects the image storage backend from configuration.
func newStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (videodomain.Storage, error) {
	if cfg.IsLocalStorage() {
		return storage.NewLocalStorage(cfg, log)
	}
	return storage.NewS3Storage(ctx, cfg, log)
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
