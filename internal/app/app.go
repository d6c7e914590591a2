package app

import (
	"context"
	"interview_prep_backend/internal/config"
	"interview_prep_backend/internal/controller"
	"interview_prep_backend/internal/event"
	"interview_prep_backend/internal/guided"
	"interview_prep_backend/internal/repository"
	"interview_prep_backend/internal/service"
	"interview_prep_backend/pkg/configwatcher"
	"interview_prep_backend/pkg/database"
	"interview_prep_backend/pkg/logger"
	"interview_prep_backend/pkg/monitoring"
	"interview_prep_backend/pkg/security"
	"interview_prep_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	ConfigDir       string
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	events          event.Publisher
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	question *repository.QuestionRepository
	plan     *repository.PlanRepository
	progress *repository.ProgressRepository
}

type services struct {
	auth           *service.AuthService
	storage        service.ObjectStore
	loader         *service.PlanTreeLoader
	guided         *service.GuidedLearningService
	plan           *service.PlanService
	question       *service.QuestionService
	questionImport *service.QuestionImportService
}

type controllers struct {
	auth     *controller.AuthController
	guided   *controller.GuidedLearningController
	plan     *controller.PlanController
	question *controller.QuestionController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		question: repository.NewQuestionRepository(db),
		plan:     repository.NewPlanRepository(db),
		progress: repository.NewProgressRepository(db, rdb, cfg.Guided.ProgressCacheTTL),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	storage, err := service.NewObjectStore(&cfg.Storage)
	if err != nil {
		logger.Log.Fatal("Failed to initialize storage", zap.Error(err))
	}
	s.storage = storage

	s.auth = service.NewAuthService(repos.user, cfg)
	s.loader = service.NewPlanTreeLoader(repos.plan, repos.question)
	s.guided = service.NewGuidedLearningService(s.loader, repos.progress, a.events, guided.Policy{
		RequireCorrect: cfg.Guided.RequireCorrectAnswer,
	})
	s.plan = service.NewPlanService(repos.plan, repos.question, repos.progress, s.loader)
	s.question = service.NewQuestionService(repos.question)
	s.questionImport = service.NewQuestionImportService(repos.question, s.storage)
	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		guided:   controller.NewGuidedLearningController(s.guided),
		plan:     controller.NewPlanController(s.plan),
		question: controller.NewQuestionController(s.question, s.questionImport),
		health:   controller.NewHealthController(db, rdb),
	}
}

func (a *App) initEvents(cfg *config.Config) event.Publisher {
	if !cfg.Events.Enabled {
		return event.NopPublisher{}
	}
	pub, err := event.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
	if err != nil {
		// Events are best effort; the API keeps working without a broker.
		logger.Log.Error("Failed to connect to event broker, events disabled", zap.Error(err))
		return event.NopPublisher{}
	}
	return pub
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) registerReloadCallbacks(repos *repositories, s *services) {
	a.RegisterConfigCallback(func(cfg *config.Config) {
		logger.SetLevel(cfg)
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		s.guided.SetPolicy(guided.Policy{RequireCorrect: cfg.Guided.RequireCorrectAnswer})
		repos.progress.SetCacheTTL(cfg.Guided.ProgressCacheTTL)
		logger.Log.Info("Guided learning settings reloaded",
			zap.Bool("requireCorrectAnswer", cfg.Guided.RequireCorrectAnswer),
			zap.Duration("progressCacheTTL", cfg.Guided.ProgressCacheTTL),
		)
	})
}

func (a *App) reload(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

// NewApp wires the application. With cfg.MigrateOnly it stops after the
// schema migration and returns an app without a router.
func NewApp(cfg *config.Config, configDir string) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	migrate := cfg.ForceMigrate || cfg.Server.Mode != "release"
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		DB:        db,
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	app.Redis = rdb

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("interview-prep-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.events = app.initEvents(cfg)

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services, db, rdb)
	app.registerReloadCallbacks(repos, services)

	monitoring.Init()

	gin.SetMode(gin.DebugMode)
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go func() {
		if err := configwatcher.Watch(watchCtx, a.ConfigDir, a.reload); err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	a.Close(ctx)
	logger.Log.Info("Server exiting")
}

// Close releases the broker, cache and tracer connections.
func (a *App) Close(ctx context.Context) {
	if a.events != nil {
		a.events.Close()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
