package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aicu_backend/internal/config"
	"aicu_backend/internal/controller"
	"aicu_backend/internal/repository"
	"aicu_backend/internal/service"
	"aicu_backend/internal/util"
	"aicu_backend/pkg/database"
	"aicu_backend/pkg/logger"
	"aicu_backend/pkg/monitoring"
	"aicu_backend/pkg/security"
	"aicu_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	documents *repository.DocumentRepository
}

type services struct {
	statistics *service.StatisticsService
	sessions   *service.SessionService
	learning   *service.LearningService
	sync       *service.SyncService
	hub        *service.SyncHub
	simulation *service.SimulationService
	snapshot   *service.SnapshotService
}

type controllers struct {
	learning   *controller.LearningController
	statistics *controller.StatisticsController
	sync       *controller.SyncController
	simulation *controller.SimulationController
	health     *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, clock util.Clock) *repositories {
	return &repositories{
		documents: repository.NewDocumentRepository(db, clock),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client, clock util.Clock) (*services, error) {
	s := &services{}

	s.statistics = service.NewStatisticsService()
	s.sessions = service.NewSessionService(clock)
	s.learning = service.NewLearningService(repos.documents, s.statistics, s.sessions, clock)

	quiet := time.Duration(cfg.Sync.QuietSeconds) * time.Second
	s.sync = service.NewSyncService(s.learning, clock, rdb, cfg.Sync.Channel, quiet)
	s.learning.SetBroadcaster(s.sync)

	s.hub = service.NewSyncHub()
	s.hub.Attach(s.sync)
	go s.hub.Run()

	s.simulation = service.NewSimulationService(s.learning, s.sessions, s.sync)

	provider, err := service.NewStorageProvider(cfg)
	if err != nil {
		return nil, err
	}
	s.snapshot = service.NewSnapshotService(s.learning, provider, clock)

	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		learning:   controller.NewLearningController(s.learning),
		statistics: controller.NewStatisticsController(s.learning, s.snapshot),
		sync:       controller.NewSyncController(s.sync, s.hub),
		simulation: controller.NewSimulationController(s.simulation),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	clock := util.SystemClock{}
	repos := app.initRepositories(db, clock)
	services, err := app.initServices(repos, cfg, rdb, clock)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("aicu-statistics", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers)

	services.sync.Start(time.Duration(cfg.Sync.IntervalSeconds) * time.Second)

	return app
}

// ApplyConfig hot-applies the reloadable subset of a changed config file.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.services.sync.SetQuietPeriod(time.Duration(cfg.Sync.QuietSeconds) * time.Second)
	logger.Log.Info("Config reloaded",
		zap.Int("sync_quiet_seconds", cfg.Sync.QuietSeconds))
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if a.services != nil {
		a.services.sync.Stop()
		a.services.hub.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
