package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/config"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/controller"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/repository"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/service"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/pkg/configwatcher"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/pkg/logger"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/pkg/monitoring"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/pkg/security"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/pkg/tracing"

	"github.com/gin-gonic/gin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

type App struct {
	Config *config.Config
	Router *gin.Engine

	repos    *repositories
	services *services
	tracer   *sdktrace.TracerProvider

	// ctx bounds background goroutines: the bank watcher and limiter janitor.
	ctx    context.Context
	cancel context.CancelFunc
}

type repositories struct {
	results *repository.ResultStore
	bank    *repository.QuestionBankFile
}

type services struct {
	auth    *service.AuthService
	archive *service.ArchiveService
	bank    *service.QuestionBankService
	quiz    *service.QuizService
	stats   *service.StatsService
}

type controllers struct {
	quiz   *controller.QuizController
	admin  *controller.AdminController
	bank   *controller.QuestionBankController
	health *controller.HealthController
}

func (a *App) initRepositories(cfg *config.Config) (*repositories, error) {
	results := repository.NewResultStore(cfg.Store.ResultsFile, repository.NewSchema(cfg.Store.AnswerColumns))
	if err := results.EnsureInitialized(); err != nil {
		return nil, fmt.Errorf("results store %s: %w", cfg.Store.ResultsFile, err)
	}

	return &repositories{
		results: results,
		bank:    repository.NewQuestionBankFile(cfg.Quiz.BankFile),
	}, nil
}

func (a *App) initServices(r *repositories, cfg *config.Config) (*services, error) {
	archive, err := service.NewArchiveService(&cfg.Archive)
	if err != nil {
		return nil, err
	}

	// The header of the results file bounds the size of every bank.
	bank := service.NewQuestionBankService(r.bank, r.results.Schema().AnswerColumns)
	if err := bank.Load(); err != nil {
		return nil, err
	}

	return &services{
		auth:    service.NewAuthService(cfg),
		archive: archive,
		bank:    bank,
		quiz:    service.NewQuizService(r.results, bank, archive, cfg.Quiz.AllowedDomains),
		stats:   service.NewStatsService(r.results, bank),
	}, nil
}

func (a *App) initControllers(s *services) *controllers {
	logoPath := ""
	if a.Config.Quiz.Logo != "" {
		logoPath = filepath.Join(a.Config.Server.AssetsDir, a.Config.Quiz.Logo)
	}

	return &controllers{
		quiz:   controller.NewQuizController(s.quiz, s.bank),
		admin:  controller.NewAdminController(s.auth, s.quiz, s.stats, logoPath),
		bank:   controller.NewQuestionBankController(s.bank),
		health: controller.NewHealthController(a.repos.results),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())
	router.Use(logger.GinMiddleware())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(cfg *config.Config) {
	if !cfg.Quiz.WatchBankFile {
		return
	}
	err := configwatcher.WatchFile(a.ctx, cfg.Quiz.BankFile, configwatcher.DefaultDebounce, func() error {
		_, err := a.services.bank.Reload()
		return err
	})
	if err != nil {
		logger.Log.Warn("Question bank file will not be watched", zap.String("path", cfg.Quiz.BankFile), zap.Error(err))
	}
}

// NewApp builds the whole service from cfg. Startup fails when the results
// store cannot be initialized or the question bank is invalid.
func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}

	repos, err := app.initRepositories(cfg)
	if err != nil {
		cancel()
		return nil, err
	}
	app.repos = repos

	services, err := app.initServices(repos, cfg)
	if err != nil {
		cancel()
		return nil, err
	}
	app.services = services
	controllers := app.initControllers(services)

	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing, continuing without it", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	router := gin.New()
	app.Router = router
	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	app.startBackgroundTasks(cfg)

	logger.Log.Info("Application initialized",
		zap.String("results_file", cfg.Store.ResultsFile),
		zap.Int("answer_columns", repos.results.Schema().AnswerColumns),
		zap.Int("bank_version", services.bank.Current().Version),
		zap.Strings("allowed_domains", cfg.Quiz.AllowedDomains))
	return app, nil
}

// Close stops background goroutines and flushes traces and logs.
func (a *App) Close() {
	a.cancel()
	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	_ = logger.Log.Sync()
}

func (a *App) Run() error {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		a.Close()
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(ctx)
	a.Close()
	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Log.Info("Server exiting")
	return nil
}
