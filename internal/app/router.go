package app

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/config"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/middleware"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/util"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/pkg/monitoring"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/pkg/security"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	limiter := security.NewIPLimiter(a.ctx, cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)

	// 1. public
	a.registerPublicRoutes(router, c, limiter)

	// 2. admin
	a.registerAdminRoutes(router, c, cfg)

	// 3. quiz UI
	a.registerStaticRoutes(router, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, limiter *security.IPLimiter) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/submit-quiz", limiter.Middleware(), c.quiz.SubmitQuiz)
		public.GET("/questions", c.quiz.GetQuestionBank)
		public.GET("/departments", c.quiz.ListDepartments)
		public.POST("/admin/login", limiter.Middleware(), c.admin.Login)
		public.GET("/admin/logo", c.admin.Logo)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg.Admin, cfg.JWT), middleware.RequireAdmin(cfg.Admin))
	{
		admin.GET("/stats", c.admin.GetStats)
		admin.GET("/export", c.admin.ExportRaw)
		admin.POST("/reset", c.admin.ResetStore)

		admin.POST("/questions/:quizType", c.bank.AddQuestion)
		admin.DELETE("/questions/:quizType/:index", c.bank.RemoveQuestion)
		admin.POST("/departments", c.bank.AddDepartment)
		admin.DELETE("/departments/:name", c.bank.RemoveDepartment)
	}
}

// registerStaticRoutes serves the quiz front end for every path that is not an
// API route.
func (a *App) registerStaticRoutes(router *gin.Engine, cfg *config.Config) {
	var files http.Handler
	if info, err := os.Stat(cfg.Server.PublicDir); err == nil && info.IsDir() {
		files = http.FileServer(http.Dir(cfg.Server.PublicDir))
	}

	router.NoRoute(func(c *gin.Context) {
		if files == nil || strings.HasPrefix(c.Request.URL.Path, "/api/") || c.Request.Method != http.MethodGet {
			util.NotFound(c)
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	})
}
