package controller

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/service"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/util"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminController struct {
	AuthService  *service.AuthService
	QuizService  *service.QuizService
	StatsService *service.StatsService
	LogoPath     string
}

func NewAdminController(authService *service.AuthService, quizService *service.QuizService, statsService *service.StatsService, logoPath string) *AdminController {
	return &AdminController{
		AuthService:  authService,
		QuizService:  quizService,
		StatsService: statsService,
		LogoPath:     logoPath,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// @Summary Admin login
// @Tags admin
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Admin credentials"
// @Success 200 {object} map[string]string
// @Failure 401 {object} util.ErrorResponse
// @Router /api/admin/login [post]
func (c *AdminController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "username and password are required")
		return
	}

	token, err := c.AuthService.Login(req.Username, req.Password)
	if err != nil {
		logger.Log.Warn("Admin login failed", zap.String("client_ip", ctx.ClientIP()), zap.Error(err))
		respondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"token": token})
}

// @Summary Aggregated statistics
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.StatsPayload
// @Failure 503 {object} util.ErrorResponse
// @Router /api/admin/stats [get]
func (c *AdminController) GetStats(ctx *gin.Context) {
	stats, err := c.StatsService.GetStats(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary Raw CSV export
// @Tags admin
// @Security BearerAuth
// @Produce text/csv
// @Param quizType query string false "cyber or rgpd"
// @Router /api/admin/export [get]
func (c *AdminController) ExportRaw(ctx *gin.Context) {
	quizType := ctx.Query("quizType")
	data, err := c.QuizService.ExportRaw(ctx.Request.Context(), quizType)
	if err != nil {
		respondError(ctx, err)
		return
	}

	name := "results"
	if quizType != "" {
		name += "-" + quizType
	}
	name += "-" + time.Now().UTC().Format(util.DateFormat) + ".csv"

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	ctx.Data(http.StatusOK, util.MimeCSV+"; charset=utf-8", data)
}

// @Summary Archive and clear the results
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Router /api/admin/reset [post]
func (c *AdminController) ResetStore(ctx *gin.Context) {
	location, err := c.QuizService.ResetStore(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	if user := util.GetUserFromContext(ctx); user != nil {
		logger.Log.Warn("Results reset by admin", zap.String("admin", user.Username))
	}
	util.Success(ctx, gin.H{"success": true, "archive": location})
}

// @Summary Organisation logo
// @Tags admin
// @Produce image/png
// @Router /api/admin/logo [get]
func (c *AdminController) Logo(ctx *gin.Context) {
	if c.LogoPath == "" {
		util.NotFound(ctx)
		return
	}
	info, err := os.Stat(c.LogoPath)
	if err != nil || info.IsDir() {
		util.NotFound(ctx)
		return
	}
	ctx.File(filepath.Clean(c.LogoPath))
}
