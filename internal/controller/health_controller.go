package controller

import (
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/repository"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/util"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	Store *repository.ResultStore
}

func NewHealthController(store *repository.ResultStore) *HealthController {
	return &HealthController{Store: store}
}

// @Summary Health check
// @Description Reports whether the results file is readable
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} util.ErrorResponse
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	if err := c.Store.Ping(); err != nil {
		ctx.Error(err)
		util.ServiceUnavailable(ctx)
		return
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"results_store": "up",
		},
	})
}
