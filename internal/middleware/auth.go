package middleware

import (
	"net/http"
	"strings"

	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/config"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/util"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware accepts a bearer token signed with the configured secret and
// stores its claims under "user".
func AuthMiddleware(admin config.AdminConfig, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !admin.Configured() {
			util.Error(c, http.StatusInternalServerError, util.ErrAdminNotConfigured.Error())
			return
		}

		tokenString := ""
		if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}
		if tokenString == "" {
			util.Unauthorized(c)
			return
		}

		claims, err := util.ParseJWT(tokenString, jwtCfg.Secret)
		if err != nil {
			logger.Log.Debug("Rejected admin token", zap.Error(err))
			util.Forbidden(c)
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}

// RequireAdmin lets through only tokens issued to the configured admin.
func RequireAdmin(admin config.AdminConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			return
		}
		if user.Role != util.RoleAdmin || user.Username != admin.Username {
			util.Forbidden(c)
			return
		}
		c.Next()
	}
}
