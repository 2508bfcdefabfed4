package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"shop_admin_v1_202610/internal/model"
)

// SessionChecker 当前会话
type SessionChecker interface {
	IsAuthenticated() bool
	User() *model.AdminUser
}

// Context Keys
const (
	ContextKeyUser      = "admin_user"
	ContextKeyRequestID = "request_id"
)

// RequireSession 要求已登录
// 网关本身不校验 Token，以 AuthService 持有的会话为准
func RequireSession(checker SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := checker.User()
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Not authenticated",
			})
			c.Abort()
			return
		}

		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// GetAdminUser 从 Context 获取当前管理员
func GetAdminUser(c *gin.Context) *model.AdminUser {
	if u, exists := c.Get(ContextKeyUser); exists {
		return u.(*model.AdminUser)
	}
	return nil
}

// RequestLogger 访问日志
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", requestID),
		}
		if len(c.Errors) > 0 {
			logger.Warn("[Gateway] "+c.Errors.String(), fields...)
			return
		}
		logger.Info("[Gateway]", fields...)
	}
}
