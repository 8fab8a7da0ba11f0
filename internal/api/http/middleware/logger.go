package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	infralog "github.com/weisyn/metaminer/pkg/interfaces/infrastructure/log"
)

// Logger 请求日志中间件
type Logger struct {
	logger infralog.Logger
}

// NewLogger 创建日志中间件
func NewLogger(logger infralog.Logger) *Logger {
	return &Logger{logger: logger}
}

// Middleware 返回Gin中间件
//
// 抓取类请求（/metrics、/health）只记 debug，避免刷屏。
func (m *Logger) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		zl := m.logger.GetZapLogger()
		switch {
		case status >= 500:
			zl.Error("HTTP request", fields...)
		case status >= 400:
			zl.Warn("HTTP request", fields...)
		case path == "/metrics" || path == "/health":
			zl.Debug("HTTP request", fields...)
		default:
			zl.Info("HTTP request", fields...)
		}
	}
}
