// Package middleware 提供 HTTP API 的 gin 中间件
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderRequestID 请求追踪头
	HeaderRequestID = "X-Request-ID"

	requestIDKey       = "request_id"
	maxRequestIDLength = 64
)

// RequestID 为每个请求注入追踪ID
//
// 沿用客户端传入的 X-Request-ID；缺失或过长时生成新的 UUID。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}

		c.Set(requestIDKey, requestID)
		c.Header(HeaderRequestID, requestID)

		c.Next()
	}
}

// GetRequestID 从上下文获取请求ID
func GetRequestID(c *gin.Context) string {
	if v, ok := c.Get(requestIDKey); ok {
		if s, ok2 := v.(string); ok2 {
			return s
		}
	}
	return ""
}
