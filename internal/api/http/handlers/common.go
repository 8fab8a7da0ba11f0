// Package handlers 实现HTTP API处理器
//
// 处理器只负责请求解析与响应封装，业务全部委托给矿工服务与 journal。
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weisyn/metaminer/internal/api/http/middleware"
	"github.com/weisyn/metaminer/internal/api/http/types"
)

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, types.NewSuccessResponse(data).
		WithRequestID(middleware.GetRequestID(c)).
		WithTimestamp(time.Now().UTC().Format(time.RFC3339)))
}

func respondError(c *gin.Context, status int, code, message string, details interface{}) {
	c.AbortWithStatusJSON(status, types.NewErrorResponse(code, message, details).
		WithRequestID(middleware.GetRequestID(c)).
		WithTimestamp(time.Now().UTC().Format(time.RFC3339)))
}
