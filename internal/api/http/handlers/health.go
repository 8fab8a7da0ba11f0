package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weisyn/metaminer/internal/api/http/types"
	"github.com/weisyn/metaminer/pkg/interfaces/consensus"
	minertypes "github.com/weisyn/metaminer/pkg/types"
)

// HealthHandler 健康检查端点处理器
//
// 矿工处于 error 状态时报告 degraded，HTTP 状态码仍为 200（进程存活）。
type HealthHandler struct {
	minerService consensus.MinerService
	startTime    time.Time
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(minerService consensus.MinerService) *HealthHandler {
	return &HealthHandler{
		minerService: minerService,
		startTime:    time.Now(),
	}
}

// GetHealth 健康报告
func (h *HealthHandler) GetHealth(c *gin.Context) {
	resp := &types.HealthResponse{
		Status:    "ok",
		Uptime:    time.Since(h.startTime).Truncate(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if status, err := h.minerService.GetMiningStatus(c.Request.Context()); err == nil {
		resp.MinerState = status.State
		if status.State == minertypes.MinerStateError.String() {
			resp.Status = "degraded"
		}
	} else {
		resp.Status = "degraded"
	}
	c.JSON(http.StatusOK, resp)
}
