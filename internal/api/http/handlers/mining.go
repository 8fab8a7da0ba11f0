// mining.go - 挖矿控制处理器
//
// 接口映射关系：
//   - POST /miner/start   -> MinerService.StartMining / StartMiningOnce (?once=true)
//   - POST /miner/stop    -> MinerService.StopMining
//   - GET  /miner/status  -> MinerService.GetMiningStatus
//   - GET  /miner/journal -> Journal.Recent
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/weisyn/metaminer/internal/api/http/types"
	"github.com/weisyn/metaminer/pkg/interfaces/consensus"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/storage"
)

const (
	defaultJournalLimit = 20
	maxJournalLimit     = 1000
)

// MiningHandlers 挖矿控制处理器
type MiningHandlers struct {
	minerService consensus.MinerService
	journal      storage.Journal // 可选
	logger       log.Logger
}

// NewMiningHandlers 创建挖矿处理器实例
func NewMiningHandlers(minerService consensus.MinerService, journal storage.Journal, logger log.Logger) *MiningHandlers {
	return &MiningHandlers{
		minerService: minerService,
		journal:      journal,
		logger:       logger,
	}
}

// RegisterRoutes 注册 /miner 路由
func (h *MiningHandlers) RegisterRoutes(r *gin.RouterGroup) {
	miner := r.Group("/miner")
	miner.GET("/status", h.GetMiningStatus)
	miner.POST("/start", h.StartMining)
	miner.POST("/stop", h.StopMining)
	miner.GET("/journal", h.GetJournal)
}

// GetMiningStatus 查询挖矿状态
func (h *MiningHandlers) GetMiningStatus(c *gin.Context) {
	status, err := h.minerService.GetMiningStatus(c.Request.Context())
	if err != nil {
		h.logger.Errorf("查询挖矿状态失败: %v", err)
		respondError(c, http.StatusInternalServerError, types.ErrInternal, "查询挖矿状态失败", err.Error())
		return
	}
	respondOK(c, http.StatusOK, status)
}

// StartMining 启动挖矿
//
// ?once=true 时挖出一个被接受的 nonce 后自动停止。
func (h *MiningHandlers) StartMining(c *gin.Context) {
	once, err := parseBoolQuery(c, "once")
	if err != nil {
		respondError(c, http.StatusBadRequest, types.ErrInvalidArgument, "once 参数非法", err.Error())
		return
	}

	if once {
		err = h.minerService.StartMiningOnce(c.Request.Context())
	} else {
		err = h.minerService.StartMining(c.Request.Context())
	}
	if err != nil {
		h.logger.Warnf("启动挖矿失败: %v", err)
		respondError(c, http.StatusConflict, types.ErrMinerConflict, "启动挖矿失败", err.Error())
		return
	}

	h.logger.Infof("⛏️ 通过 API 启动挖矿 (once=%v)", once)
	h.respondStatus(c, http.StatusAccepted)
}

// StopMining 停止挖矿
func (h *MiningHandlers) StopMining(c *gin.Context) {
	if err := h.minerService.StopMining(c.Request.Context()); err != nil {
		h.logger.Errorf("停止挖矿失败: %v", err)
		respondError(c, http.StatusInternalServerError, types.ErrMinerStop, "停止挖矿失败", err.Error())
		return
	}
	h.logger.Info("🛑 通过 API 停止挖矿")
	h.respondStatus(c, http.StatusOK)
}

// GetJournal 最近找到的 nonce，最新在前
func (h *MiningHandlers) GetJournal(c *gin.Context) {
	if h.journal == nil {
		respondError(c, http.StatusServiceUnavailable, types.ErrServiceUnavailable, "journal 未启用", nil)
		return
	}

	limit := defaultJournalLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(c, http.StatusBadRequest, types.ErrInvalidArgument, "limit 必须为正整数", raw)
			return
		}
		limit = min(n, maxJournalLimit)
	}

	entries, err := h.journal.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Errorf("读取 journal 失败: %v", err)
		respondError(c, http.StatusInternalServerError, types.ErrInternal, "读取 journal 失败", err.Error())
		return
	}
	respondOK(c, http.StatusOK, &types.JournalResponse{Entries: entries, Count: len(entries)})
}

func (h *MiningHandlers) respondStatus(c *gin.Context, code int) {
	status, err := h.minerService.GetMiningStatus(c.Request.Context())
	if err != nil {
		respondOK(c, code, nil)
		return
	}
	respondOK(c, code, status)
}

func parseBoolQuery(c *gin.Context, key string) (bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}
