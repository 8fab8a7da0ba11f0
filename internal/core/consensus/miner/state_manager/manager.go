// Package state_manager 实现矿工状态管理器服务
//
// 🎯 **矿工状态管理器模块**
//
// 维护控制器的运行状态并校验状态转换：
//   - Idle → Active: 启动挖矿
//   - Active → Stopping: 请求停止
//   - Stopping → Idle: 停止完成
//   - 任何状态 → Error: 挖矿循环异常退出
//   - Error → Idle/Active: 恢复或直接重启
package state_manager

import (
	"sync"
	"time"

	"github.com/weisyn/metaminer/pkg/interfaces/consensus"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/metaminer/pkg/types"
)

// MinerStateService 矿工状态管理服务实现
type MinerStateService struct {
	logger log.Logger

	mu           sync.RWMutex
	currentState types.MinerState
	lastChanged  time.Time
}

// NewMinerStateService 创建矿工状态服务实例，初始状态为 Idle
func NewMinerStateService(logger log.Logger) *MinerStateService {
	service := &MinerStateService{
		logger:       logger,
		currentState: types.MinerStateIdle,
		lastChanged:  time.Now(),
	}
	logger.Debug("矿工状态管理器已初始化，初始状态：idle")
	return service
}

// LastChanged 最近一次状态变更时间
func (s *MinerStateService) LastChanged() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastChanged
}

// 编译时确保 MinerStateService 实现了 MinerStateManager 接口
var _ consensus.MinerStateManager = (*MinerStateService)(nil)
