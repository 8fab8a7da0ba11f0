// Package controller 实现矿工控制器服务
//
// 🎯 **控制器服务模块**
//
// 实现 consensus.MinerService，是挖矿的统一入口：
//   - StartMining / StartMiningOnce 启动挖矿循环
//   - StopMining 请求停止并等待循环退出
//   - GetMiningStatus 汇总状态与搜索统计
//
// 挖矿循环把每一轮委托给编排器；轮次之间、出错之后固定等待 retry_delay。
// WorkerFault 在下一轮前重建工作者池。
package controller

import (
	"context"
	"sync"
	"sync/atomic"

	minerconfig "github.com/weisyn/metaminer/internal/config/miner"
	"github.com/weisyn/metaminer/pkg/interfaces/consensus"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/metaminer/pkg/types"
)

// stateMachine 控制器需要的状态管理能力
type stateMachine interface {
	consensus.MinerStateManager
	CompareAndSetMinerState(expected, newState types.MinerState) bool
}

// MinerControllerService 矿工控制器服务实现
type MinerControllerService struct {
	logger   log.Logger
	eventBus event.EventBus // 可选

	orchestratorService consensus.MiningOrchestrator
	stateManagerService stateMachine
	searcher            consensus.NonceSearcher
	minerConfig         *minerconfig.MinerOptions

	isRunning atomic.Bool

	// 统计
	roundsCompleted atomic.Uint64
	staleRounds     atomic.Uint64
	lastNonce       atomic.Uint64
	lastFoundAt     atomic.Int64 // UnixNano，0 表示尚未找到

	mu               sync.Mutex
	miningLoopCancel context.CancelFunc
	loopDone         chan struct{}
}

// NewMinerControllerService 创建控制器
func NewMinerControllerService(
	logger log.Logger,
	eventBus event.EventBus,
	orchestratorService consensus.MiningOrchestrator,
	stateManagerService stateMachine,
	searcher consensus.NonceSearcher,
	minerConfig *minerconfig.MinerOptions,
) *MinerControllerService {
	return &MinerControllerService{
		logger:              logger,
		eventBus:            eventBus,
		orchestratorService: orchestratorService,
		stateManagerService: stateManagerService,
		searcher:            searcher,
		minerConfig:         minerConfig,
	}
}

var _ consensus.MinerService = (*MinerControllerService)(nil)

// StartMining 启动持续挖矿
func (s *MinerControllerService) StartMining(ctx context.Context) error {
	return s.startMining(ctx, false)
}

// StartMiningOnce 挖出一个被接受的 nonce 后自动停止
func (s *MinerControllerService) StartMiningOnce(ctx context.Context) error {
	return s.startMining(ctx, true)
}

// StopMining 停止挖矿
func (s *MinerControllerService) StopMining(ctx context.Context) error {
	return s.stopMining(ctx)
}

// GetMiningStatus 获取状态快照
func (s *MinerControllerService) GetMiningStatus(ctx context.Context) (*types.MinerStatus, error) {
	return s.getMiningStatus(ctx)
}

// Done 返回当前挖矿循环的退出信号；未运行时返回 nil
func (s *MinerControllerService) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loopDone
}
