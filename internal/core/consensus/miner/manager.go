// Package miner 提供矿工管理服务的实现
//
// 🎯 **矿工管理器**
//
// 本文件实现矿工服务管理器，作为各个业务模块的协调中心：
//   - **架构角色**：薄管理器，委托具体业务实现给专业模块
//   - **接口实现**：统一实现 consensus.MinerService 公共接口
//   - **模块协调**：组装 state_manager/、orchestrator/、controller/
package miner

import (
	"context"
	"fmt"

	minerconfig "github.com/weisyn/metaminer/internal/config/miner"
	"github.com/weisyn/metaminer/internal/core/consensus/miner/controller"
	"github.com/weisyn/metaminer/internal/core/consensus/miner/orchestrator"
	"github.com/weisyn/metaminer/internal/core/consensus/miner/state_manager"
	"github.com/weisyn/metaminer/pkg/interfaces/chain"
	"github.com/weisyn/metaminer/pkg/interfaces/consensus"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/metaminer/pkg/types"
)

// Dependencies 矿工管理器依赖
type Dependencies struct {
	Logger   log.Logger
	EventBus event.EventBus  // 可选
	Oracle   chain.Oracle
	Searcher consensus.NonceSearcher
	Hasher   crypto.HashManager
	Journal  storage.Journal // 可选
	Options  *minerconfig.MinerOptions
}

// Manager 矿工管理器
type Manager struct {
	logger  log.Logger
	options *minerconfig.MinerOptions

	// ========== 业务模块实例 ==========
	controllerService   *controller.MinerControllerService
	orchestratorService *orchestrator.MiningOrchestratorService
	stateManagerService *state_manager.MinerStateService
}

// NewManager 创建矿工管理器实例
func NewManager(deps Dependencies) (*Manager, error) {
	if deps.Oracle == nil || deps.Searcher == nil || deps.Hasher == nil || deps.Options == nil {
		return nil, fmt.Errorf("矿工依赖不完整")
	}
	logger := deps.Logger.With("module", "miner")

	// 1. 状态管理
	stateManagerService := state_manager.NewMinerStateService(logger)

	// 2. 单轮编排
	orchestratorService, err := orchestrator.NewMiningOrchestratorService(orchestrator.Dependencies{
		Logger:   logger,
		Oracle:   deps.Oracle,
		Searcher: deps.Searcher,
		Hasher:   deps.Hasher,
		Journal:  deps.Journal,
		EventBus: deps.EventBus,
		Options:  deps.Options,
	})
	if err != nil {
		return nil, fmt.Errorf("创建挖矿编排器失败: %w", err)
	}

	// 3. 控制器
	controllerService := controller.NewMinerControllerService(
		logger,
		deps.EventBus,
		orchestratorService,
		stateManagerService,
		deps.Searcher,
		deps.Options,
	)

	return &Manager{
		logger:              logger,
		options:             deps.Options,
		controllerService:   controllerService,
		orchestratorService: orchestratorService,
		stateManagerService: stateManagerService,
	}, nil
}

var _ consensus.MinerService = (*Manager)(nil)

// ==================== consensus.MinerService 接口实现（薄实现） ====================

// StartMining 启动挖矿服务
func (m *Manager) StartMining(ctx context.Context) error {
	return m.controllerService.StartMining(ctx)
}

// StartMiningOnce 挖出一个被接受的 nonce 后停止
func (m *Manager) StartMiningOnce(ctx context.Context) error {
	return m.controllerService.StartMiningOnce(ctx)
}

// StopMining 停止挖矿服务
func (m *Manager) StopMining(ctx context.Context) error {
	return m.controllerService.StopMining(ctx)
}

// GetMiningStatus 获取挖矿状态
func (m *Manager) GetMiningStatus(ctx context.Context) (*types.MinerStatus, error) {
	return m.controllerService.GetMiningStatus(ctx)
}

// Done 当前挖矿循环的退出信号，未运行时为 nil
func (m *Manager) Done() <-chan struct{} {
	return m.controllerService.Done()
}

// State 当前控制器状态
func (m *Manager) State() types.MinerState {
	return m.stateManagerService.GetMinerState()
}

// AutoStart 是否在进程启动后自动开始挖矿
func (m *Manager) AutoStart() bool {
	return m.options.AutoStart
}
