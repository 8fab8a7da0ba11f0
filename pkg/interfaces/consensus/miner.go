// Package consensus 定义矿工服务接口
package consensus

import (
	"context"
	"math/big"

	"github.com/weisyn/metaminer/pkg/types"
)

// MinerService 矿工控制服务
type MinerService interface {
	// StartMining 启动持续挖矿，直到 StopMining 或进程退出
	StartMining(ctx context.Context) error
	// StartMiningOnce 挖出一个被接受的 nonce 后自动停止
	StartMiningOnce(ctx context.Context) error
	// StopMining 停止挖矿并等待循环退出
	StopMining(ctx context.Context) error
	// GetMiningStatus 获取状态快照
	GetMiningStatus(ctx context.Context) (*types.MinerStatus, error)
}

// MiningOrchestrator 单轮挖矿编排
type MiningOrchestrator interface {
	// ExecuteMiningRound 执行一轮：抓取 → 搜索 → 提交（被拒时续搜）
	ExecuteMiningRound(ctx context.Context) (*types.RoundResult, error)
}

// MinerStateManager 矿工状态管理
type MinerStateManager interface {
	GetMinerState() types.MinerState
	SetMinerState(state types.MinerState) error
	ValidateStateTransition(from, to types.MinerState) bool
}

// NonceSearcher 随机 nonce 搜索器
//
// onStarted 在本次搜索重置停止标志之后调用；在其中布防的停止请求不会被重置吞掉。
type NonceSearcher interface {
	FindValidNonce(ctx context.Context, prefix []byte, target *big.Int, onStarted ...func()) (uint64, bool, error)
	ResumeFrom(ctx context.Context, prefix []byte, target *big.Int, start uint64, onStarted ...func()) (uint64, bool, error)
	RequestStop()
	RestartPool() error
	Stats() types.SearchStats
}
