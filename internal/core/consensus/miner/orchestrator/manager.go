// Package orchestrator 实现单轮挖矿编排
//
// 🎯 **一轮的流程**
//
//	抓取出块状态 → 构造哈希前缀 → 并行搜索 nonce → 提交
//	  ├─ 接受：记录日志与 journal，结束本轮
//	  ├─ 拒绝：nonce+1，重新抓取状态并重建前缀，从该点续搜
//	  └─ 搜索被过期检测中断：本轮以 stale 结束，由控制器重新开始
package orchestrator

import (
	"context"
	"math/big"
	"sync"

	minerconfig "github.com/weisyn/metaminer/internal/config/miner"
	"github.com/weisyn/metaminer/internal/core/consensus/miner/staleness"
	"github.com/weisyn/metaminer/pkg/interfaces/chain"
	"github.com/weisyn/metaminer/pkg/interfaces/consensus"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/metaminer/pkg/types"
)

// MiningOrchestratorService 挖矿编排服务
type MiningOrchestratorService struct {
	logger   log.Logger
	oracle   chain.Oracle
	searcher consensus.NonceSearcher
	monitor  *staleness.Monitor
	hasher   crypto.HashManager
	journal  storage.Journal // 可选
	eventBus event.EventBus  // 可选
	options  *minerconfig.MinerOptions

	meta         []byte
	fixedPayload []byte

	mu         sync.Mutex
	lastTarget *big.Int
}

// Dependencies 编排器依赖
type Dependencies struct {
	Logger   log.Logger
	Oracle   chain.Oracle
	Searcher consensus.NonceSearcher
	Hasher   crypto.HashManager
	Journal  storage.Journal
	EventBus event.EventBus
	Options  *minerconfig.MinerOptions
}

// NewMiningOrchestratorService 创建编排服务
func NewMiningOrchestratorService(deps Dependencies) (*MiningOrchestratorService, error) {
	meta, err := deps.Options.Meta()
	if err != nil {
		return nil, err
	}
	payload, err := deps.Options.Payload()
	if err != nil {
		return nil, err
	}
	return &MiningOrchestratorService{
		logger:       deps.Logger,
		oracle:       deps.Oracle,
		searcher:     deps.Searcher,
		monitor:      staleness.NewMonitor(deps.Oracle, deps.Searcher, deps.Options.PollInterval, deps.Logger),
		hasher:       deps.Hasher,
		journal:      deps.Journal,
		eventBus:     deps.EventBus,
		options:      deps.Options,
		meta:         meta,
		fixedPayload: payload,
	}, nil
}

var _ consensus.MiningOrchestrator = (*MiningOrchestratorService)(nil)

// ExecuteMiningRound 执行一轮挖矿
func (s *MiningOrchestratorService) ExecuteMiningRound(ctx context.Context) (*types.RoundResult, error) {
	return s.executeMiningRound(ctx)
}
