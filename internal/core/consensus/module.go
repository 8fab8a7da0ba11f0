// Package consensus 组装矿工服务
//
// 📋 **矿工核心模块**
//
// 通过 fx 依赖注入把链预言机、nonce 搜索器、哈希服务、journal 与事件总线
// 组装为 consensus.MinerService，并管理其生命周期：
//   - OnStart: 配置 miner.auto_start 时自动开始挖矿
//   - OnStop: 停止挖矿并等待循环退出
package consensus

import (
	"context"

	"go.uber.org/fx"

	minerconfig "github.com/weisyn/metaminer/internal/config/miner"
	"github.com/weisyn/metaminer/internal/core/consensus/miner"
	"github.com/weisyn/metaminer/pkg/interfaces/chain"
	"github.com/weisyn/metaminer/pkg/interfaces/consensus"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/storage"
)

// ModuleInput 定义模块的输入依赖
//
// optional:"true" 的依赖允许为 nil，模块内做 nil 检查。
type ModuleInput struct {
	fx.In

	Lifecycle fx.Lifecycle
	Logger    log.Logger
	EventBus  event.EventBus `optional:"true"`

	Oracle   chain.Oracle
	Searcher consensus.NonceSearcher
	Hasher   crypto.HashManager
	Journal  storage.Journal `optional:"true"`
	Options  *minerconfig.MinerOptions
}

// ModuleOutput 定义模块的输出服务
type ModuleOutput struct {
	fx.Out

	MinerService consensus.MinerService
	Manager      *miner.Manager
}

// Module 创建并配置矿工核心模块
//
//	app := fx.New(
//	    consensus.Module(),
//	    // 其他模块...
//	)
func Module() fx.Option {
	return fx.Module("consensus",
		fx.Provide(ProvideMinerService),
		fx.Invoke(func(logger log.Logger) {
			logger.Info("🚀 矿工核心模块初始化完成")
		}),
	)
}

// ProvideMinerService 创建矿工管理器并注册生命周期
func ProvideMinerService(in ModuleInput) (ModuleOutput, error) {
	manager, err := miner.NewManager(miner.Dependencies{
		Logger:   in.Logger,
		EventBus: in.EventBus,
		Oracle:   in.Oracle,
		Searcher: in.Searcher,
		Hasher:   in.Hasher,
		Journal:  in.Journal,
		Options:  in.Options,
	})
	if err != nil {
		return ModuleOutput{}, err
	}

	in.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !manager.AutoStart() {
				return nil
			}
			in.Logger.Info("⛏️ 自动启动挖矿")
			return manager.StartMining(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return manager.StopMining(ctx)
		},
	})

	return ModuleOutput{MinerService: manager, Manager: manager}, nil
}
