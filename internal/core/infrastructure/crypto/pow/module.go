package pow

import (
	"context"

	minerconfig "github.com/weisyn/metaminer/internal/config/miner"
	"github.com/weisyn/metaminer/pkg/interfaces/consensus"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/log"
	"go.uber.org/fx"
)

// ModuleParams 定义 pow 模块的依赖参数
type ModuleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Logger    log.Logger
	Options   *minerconfig.MinerOptions
}

// ModuleOutput 定义 pow 模块的输出
type ModuleOutput struct {
	fx.Out

	Finder   *NonceFinder
	Searcher consensus.NonceSearcher
}

// Module 返回 pow 模块
func Module() fx.Option {
	return fx.Module("pow",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 创建 NonceFinder，并在停止时关闭工作者池
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	finder, err := NewNonceFinder(Config{
		Workers:          params.Options.Workers,
		BatchSize:        params.Options.BatchSize,
		InitialNonceBits: params.Options.InitialNonceBits,
	}, params.Logger.With("module", "pow"))
	if err != nil {
		return ModuleOutput{}, err
	}

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return finder.Close()
		},
	})

	return ModuleOutput{Finder: finder, Searcher: finder}, nil
}
