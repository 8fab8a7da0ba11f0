// Package config 提供应用配置管理功能
package config

import (
	"fmt"

	"github.com/weisyn/metaminer/internal/config/api"
	"github.com/weisyn/metaminer/internal/config/chain"
	"github.com/weisyn/metaminer/internal/config/journal"
	"github.com/weisyn/metaminer/internal/config/miner"
	"github.com/weisyn/metaminer/pkg/interfaces/config"
	"github.com/weisyn/metaminer/pkg/types"
	"go.uber.org/fx"
)

// ConfigParams 定义配置模块的依赖参数
type ConfigParams struct {
	fx.In

	// 应用配置选项
	AppOptions config.AppOptions `optional:"true"`
}

// ConfigOutput 定义配置模块的输出结构
type ConfigOutput struct {
	fx.Out

	// 配置提供者
	Provider config.Provider
}

// Module 返回配置模块
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			ProvideConfigServices,
			func(provider config.Provider) *miner.MinerOptions {
				return provider.GetMiner()
			},
			func(provider config.Provider) *chain.ChainOptions {
				return provider.GetChain()
			},
			func(provider config.Provider) *journal.JournalOptions {
				return provider.GetJournal()
			},
			func(provider config.Provider) *api.APIOptions {
				return provider.GetAPI()
			},
		),
	)
}

// ProvideConfigServices 提供配置服务
func ProvideConfigServices(params ConfigParams) (ConfigOutput, error) {
	var appConfig *types.AppConfig
	if params.AppOptions != nil {
		appConfig = params.AppOptions.GetAppConfig()
	}

	provider := NewProvider(appConfig)
	if err := provider.(*Provider).Validate(); err != nil {
		return ConfigOutput{}, fmt.Errorf("配置校验失败: %w", err)
	}

	return ConfigOutput{
		Provider: provider,
	}, nil
}
