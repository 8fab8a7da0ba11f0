package http

import (
	"context"

	"go.uber.org/fx"

	apiconfig "github.com/weisyn/metaminer/internal/config/api"
	"github.com/weisyn/metaminer/pkg/interfaces/consensus"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/storage"
)

// ModuleParams HTTP 模块依赖
type ModuleParams struct {
	fx.In

	Lifecycle    fx.Lifecycle
	Options      *apiconfig.APIOptions
	Logger       log.Logger
	MinerService consensus.MinerService
	Journal      storage.Journal `optional:"true"`
	EventBus     event.EventBus  `optional:"true"`
}

// Module 返回HTTP模块
func Module() fx.Option {
	return fx.Module("http",
		fx.Provide(ProvideServer),
	)
}

// ProvideServer 创建服务器；api.enabled 为 false 时不监听
func ProvideServer(p ModuleParams) (*Server, error) {
	server, err := NewServer(Dependencies{
		Options:      p.Options,
		Logger:       p.Logger,
		MinerService: p.MinerService,
		Journal:      p.Journal,
		EventBus:     p.EventBus,
	})
	if err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if !p.Options.Enabled {
				p.Logger.Info("HTTP API 已在配置中禁用")
				return nil
			}
			return server.Start()
		},
		OnStop: func(ctx context.Context) error {
			return server.Stop(ctx)
		},
	})
	return server, nil
}
