package event

import (
	eventconfig "github.com/weisyn/metaminer/internal/config/event"
	"github.com/weisyn/metaminer/pkg/interfaces/config"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/event"
	"go.uber.org/fx"
)

// Module 返回事件总线模块
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(
			func(provider config.Provider) event.EventBus {
				return New(eventconfig.FromOptions(provider.GetEvent()))
			},
		),
	)
}
