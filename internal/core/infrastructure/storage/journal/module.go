package journal

import (
	"context"

	"go.uber.org/fx"

	journalconfig "github.com/weisyn/metaminer/internal/config/journal"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/storage"
)

// ModuleParams 日志存储模块依赖
type ModuleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Logger    log.Logger
	Options   *journalconfig.JournalOptions
}

// Module 返回 journal 存储模块
func Module() fx.Option {
	return fx.Module("journal",
		fx.Provide(ProvideJournal),
	)
}

// ProvideJournal 创建日志存储并在停止时关闭
func ProvideJournal(p ModuleParams) (storage.Journal, error) {
	logger := p.Logger.With("module", "journal")
	j, err := New(p.Options, logger)
	if err != nil {
		return nil, err
	}
	logger.Infof("journal 后端: %s", p.Options.Backend)
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return j.Close()
		},
	})
	return j, nil
}
