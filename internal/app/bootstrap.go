// Package app 负责加载配置并按层装配 fx 应用
package app

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/weisyn/metaminer/internal/api"
	apihttp "github.com/weisyn/metaminer/internal/api/http"
	internalconfig "github.com/weisyn/metaminer/internal/config"
	"github.com/weisyn/metaminer/internal/core/chain"
	"github.com/weisyn/metaminer/internal/core/chain/memory"
	"github.com/weisyn/metaminer/internal/core/consensus"
	"github.com/weisyn/metaminer/internal/core/consensus/miner"
	"github.com/weisyn/metaminer/internal/core/infrastructure/crypto"
	"github.com/weisyn/metaminer/internal/core/infrastructure/event"
	"github.com/weisyn/metaminer/internal/core/infrastructure/log"
	"github.com/weisyn/metaminer/internal/core/infrastructure/storage/journal"
	"github.com/weisyn/metaminer/pkg/interfaces/config"
)

// Bootstrap 应用引导程序
type Bootstrap struct {
	opts  *options
	fxApp *fx.App

	// 启动后由 fx.Populate 填充
	provider  config.Provider
	manager   *miner.Manager
	simulated *memory.SimulatedChain
	server    *apihttp.Server
}

// NewBootstrap 创建引导程序
func NewBootstrap(opts *options) *Bootstrap {
	return &Bootstrap{
		opts: opts,
	}
}

// SetupInfrastructureLayer 设置基础设施层模块
func (b *Bootstrap) SetupInfrastructureLayer() []fx.Option {
	return []fx.Option{
		fx.Provide(func() config.AppOptions { return b.opts }),
		internalconfig.Module(), // 1. 配置(不依赖其他)
		log.Module(),            // 2. 日志(依赖配置)
		crypto.Module(),         // 3. 哈希服务与 nonce 搜索器
		event.Module(),          // 4. 事件总线
	}
}

// SetupCommunicationLayer 设置链预言机与存储
func (b *Bootstrap) SetupCommunicationLayer() []fx.Option {
	return []fx.Option{
		journal.Module(),
		chain.Module(),
	}
}

// SetupBusinessLayer 设置矿工服务
func (b *Bootstrap) SetupBusinessLayer() []fx.Option {
	return []fx.Option{
		consensus.Module(),
	}
}

// SetupApplicationLayer 设置应用层模块
func (b *Bootstrap) SetupApplicationLayer() []fx.Option {
	var modules []fx.Option
	if b.opts.enableAPI {
		modules = append(modules, api.Module(), fx.Populate(&b.server))
	}
	return modules
}

// CreateFxApp 创建并配置fx应用
func (b *Bootstrap) CreateFxApp() error {
	if err := b.opts.resolve(); err != nil {
		return err
	}

	var modules []fx.Option
	modules = append(modules, b.SetupInfrastructureLayer()...)
	modules = append(modules, b.SetupCommunicationLayer()...)
	modules = append(modules, b.SetupBusinessLayer()...)
	modules = append(modules, b.SetupApplicationLayer()...)
	modules = append(modules, b.opts.extra...)

	b.fxApp = fx.New(
		fx.Options(modules...),
		fx.Populate(&b.provider, &b.manager, &b.simulated),
		// 禁用fx内部日志
		fx.NopLogger,
	)
	if err := b.fxApp.Err(); err != nil {
		return fmt.Errorf("装配应用失败: %w", err)
	}
	return nil
}

// StartApp 启动应用程序
func (b *Bootstrap) StartApp(ctx context.Context) error {
	if err := b.fxApp.Start(ctx); err != nil {
		return fmt.Errorf("启动应用失败: %w", err)
	}
	return nil
}

// StopApp 停止应用程序
func (b *Bootstrap) StopApp(ctx context.Context) error {
	if err := b.fxApp.Stop(ctx); err != nil {
		return fmt.Errorf("停止应用失败: %w", err)
	}
	return nil
}
