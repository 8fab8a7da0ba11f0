package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	apihttp "github.com/weisyn/metaminer/internal/api/http"
	"github.com/weisyn/metaminer/internal/core/chain/memory"
	"github.com/weisyn/metaminer/internal/core/consensus/miner"
	"github.com/weisyn/metaminer/pkg/interfaces/config"
)

const (
	startTimeout = 30 * time.Second
	stopTimeout  = 60 * time.Second
)

// App 运行中的矿工进程
type App struct {
	bootstrap *Bootstrap
}

// Start 加载配置、装配并启动应用
func Start(appOptions ...Option) (*App, error) {
	bootstrap := NewBootstrap(newOptions(appOptions...))
	if err := bootstrap.CreateFxApp(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := bootstrap.StartApp(ctx); err != nil {
		return nil, err
	}
	return &App{bootstrap: bootstrap}, nil
}

// Miner 矿工管理器
func (a *App) Miner() *miner.Manager { return a.bootstrap.manager }

// Config 已解析的配置
func (a *App) Config() config.Provider { return a.bootstrap.provider }

// SimulatedChain chain.type 为 memory 时的模拟链，否则为 nil
func (a *App) SimulatedChain() *memory.SimulatedChain { return a.bootstrap.simulated }

// HTTPServer API 服务器，禁用 API 时为 nil
func (a *App) HTTPServer() *apihttp.Server { return a.bootstrap.server }

// Stop 停止应用（停止挖矿、关闭 HTTP、journal 与工作者池）
func (a *App) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return a.bootstrap.StopApp(ctx)
}

// Wait 阻塞直到收到退出信号或 done 关闭（done 可为 nil）
//
// 收到信号时返回该信号，done 关闭时返回 nil。
func (a *App) Wait(done <-chan struct{}) os.Signal {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	select {
	case sig := <-signals:
		return sig
	case <-done:
		return nil
	}
}

// String 简要描述（日志使用）
func (a *App) String() string {
	p := a.Config()
	if p == nil {
		return "metaminer"
	}
	return fmt.Sprintf("metaminer(mode=%s chain=%s journal=%s)", p.GetMiner().Mode, p.GetChain().Type, p.GetJournal().Backend)
}
