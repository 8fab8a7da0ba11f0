package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/metaminer/internal/app"
	"github.com/weisyn/metaminer/pkg/types"
)

// runFlags run 子命令的配置覆盖
type runFlags struct {
	Workers   int
	BatchSize uint64
	Mode      string
	Chain     string
	Endpoint  string
	Journal   string
	LogLevel  string
	AutoStart bool
	NoAPI     bool
	Once      bool
}

var runOpts runFlags

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "启动矿工",
	Long: `启动矿工进程，直到收到 SIGINT/SIGTERM

示例:
  metaminer run                          # 使用配置文件
  metaminer run --chain rpc --endpoint http://127.0.0.1:8545
  metaminer run --once --no-api          # 找到并被接受一个 nonce 后退出`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMiner(cmd, runOpts)
	},
}

func init() {
	f := runCmd.Flags()
	f.IntVarP(&runOpts.Workers, "workers", "w", 0, "并行工作者数量")
	f.Uint64Var(&runOpts.BatchSize, "batch-size", 0, "每个工作者每批尝试次数")
	f.StringVar(&runOpts.Mode, "mode", "", "承诺模式: block|bus")
	f.StringVar(&runOpts.Chain, "chain", "", "链预言机类型: memory|rpc")
	f.StringVar(&runOpts.Endpoint, "endpoint", "", "JSON-RPC 地址（--chain rpc）")
	f.StringVar(&runOpts.Journal, "journal", "", "nonce 日志后端: memory|badger|redis")
	f.StringVar(&runOpts.LogLevel, "log-level", "", "日志级别")
	f.BoolVar(&runOpts.AutoStart, "auto-start", true, "启动后自动开始挖矿")
	f.BoolVar(&runOpts.NoAPI, "no-api", false, "不启动 HTTP API")
	f.BoolVar(&runOpts.Once, "once", false, "一个 nonce 被接受后退出")
}

// applyRunFlags 把显式给出的命令行参数写入配置
func applyRunFlags(cfg *types.AppConfig, opts runFlags, changed func(name string) bool) {
	if cfg.Miner == nil {
		cfg.Miner = &types.UserMinerConfig{}
	}
	if cfg.Chain == nil {
		cfg.Chain = &types.UserChainConfig{}
	}

	if changed("workers") {
		cfg.Miner.Workers = &opts.Workers
	}
	if changed("batch-size") {
		cfg.Miner.BatchSize = &opts.BatchSize
	}
	if changed("mode") {
		cfg.Miner.Mode = &opts.Mode
	}
	if changed("chain") {
		cfg.Chain.Type = &opts.Chain
	}
	if changed("endpoint") {
		cfg.Chain.Endpoint = &opts.Endpoint
	}
	if changed("journal") {
		if cfg.Journal == nil {
			cfg.Journal = &types.UserJournalConfig{}
		}
		cfg.Journal.Backend = &opts.Journal
	}
	if changed("log-level") {
		if cfg.Log == nil {
			cfg.Log = &types.UserLogConfig{}
		}
		cfg.Log.Level = &opts.LogLevel
	}

	// once 模式由命令自己启动控制器
	autoStart := opts.AutoStart && !opts.Once
	if changed("auto-start") || opts.Once {
		cfg.Miner.AutoStart = &autoStart
	}
}

func runMiner(cmd *cobra.Command, opts runFlags) error {
	appOptions := []app.Option{
		app.WithConfigFile(globalFlags.ConfigPath),
		app.WithOverride(func(cfg *types.AppConfig) {
			applyRunFlags(cfg, opts, cmd.Flags().Changed)
		}),
	}
	if opts.NoAPI {
		appOptions = append(appOptions, app.WithoutAPI())
	}

	instance, err := app.Start(appOptions...)
	if err != nil {
		return err
	}
	pterm.Success.Printfln("✅ %s 已启动", instance)
	if server := instance.HTTPServer(); server != nil && server.Addr() != "" {
		pterm.Info.Printfln("HTTP API: http://%s/api/v1/miner/status", server.Addr())
	}

	var done <-chan struct{}
	if opts.Once {
		if err := instance.Miner().StartMiningOnce(context.Background()); err != nil {
			_ = instance.Stop()
			return fmt.Errorf("启动单次挖矿: %w", err)
		}
		done = instance.Miner().Done()
	}

	started := time.Now()
	if sig := instance.Wait(done); sig != nil {
		pterm.Warning.Printfln("收到信号 %s，正在停止", sig)
	}

	status, statusErr := instance.Miner().GetMiningStatus(context.Background())
	if err := instance.Stop(); err != nil {
		return fmt.Errorf("停止应用: %w", err)
	}
	if statusErr != nil {
		return nil
	}
	return printKV([][]string{
		{"运行时长", time.Since(started).Round(time.Millisecond).String()},
		{"完成轮次", fmt.Sprint(status.RoundsCompleted)},
		{"过期轮次", fmt.Sprint(status.StaleRounds)},
		{"最近 nonce", fmt.Sprint(status.LastNonce)},
		{"最近算力 (H/s)", fmt.Sprintf("%.0f", status.Search.LastHashRate)},
	})
}
