package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"runtime"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/weisyn/metaminer/internal/core/infrastructure/crypto/pow"
	logimpl "github.com/weisyn/metaminer/internal/core/infrastructure/log"
)

var (
	benchWorkers   int
	benchBatchSize uint64
	benchDuration  time.Duration
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "测量本机算力",
	Long: `使用不可能满足的目标值运行 nonce 搜索，统计给定时长内的哈希次数

示例:
  metaminer bench --duration 10s --workers 8`,
	RunE: func(cmd *cobra.Command, args []string) error {
		progress := term.IsTerminal(int(os.Stdout.Fd()))
		result, err := runBench(cmd.Context(), benchWorkers, benchBatchSize, benchDuration, progress)
		if err != nil {
			return err
		}
		return printKV([][]string{
			{"工作者", fmt.Sprint(benchWorkers)},
			{"批大小", fmt.Sprint(benchBatchSize)},
			{"完成轮次", fmt.Sprint(result.Rounds)},
			{"哈希总数", fmt.Sprint(result.Hashes)},
			{"平均算力 (H/s)", fmt.Sprintf("%.0f", result.Rate)},
		})
	},
}

func init() {
	benchCmd.Flags().IntVarP(&benchWorkers, "workers", "w", runtime.NumCPU(), "并行工作者数量")
	benchCmd.Flags().Uint64Var(&benchBatchSize, "batch-size", 100000, "每个工作者每批尝试次数")
	benchCmd.Flags().DurationVarP(&benchDuration, "duration", "d", 5*time.Second, "测量时长")
}

// benchResult 测量结果
type benchResult struct {
	Rounds uint64
	Hashes uint64
	Rate   float64
}

// runBench 搜索目标 0 直到时长耗尽，只统计完整结束的轮次。
// progress 为 false 时不显示进度动画（非终端输出、测试）。
func runBench(parent context.Context, workers int, batchSize uint64, duration time.Duration, progress bool) (*benchResult, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("测量时长必须大于0: %s", duration)
	}
	if parent == nil {
		parent = context.Background()
	}

	finder, err := pow.NewNonceFinder(pow.Config{
		Workers:          workers,
		BatchSize:        batchSize,
		InitialNonceBits: 40,
	}, logimpl.NewNop())
	if err != nil {
		return nil, err
	}
	defer finder.Close()

	prefix := make([]byte, 32)
	if _, err := rand.Read(prefix); err != nil {
		return nil, fmt.Errorf("生成随机前缀: %w", err)
	}

	ctx, cancel := context.WithTimeout(parent, duration)
	defer cancel()

	spinner := startBenchSpinner(progress, duration)
	started := time.Now()
	_, found, err := finder.FindValidNonce(ctx, prefix, big.NewInt(0))
	elapsed := time.Since(started)
	if spinner != nil {
		_ = spinner.Stop()
	}

	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	if found {
		return nil, fmt.Errorf("目标 0 不应被满足")
	}

	stats := finder.Stats()
	return &benchResult{
		Rounds: stats.Rounds,
		Hashes: stats.TotalHashes,
		Rate:   float64(stats.TotalHashes) / elapsed.Seconds(),
	}, nil
}

// startBenchSpinner 仅在终端下启动进度动画，否则返回 nil
func startBenchSpinner(enabled bool, duration time.Duration) *pterm.SpinnerPrinter {
	if !enabled {
		return nil
	}
	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("测量中（%s）...", duration))
	return spinner
}
