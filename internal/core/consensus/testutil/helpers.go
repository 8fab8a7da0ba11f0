package testutil

import (
	"time"

	minerconfig "github.com/weisyn/metaminer/internal/config/miner"
	"github.com/weisyn/metaminer/internal/core/infrastructure/crypto/pow"
	"github.com/weisyn/metaminer/pkg/types"
)

// ==================== 辅助函数 ====================

// NewTestMinerOptions 创建测试用的矿工配置：小批次、短轮询，便于快速结束。
// 自动启动关闭，用例需显式调用 StartMining。
func NewTestMinerOptions() *minerconfig.MinerOptions {
	opts := minerconfig.New(nil).GetOptions()
	opts.AutoStart = false
	opts.Workers = 2
	opts.BatchSize = 500
	opts.PollInterval = 10 * time.Millisecond
	opts.RetryDelay = 5 * time.Millisecond
	opts.StopTimeout = 5 * time.Second
	opts.PayloadSize = 16
	return opts
}

// NewTestBlockInfo 创建测试用的出块状态，目标值为最大值
func NewTestBlockInfo(salt uint64) *types.BlockInfo {
	prev := make([]byte, 32)
	for i := range prev {
		prev[i] = byte(i)
	}
	return &types.BlockInfo{
		PreviousHash: prev,
		Salt:         salt,
		Target:       pow.MaxTarget(),
	}
}
