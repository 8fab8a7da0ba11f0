// Package chain 定义链预言机接口
package chain

import (
	"context"

	"github.com/weisyn/metaminer/pkg/types"
)

// Oracle 链状态预言机
//
// 网络类失败统一返回 *types.OracleUnavailableError，由调用方刷新状态后重试。
type Oracle interface {
	// FetchCommitment 抓取当前出块状态
	FetchCommitment(ctx context.Context) (*types.BlockInfo, error)

	// CommitmentChanged 判断链状态是否已偏离 previous
	CommitmentChanged(ctx context.Context, previous *types.BlockInfo) (bool, error)

	// Submit 提交 nonce
	// 返回 false 表示被拒（通常是状态已过期），true 表示确认成功。
	Submit(ctx context.Context, nonce uint64, sub *types.Submission) (bool, error)
}
