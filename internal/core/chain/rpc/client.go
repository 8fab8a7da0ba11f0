package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/weisyn/metaminer/pkg/interfaces/chain"
	"github.com/weisyn/metaminer/pkg/types"
)

// Client JSON-RPC 链预言机客户端
//
// 所有传输与远端错误都包装为 *types.OracleUnavailableError。
type Client struct {
	rpc       *gethrpc.Client
	namespace string
	timeout   time.Duration
}

// Dial 连接 JSON-RPC 端点（http/ws/ipc）
func Dial(ctx context.Context, endpoint, namespace string, timeout time.Duration) (*Client, error) {
	c, err := gethrpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, types.NewOracleUnavailable("dial", err)
	}
	return NewClient(c, namespace, timeout), nil
}

// NewClient 包装已有连接
func NewClient(c *gethrpc.Client, namespace string, timeout time.Duration) *Client {
	return &Client{rpc: c, namespace: namespace, timeout: timeout}
}

// FetchCommitment 调用 getBlockInfo
func (c *Client) FetchCommitment(ctx context.Context) (*types.BlockInfo, error) {
	var out BlockInfoJSON
	if err := c.call(ctx, &out, "getBlockInfo"); err != nil {
		return nil, types.NewOracleUnavailable("fetch", err)
	}
	if len(out.PreviousHash) == 0 {
		return nil, types.NewOracleUnavailable("fetch", fmt.Errorf("响应缺少 previousHash"))
	}
	return out.toBlockInfo(), nil
}

// CommitmentChanged 重新抓取并按值比较
func (c *Client) CommitmentChanged(ctx context.Context, previous *types.BlockInfo) (bool, error) {
	current, err := c.FetchCommitment(ctx)
	if err != nil {
		return false, err
	}
	return !current.SameCommitment(previous), nil
}

// Submit 调用 submit
func (c *Client) Submit(ctx context.Context, nonce uint64, sub *types.Submission) (bool, error) {
	if sub == nil {
		return false, types.NewInvalidInput("submission", "为空")
	}
	var accepted bool
	if err := c.call(ctx, &accepted, "submit", hexutil.Uint64(nonce), encodeSubmission(sub)); err != nil {
		return false, types.NewOracleUnavailable("submit", err)
	}
	return accepted, nil
}

// Close 关闭连接
func (c *Client) Close() {
	c.rpc.Close()
}

func (c *Client) call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.rpc.CallContext(ctx, result, c.namespace+"_"+method, args...)
}

var _ chain.Oracle = (*Client)(nil)
