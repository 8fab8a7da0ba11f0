package rpc

import (
	"context"

	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/weisyn/metaminer/pkg/interfaces/chain"
)

// Service 把 chain.Oracle 暴露为 JSON-RPC 方法
type Service struct {
	oracle chain.Oracle
}

// NewService 创建服务
func NewService(oracle chain.Oracle) *Service {
	return &Service{oracle: oracle}
}

// GetBlockInfo <namespace>_getBlockInfo
func (s *Service) GetBlockInfo(ctx context.Context) (*BlockInfoJSON, error) {
	info, err := s.oracle.FetchCommitment(ctx)
	if err != nil {
		return nil, err
	}
	return encodeBlockInfo(info), nil
}

// Submit <namespace>_submit
func (s *Service) Submit(ctx context.Context, nonce hexutil.Uint64, args SubmitArgs) (bool, error) {
	return s.oracle.Submit(ctx, uint64(nonce), args.toSubmission())
}

// NewServer 创建注册了 Service 的 JSON-RPC 服务器，可直接作为 http.Handler
func NewServer(namespace string, oracle chain.Oracle) (*gethrpc.Server, error) {
	server := gethrpc.NewServer()
	if err := server.RegisterName(namespace, NewService(oracle)); err != nil {
		return nil, err
	}
	return server, nil
}
