// Package chain 组装链预言机
//
// 按 chain.type 选择实现：
//   - memory: 进程内模拟链（开发、测试、bench）
//   - rpc: JSON-RPC 远端节点
package chain

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	chainconfig "github.com/weisyn/metaminer/internal/config/chain"
	minerconfig "github.com/weisyn/metaminer/internal/config/miner"
	"github.com/weisyn/metaminer/internal/core/chain/memory"
	"github.com/weisyn/metaminer/internal/core/chain/rpc"
	chainif "github.com/weisyn/metaminer/pkg/interfaces/chain"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/log"
)

// ModuleInput 定义 chain 模块的输入依赖
type ModuleInput struct {
	fx.In

	Lifecycle    fx.Lifecycle
	Logger       log.Logger
	Options      *chainconfig.ChainOptions
	MinerOptions *minerconfig.MinerOptions
	Hasher       crypto.HashManager
}

// ModuleOutput 定义 chain 模块的输出
type ModuleOutput struct {
	fx.Out

	Oracle chainif.Oracle
	// Simulated 仅 memory 类型非空，供 devnet 等直接操作模拟链
	Simulated *memory.SimulatedChain
}

// Module 返回链预言机模块
func Module() fx.Option {
	return fx.Module("chain",
		fx.Provide(ProvideOracle),
	)
}

// ProvideOracle 按配置创建预言机
func ProvideOracle(in ModuleInput) (ModuleOutput, error) {
	logger := in.Logger.With("module", "chain")

	switch in.Options.Type {
	case chainconfig.TypeMemory:
		sim, err := memory.NewSimulatedChain(memory.Options{
			Mode:     in.MinerOptions.Mode,
			Target:   in.Options.SimulatedTarget,
			Retarget: in.Options.SimulatedRetarget,
		}, in.Hasher, logger)
		if err != nil {
			return ModuleOutput{}, fmt.Errorf("创建模拟链失败: %w", err)
		}
		logger.Infof("使用模拟链预言机 (mode=%s)", in.MinerOptions.Mode)
		return ModuleOutput{Oracle: sim, Simulated: sim}, nil

	case chainconfig.TypeRPC:
		ctx, cancel := context.WithTimeout(context.Background(), in.Options.Timeout)
		defer cancel()
		client, err := rpc.Dial(ctx, in.Options.Endpoint, in.Options.Namespace, in.Options.Timeout)
		if err != nil {
			return ModuleOutput{}, fmt.Errorf("连接链节点失败: %w", err)
		}
		in.Lifecycle.Append(fx.Hook{
			OnStop: func(context.Context) error {
				client.Close()
				return nil
			},
		})
		logger.Infof("使用 JSON-RPC 链预言机: %s (namespace=%s)", in.Options.Endpoint, in.Options.Namespace)
		return ModuleOutput{Oracle: client}, nil

	default:
		return ModuleOutput{}, fmt.Errorf("未知的链类型: %s", in.Options.Type)
	}
}
