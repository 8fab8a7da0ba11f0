// Package memory 提供进程内模拟链预言机
//
// 🎯 **用途**
//
// 开发与测试环境下替代真实链：按当前状态重新计算提交的 nonce，满足目标值则出块
// （新的 previous_hash、新的随机 salt、可选目标值调整），否则拒绝。
// Advance 模拟其他矿工抢先出块，使正在进行的搜索过期。
package memory

import (
	"context"
	"fmt"
	"math/big"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/weisyn/metaminer/internal/core/infrastructure/crypto/pow"
	"github.com/weisyn/metaminer/pkg/interfaces/chain"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/metaminer/pkg/types"
)

const (
	defaultBlockInterval = 2 * time.Second
	maxBusDifficulty     = 31
)

var (
	genesisSeed = []byte("metaminer/genesis")
	signerSeed  = []byte("metaminer/signer")
)

// Options 模拟链参数
type Options struct {
	Mode     types.CommitmentMode
	Target   *big.Int // 区块模式初始目标值
	Retarget bool

	// Difficulty 总线模式初始难度（前导零字节数）
	Difficulty int
	// BlockInterval 期望出块间隔，用于目标值调整
	BlockInterval time.Duration
	// Salt 固定生成 salt 的函数，测试使用
	Salt func() uint64
}

// SimulatedChain 模拟链
type SimulatedChain struct {
	mu sync.Mutex

	opts   Options
	hasher crypto.HashManager
	worker *pow.HashWorker
	logger log.Logger

	state       *types.BlockInfo
	height      uint64
	lastBlockAt time.Time
	unavailable bool
	accepted    uint64
	rejected    uint64
}

// NewSimulatedChain 创建模拟链
func NewSimulatedChain(opts Options, hasher crypto.HashManager, logger log.Logger) (*SimulatedChain, error) {
	if hasher == nil {
		return nil, fmt.Errorf("hasher 不能为空")
	}
	if opts.Mode == "" {
		opts.Mode = types.CommitmentModeBlock
	}
	if opts.BlockInterval <= 0 {
		opts.BlockInterval = defaultBlockInterval
	}
	if opts.Salt == nil {
		opts.Salt = rand.Uint64
	}

	state := &types.BlockInfo{
		PreviousHash: hasher.Keccak256(genesisSeed),
		Salt:         opts.Salt(),
	}
	switch opts.Mode {
	case types.CommitmentModeBlock:
		target := opts.Target
		if target == nil {
			target = pow.MaxTarget()
		}
		if _, err := pow.ParseTarget(target); err != nil {
			return nil, err
		}
		state.Target = new(big.Int).Set(target)
	case types.CommitmentModeBus:
		if opts.Difficulty < 0 || opts.Difficulty > maxBusDifficulty {
			return nil, types.NewInvalidInput("difficulty", fmt.Sprintf("超出范围 [0, %d]", maxBusDifficulty))
		}
		state.Signer = hasher.Keccak256(signerSeed)
		state.Difficulty = opts.Difficulty
	default:
		return nil, types.NewInvalidInput("mode", string(opts.Mode))
	}

	return &SimulatedChain{
		opts:        opts,
		hasher:      hasher,
		worker:      pow.NewHashWorker(nil),
		logger:      logger,
		state:       state,
		lastBlockAt: time.Now(),
	}, nil
}

// FetchCommitment 返回当前状态副本
func (c *SimulatedChain) FetchCommitment(_ context.Context) (*types.BlockInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unavailable {
		return nil, types.NewOracleUnavailable("fetch", errUnavailable)
	}
	return c.state.Clone(), nil
}

// CommitmentChanged 按值比较
func (c *SimulatedChain) CommitmentChanged(_ context.Context, previous *types.BlockInfo) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unavailable {
		return false, types.NewOracleUnavailable("changed", errUnavailable)
	}
	return !c.state.SameCommitment(previous), nil
}

// Submit 校验 nonce，满足当前目标值则出块
func (c *SimulatedChain) Submit(_ context.Context, nonce uint64, sub *types.Submission) (bool, error) {
	if sub == nil || sub.BlockInfo == nil {
		return false, types.NewInvalidInput("submission", "缺少 block info")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unavailable {
		return false, types.NewOracleUnavailable("submit", errUnavailable)
	}
	if !c.state.SameCommitment(sub.BlockInfo) {
		c.rejected++
		return false, nil
	}

	prefix, err := pow.BuildPrefix(c.hasher, c.opts.Mode, c.state, sub.Meta, sub.Payload)
	if err != nil {
		return false, err
	}
	target, err := pow.ResolveTarget(c.state)
	if err != nil {
		return false, err
	}
	if !c.worker.Verify(prefix, nonce, target) {
		c.rejected++
		return false, nil
	}

	c.accepted++
	c.mint(c.worker.HashNonce(prefix, nonce))
	return true, nil
}

// Advance 模拟其他矿工出块
func (c *SimulatedChain) Advance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mint(c.hasher.Keccak256Concat(c.state.PreviousHash, pow.Uint64ToBytes(c.state.Salt)))
}

// SetUnavailable 切换不可用状态，所有调用返回 OracleUnavailableError
func (c *SimulatedChain) SetUnavailable(unavailable bool) {
	c.mu.Lock()
	c.unavailable = unavailable
	c.mu.Unlock()
}

// SetTarget 直接设置区块模式目标值
func (c *SimulatedChain) SetTarget(target *big.Int) error {
	if _, err := pow.ParseTarget(target); err != nil {
		return err
	}
	c.mu.Lock()
	c.state.Target = new(big.Int).Set(target)
	c.mu.Unlock()
	return nil
}

// Height 已出块数
func (c *SimulatedChain) Height() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height
}

// Counters 已接受与被拒的提交数
func (c *SimulatedChain) Counters() (accepted, rejected uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accepted, c.rejected
}

// mint 以 blockHash 作为新的 previous_hash 出块，调用方持有 c.mu
func (c *SimulatedChain) mint(blockHash []byte) {
	next := c.state.Clone()
	next.PreviousHash = blockHash
	next.Salt = c.opts.Salt()

	now := time.Now()
	if c.opts.Retarget {
		c.retarget(next, now.Sub(c.lastBlockAt))
	}
	c.lastBlockAt = now
	c.state = next
	c.height++

	if c.logger != nil {
		c.logger.Debugf("模拟链出块: height=%d prev=%x", c.height, blockHash[:8])
	}
}

// retarget 出块快于期望间隔则收紧 10%，慢则放宽 10%
func (c *SimulatedChain) retarget(next *types.BlockInfo, interval time.Duration) {
	faster := interval < c.opts.BlockInterval
	if c.opts.Mode == types.CommitmentModeBus {
		if faster && next.Difficulty < maxBusDifficulty {
			next.Difficulty++
		} else if !faster && next.Difficulty > 0 {
			next.Difficulty--
		}
		return
	}

	t := new(big.Int).Set(next.Target)
	if faster {
		t.Mul(t, big.NewInt(9)).Div(t, big.NewInt(10))
	} else {
		t.Mul(t, big.NewInt(11)).Div(t, big.NewInt(10))
		if ceiling := pow.MaxTarget(); t.Cmp(ceiling) > 0 {
			t = ceiling
		}
	}
	if t.Sign() == 0 {
		t.SetInt64(1)
	}
	next.Target = t
}

var errUnavailable = fmt.Errorf("模拟链不可用")

var _ chain.Oracle = (*SimulatedChain)(nil)
