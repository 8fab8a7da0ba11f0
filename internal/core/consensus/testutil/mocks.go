// Package testutil 提供矿工测试使用的模拟对象
package testutil

import (
	"context"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/weisyn/metaminer/pkg/interfaces/chain"
	"github.com/weisyn/metaminer/pkg/interfaces/consensus"
	"github.com/weisyn/metaminer/pkg/types"
)

// ==================== MockOracle ====================

// MockOracle 可编排返回值的链预言机
type MockOracle struct {
	mu sync.Mutex

	commitment *types.BlockInfo
	fetchErr   error

	// SubmitFn 为空时接受所有提交；调用时不持锁，可在其中调用 SetCommitment
	SubmitFn func(nonce uint64, sub *types.Submission) (bool, error)
	// AfterFetch 在第 n 次抓取返回前调用（不持锁），用于模拟抓取后立即出块
	AfterFetch func(n int)

	fetches     int
	submissions []uint64
}

// NewMockOracle 创建预言机
func NewMockOracle(commitment *types.BlockInfo) *MockOracle {
	return &MockOracle{commitment: commitment}
}

// SetCommitment 替换当前状态（模拟出块）
func (m *MockOracle) SetCommitment(info *types.BlockInfo) {
	m.mu.Lock()
	m.commitment = info
	m.mu.Unlock()
}

// SetFetchError 设置抓取错误，nil 表示恢复
func (m *MockOracle) SetFetchError(err error) {
	m.mu.Lock()
	m.fetchErr = err
	m.mu.Unlock()
}

// Fetches 抓取次数
func (m *MockOracle) Fetches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches
}

// Submitted 已提交的 nonce 副本
func (m *MockOracle) Submitted() []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uint64(nil), m.submissions...)
}

func (m *MockOracle) FetchCommitment(_ context.Context) (*types.BlockInfo, error) {
	m.mu.Lock()
	m.fetches++
	n, hook := m.fetches, m.AfterFetch
	if m.fetchErr != nil {
		err := m.fetchErr
		m.mu.Unlock()
		return nil, err
	}
	info := m.commitment.Clone()
	m.mu.Unlock()
	if hook != nil {
		hook(n)
	}
	return info, nil
}

func (m *MockOracle) CommitmentChanged(_ context.Context, previous *types.BlockInfo) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return false, m.fetchErr
	}
	return !m.commitment.SameCommitment(previous), nil
}

func (m *MockOracle) Submit(_ context.Context, nonce uint64, sub *types.Submission) (bool, error) {
	m.mu.Lock()
	m.submissions = append(m.submissions, nonce)
	fn := m.SubmitFn
	m.mu.Unlock()
	if fn == nil {
		return true, nil
	}
	return fn(nonce, sub)
}

var _ chain.Oracle = (*MockOracle)(nil)

// ==================== MockSearcher ====================

// SearchCall 一次搜索调用的记录
type SearchCall struct {
	Prefix []byte
	Target *big.Int
	Resume bool
	Start  uint64
}

// MockSearcher 可编排结果的 nonce 搜索器
type MockSearcher struct {
	mu    sync.Mutex
	calls []SearchCall

	// SearchFn 为空时直接返回 (Start, true, nil)
	SearchFn   func(ctx context.Context, call SearchCall) (uint64, bool, error)
	RestartErr error

	StopCalls    atomic.Int32
	RestartCalls atomic.Int32

	stopped atomic.Bool
}

func (m *MockSearcher) record(ctx context.Context, call SearchCall, onStarted []func()) (uint64, bool, error) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	fn := m.SearchFn
	m.mu.Unlock()
	// 与真实搜索器一致：开始搜索时清除此前的停止请求
	m.stopped.Store(false)
	for _, hook := range onStarted {
		hook()
	}
	if fn == nil {
		return call.Start, true, nil
	}
	return fn(ctx, call)
}

// Calls 搜索调用记录副本
func (m *MockSearcher) Calls() []SearchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SearchCall(nil), m.calls...)
}

func (m *MockSearcher) FindValidNonce(ctx context.Context, prefix []byte, target *big.Int, onStarted ...func()) (uint64, bool, error) {
	return m.record(ctx, SearchCall{Prefix: prefix, Target: target}, onStarted)
}

func (m *MockSearcher) ResumeFrom(ctx context.Context, prefix []byte, target *big.Int, start uint64, onStarted ...func()) (uint64, bool, error) {
	return m.record(ctx, SearchCall{Prefix: prefix, Target: target, Resume: true, Start: start}, onStarted)
}

func (m *MockSearcher) RequestStop() {
	m.StopCalls.Add(1)
	m.stopped.Store(true)
}

// Stopped 当前搜索是否收到停止请求
func (m *MockSearcher) Stopped() bool {
	return m.stopped.Load()
}

func (m *MockSearcher) RestartPool() error {
	m.RestartCalls.Add(1)
	return m.RestartErr
}

func (m *MockSearcher) Stats() types.SearchStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return types.SearchStats{Rounds: uint64(len(m.calls)), Phase: types.SearchPhaseIdle.String()}
}

var _ consensus.NonceSearcher = (*MockSearcher)(nil)

// ==================== MockOrchestrator ====================

// MockOrchestrator 可编排结果的单轮编排器
type MockOrchestrator struct {
	RoundFn func(ctx context.Context, round int) (*types.RoundResult, error)
	rounds  atomic.Int32
}

// Rounds 已执行轮次
func (m *MockOrchestrator) Rounds() int {
	return int(m.rounds.Load())
}

func (m *MockOrchestrator) ExecuteMiningRound(ctx context.Context) (*types.RoundResult, error) {
	round := int(m.rounds.Add(1))
	if m.RoundFn == nil {
		return &types.RoundResult{Outcome: types.RoundOutcomeAccepted, Nonce: uint64(round)}, nil
	}
	return m.RoundFn(ctx, round)
}

var _ consensus.MiningOrchestrator = (*MockOrchestrator)(nil)
