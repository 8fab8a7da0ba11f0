package staleness

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/metaminer/internal/core/chain/memory"
	"github.com/weisyn/metaminer/internal/core/infrastructure/crypto/hash"
	corelog "github.com/weisyn/metaminer/internal/core/infrastructure/log"
	"github.com/weisyn/metaminer/pkg/types"
)

const testInterval = 10 * time.Millisecond

type countingStopper struct {
	calls atomic.Int32
}

func (s *countingStopper) RequestStop() { s.calls.Add(1) }

func newTestChain(t *testing.T) *memory.SimulatedChain {
	t.Helper()
	c, err := memory.NewSimulatedChain(memory.Options{}, hash.NewUncachedHashService(), nil)
	require.NoError(t, err)
	return c
}

func TestWatch_FiresOnceOnChange(t *testing.T) {
	sim := newTestChain(t)
	stopper := &countingStopper{}
	var staleCallbacks atomic.Int32
	m := NewMonitor(sim, stopper, testInterval, corelog.NewNop())
	m.OnStale = func(_ *types.BlockInfo) { staleCallbacks.Add(1) }

	baseline, err := sim.FetchCommitment(context.Background())
	require.NoError(t, err)
	w := m.Watch(context.Background(), baseline)
	defer w.Stop()

	time.Sleep(3 * testInterval)
	assert.False(t, w.Outdated(), "状态未变化时不应过期")
	assert.Equal(t, int32(0), stopper.calls.Load())

	sim.Advance()
	require.Eventually(t, w.Outdated, time.Second, testInterval)

	// 继续变化也不再重复请求停止
	sim.Advance()
	time.Sleep(5 * testInterval)
	assert.Equal(t, int32(1), stopper.calls.Load())
	assert.Equal(t, int32(1), staleCallbacks.Load())
}

func TestWatch_OracleErrorKeepsPolling(t *testing.T) {
	sim := newTestChain(t)
	stopper := &countingStopper{}
	m := NewMonitor(sim, stopper, testInterval, corelog.NewNop())

	baseline, err := sim.FetchCommitment(context.Background())
	require.NoError(t, err)

	sim.SetUnavailable(true)
	w := m.Watch(context.Background(), baseline)
	defer w.Stop()

	require.Eventually(t, func() bool { return w.Checks() >= 3 }, time.Second, testInterval)
	assert.False(t, w.Outdated(), "预言机错误不应导致停止")
	assert.Equal(t, int32(0), stopper.calls.Load())

	sim.SetUnavailable(false)
	sim.Advance()
	require.Eventually(t, w.Outdated, time.Second, testInterval)
	assert.Equal(t, int32(1), stopper.calls.Load())
}

func TestWatch_UpdateBaselineRearms(t *testing.T) {
	sim := newTestChain(t)
	stopper := &countingStopper{}
	m := NewMonitor(sim, stopper, testInterval, corelog.NewNop())
	ctx := context.Background()

	baseline, err := sim.FetchCommitment(ctx)
	require.NoError(t, err)
	w := m.Watch(ctx, baseline)
	defer w.Stop()

	sim.Advance()
	require.Eventually(t, w.Outdated, time.Second, testInterval)

	refreshed, err := sim.FetchCommitment(ctx)
	require.NoError(t, err)
	w.UpdateBaseline(refreshed)
	assert.False(t, w.Outdated())

	time.Sleep(3 * testInterval)
	assert.False(t, w.Outdated(), "新基线与链一致，不应过期")

	sim.Advance()
	require.Eventually(t, w.Outdated, time.Second, testInterval)
	assert.Equal(t, int32(2), stopper.calls.Load(), "每个基线各触发一次")
}

func TestWatch_StopEndsPolling(t *testing.T) {
	sim := newTestChain(t)
	stopper := &countingStopper{}
	m := NewMonitor(sim, stopper, testInterval, corelog.NewNop())

	baseline, err := sim.FetchCommitment(context.Background())
	require.NoError(t, err)
	w := m.Watch(context.Background(), baseline)
	w.Stop()
	w.Stop()

	checks := w.Checks()
	sim.Advance()
	time.Sleep(5 * testInterval)
	assert.Equal(t, checks, w.Checks())
	assert.False(t, w.Outdated())
	assert.Equal(t, int32(0), stopper.calls.Load())
}

func TestWatch_ContextCancelStopsPolling(t *testing.T) {
	sim := newTestChain(t)
	m := NewMonitor(sim, &countingStopper{}, testInterval, corelog.NewNop())
	baseline, err := sim.FetchCommitment(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	w := m.Watch(ctx, baseline)
	cancel()

	select {
	case <-w.done:
	case <-time.After(time.Second):
		t.Fatal("取消上下文后检测协程未退出")
	}
	w.Stop()
}

func TestNewMonitor_DefaultInterval(t *testing.T) {
	m := NewMonitor(nil, nil, 0, corelog.NewNop())
	assert.Equal(t, DefaultInterval, m.interval)
}
