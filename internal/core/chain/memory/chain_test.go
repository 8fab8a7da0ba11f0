package memory

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/metaminer/internal/core/infrastructure/crypto/hash"
	"github.com/weisyn/metaminer/internal/core/infrastructure/crypto/pow"
	"github.com/weisyn/metaminer/pkg/types"
)

func seqSalt() func() uint64 {
	var n uint64 = 100
	return func() uint64 {
		n++
		return n
	}
}

func newTestChain(t *testing.T, opts Options) *SimulatedChain {
	t.Helper()
	if opts.Salt == nil {
		opts.Salt = seqSalt()
	}
	c, err := NewSimulatedChain(opts, hash.NewUncachedHashService(), nil)
	require.NoError(t, err)
	return c
}

// solve 在 [0, limit) 内暴力找一个满足当前目标值的 nonce
func solve(t *testing.T, c *SimulatedChain, info *types.BlockInfo, meta, payload []byte) uint64 {
	t.Helper()
	prefix, err := pow.BuildPrefix(c.hasher, c.opts.Mode, info, meta, payload)
	require.NoError(t, err)
	target, err := pow.ResolveTarget(info)
	require.NoError(t, err)
	w := pow.NewHashWorker(nil)
	for n := uint64(0); n < 1_000_000; n++ {
		if w.Verify(prefix, n, target) {
			return n
		}
	}
	t.Fatalf("未找到满足目标值的 nonce")
	return 0
}

func TestSimulatedChain_AcceptAdvancesState(t *testing.T) {
	c := newTestChain(t, Options{Target: new(big.Int).Rsh(pow.MaxTarget(), 8)})
	ctx := context.Background()

	info, err := c.FetchCommitment(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(101), info.Salt)

	payload := []byte("payload")
	nonce := solve(t, c, info, nil, payload)
	ok, err := c.Submit(ctx, nonce, &types.Submission{Payload: payload, BlockInfo: info})
	require.NoError(t, err)
	assert.True(t, ok, "满足目标值的 nonce 应被接受")
	assert.Equal(t, uint64(1), c.Height())

	changed, err := c.CommitmentChanged(ctx, info)
	require.NoError(t, err)
	assert.True(t, changed, "出块后状态应变化")

	next, err := c.FetchCommitment(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(102), next.Salt)
	assert.NotEqual(t, info.PreviousHash, next.PreviousHash)

	// 同一 nonce 对新状态已过期
	ok, err = c.Submit(ctx, nonce, &types.Submission{Payload: payload, BlockInfo: info})
	require.NoError(t, err)
	assert.False(t, ok)
	accepted, rejected := c.Counters()
	assert.Equal(t, uint64(1), accepted)
	assert.Equal(t, uint64(1), rejected)
}

func TestSimulatedChain_RejectsNonceAboveTarget(t *testing.T) {
	c := newTestChain(t, Options{Target: big.NewInt(0)})
	ctx := context.Background()
	info, err := c.FetchCommitment(ctx)
	require.NoError(t, err)

	ok, err := c.Submit(ctx, 42, &types.Submission{BlockInfo: info})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, uint64(0), c.Height())

	changed, err := c.CommitmentChanged(ctx, info)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestSimulatedChain_PayloadIsPartOfCommitment(t *testing.T) {
	c := newTestChain(t, Options{Target: new(big.Int).Rsh(pow.MaxTarget(), 12)})
	ctx := context.Background()
	info, err := c.FetchCommitment(ctx)
	require.NoError(t, err)

	nonce := solve(t, c, info, nil, []byte("a"))
	target, _ := pow.ResolveTarget(info)
	prefixB, _ := pow.BuildPrefix(c.hasher, types.CommitmentModeBlock, info, nil, []byte("b"))
	if pow.NewHashWorker(nil).Verify(prefixB, nonce, target) {
		t.Skip("nonce 恰好对另一个负载也有效")
	}
	ok, err := c.Submit(ctx, nonce, &types.Submission{Payload: []byte("b"), BlockInfo: info})
	require.NoError(t, err)
	assert.False(t, ok, "负载不同则哈希不同")
}

func TestSimulatedChain_AdvanceMakesSnapshotStale(t *testing.T) {
	c := newTestChain(t, Options{})
	ctx := context.Background()
	info, err := c.FetchCommitment(ctx)
	require.NoError(t, err)

	c.Advance()

	changed, err := c.CommitmentChanged(ctx, info)
	require.NoError(t, err)
	assert.True(t, changed)

	ok, err := c.Submit(ctx, 1, &types.Submission{BlockInfo: info})
	require.NoError(t, err)
	assert.False(t, ok, "过期快照上的提交应被拒绝")
}

func TestSimulatedChain_Unavailable(t *testing.T) {
	c := newTestChain(t, Options{})
	ctx := context.Background()
	c.SetUnavailable(true)

	_, err := c.FetchCommitment(ctx)
	_, ok := types.IsOracleUnavailableError(err)
	assert.True(t, ok)

	_, err = c.CommitmentChanged(ctx, nil)
	_, ok = types.IsOracleUnavailableError(err)
	assert.True(t, ok)

	_, err = c.Submit(ctx, 0, &types.Submission{BlockInfo: &types.BlockInfo{}})
	_, ok = types.IsOracleUnavailableError(err)
	assert.True(t, ok)

	c.SetUnavailable(false)
	_, err = c.FetchCommitment(ctx)
	assert.NoError(t, err)
}

func TestSimulatedChain_Retarget(t *testing.T) {
	start := new(big.Int).Rsh(pow.MaxTarget(), 4)
	c := newTestChain(t, Options{Target: start, Retarget: true, BlockInterval: time.Hour})
	c.Advance()

	info, err := c.FetchCommitment(context.Background())
	require.NoError(t, err)
	want := new(big.Int).Mul(start, big.NewInt(9))
	want.Div(want, big.NewInt(10))
	assert.Equal(t, 0, info.Target.Cmp(want), "快于期望间隔应收紧 10%")

	adj := pow.CompareTargets(start, info.Target)
	assert.True(t, adj.Changed)
	assert.False(t, adj.Easier)
}

func TestSimulatedChain_BusMode(t *testing.T) {
	c := newTestChain(t, Options{Mode: types.CommitmentModeBus, Difficulty: 1})
	ctx := context.Background()
	info, err := c.FetchCommitment(ctx)
	require.NoError(t, err)
	require.Len(t, info.Signer, 32)
	assert.Nil(t, info.Target)

	nonce := solve(t, c, info, nil, nil)
	ok, err := c.Submit(ctx, nonce, &types.Submission{BlockInfo: info})
	require.NoError(t, err)
	assert.True(t, ok)

	digest := pow.NewHashWorker(nil).HashNonce(append(append([]byte(nil), info.PreviousHash...), info.Signer...), nonce)
	assert.Equal(t, byte(0), digest[0], "难度 1 要求首字节为零")

	next, err := c.FetchCommitment(ctx)
	require.NoError(t, err)
	assert.Equal(t, digest, next.PreviousHash, "总线模式的新 current_hash 为获胜哈希")
}

func TestNewSimulatedChain_Validation(t *testing.T) {
	h := hash.NewUncachedHashService()
	_, err := NewSimulatedChain(Options{Mode: "pos"}, h, nil)
	assert.Error(t, err)
	_, err = NewSimulatedChain(Options{Mode: types.CommitmentModeBus, Difficulty: 40}, h, nil)
	assert.Error(t, err)
	_, err = NewSimulatedChain(Options{Target: big.NewInt(-1)}, h, nil)
	assert.Error(t, err)
	_, err = NewSimulatedChain(Options{}, nil, nil)
	assert.Error(t, err)
}
