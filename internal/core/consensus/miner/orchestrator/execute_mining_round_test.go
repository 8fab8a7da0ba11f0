package orchestrator

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	minerconfig "github.com/weisyn/metaminer/internal/config/miner"
	"github.com/weisyn/metaminer/internal/core/chain/memory"
	"github.com/weisyn/metaminer/internal/core/consensus/testutil"
	"github.com/weisyn/metaminer/internal/core/infrastructure/crypto/hash"
	"github.com/weisyn/metaminer/internal/core/infrastructure/crypto/pow"
	eventimpl "github.com/weisyn/metaminer/internal/core/infrastructure/event"
	corelog "github.com/weisyn/metaminer/internal/core/infrastructure/log"
	"github.com/weisyn/metaminer/internal/core/infrastructure/storage/journal"
	"github.com/weisyn/metaminer/pkg/interfaces/chain"
	"github.com/weisyn/metaminer/pkg/interfaces/consensus"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/metaminer/pkg/types"
)

type fixture struct {
	orch    *MiningOrchestratorService
	journal *journal.MemoryJournal
	bus     *eventimpl.EventBus

	mu     sync.Mutex
	events []*types.MinerEvent
}

func newFixture(t *testing.T, oracle chain.Oracle, searcher consensus.NonceSearcher, opts *minerconfig.MinerOptions) *fixture {
	t.Helper()
	f := &fixture{
		journal: journal.NewMemoryJournal(100),
		bus:     eventimpl.New(nil),
	}
	for _, et := range []types.EventType{
		types.EventTypeRoundStarted,
		types.EventTypeNonceFound,
		types.EventTypeSubmissionRejected,
		types.EventTypeRoundStale,
		types.EventTypeTargetAdjusted,
	} {
		require.NoError(t, f.bus.Subscribe(et, func(e event.Event) {
			f.mu.Lock()
			f.events = append(f.events, e.(*types.MinerEvent))
			f.mu.Unlock()
		}))
	}

	orch, err := NewMiningOrchestratorService(Dependencies{
		Logger:   corelog.NewNop(),
		Oracle:   oracle,
		Searcher: searcher,
		Hasher:   hash.NewUncachedHashService(),
		Journal:  f.journal,
		EventBus: f.bus,
		Options:  opts,
	})
	require.NoError(t, err)
	f.orch = orch
	return f
}

func (f *fixture) eventsOf(et types.EventType) []*types.MinerEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.MinerEvent
	for _, e := range f.events {
		if e.EventType == et {
			out = append(out, e)
		}
	}
	return out
}

// quietOptions 轮询间隔很长，避免过期检测干扰模拟对象驱动的用例
func quietOptions() *minerconfig.MinerOptions {
	opts := testutil.NewTestMinerOptions()
	opts.PollInterval = time.Hour
	return opts
}

func TestExecuteMiningRound_AcceptedFirstSubmit(t *testing.T) {
	oracle := testutil.NewMockOracle(testutil.NewTestBlockInfo(7))
	searcher := &testutil.MockSearcher{
		SearchFn: func(context.Context, testutil.SearchCall) (uint64, bool, error) { return 41, true, nil },
	}
	f := newFixture(t, oracle, searcher, quietOptions())

	result, err := f.orch.ExecuteMiningRound(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.RoundOutcomeAccepted, result.Outcome)
	assert.Equal(t, uint64(41), result.Nonce)
	assert.Equal(t, 1, result.Attempts)
	assert.NotEmpty(t, result.RoundID)
	assert.Equal(t, []uint64{41}, oracle.Submitted())

	entries, err := f.journal.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(41), entries[0].Nonce)
	assert.Equal(t, uint64(7), entries[0].Salt)
	assert.Equal(t, result.RoundID, entries[0].RoundID)

	assert.Len(t, f.eventsOf(types.EventTypeRoundStarted), 1)
	found := f.eventsOf(types.EventTypeNonceFound)
	require.Len(t, found, 1)
	assert.Equal(t, uint64(41), found[0].Payload["nonce"])
}

func TestExecuteMiningRound_RejectedResumesFromNextNonce(t *testing.T) {
	first := testutil.NewTestBlockInfo(1)
	second := testutil.NewTestBlockInfo(2)
	oracle := testutil.NewMockOracle(first)

	rejected := false
	oracle.SubmitFn = func(nonce uint64, sub *types.Submission) (bool, error) {
		if !rejected {
			rejected = true
			oracle.SetCommitment(second)
			return false, nil
		}
		return true, nil
	}
	searcher := &testutil.MockSearcher{
		SearchFn: func(_ context.Context, call testutil.SearchCall) (uint64, bool, error) {
			if call.Resume {
				return call.Start + 5, true, nil
			}
			return 100, true, nil
		},
	}
	f := newFixture(t, oracle, searcher, quietOptions())

	result, err := f.orch.ExecuteMiningRound(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.RoundOutcomeAccepted, result.Outcome)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, uint64(106), result.Nonce)
	assert.Equal(t, uint64(2), result.BlockInfo.Salt, "结果应对应刷新后的状态")
	assert.Equal(t, []uint64{100, 106}, oracle.Submitted())

	calls := searcher.Calls()
	require.Len(t, calls, 2)
	assert.False(t, calls[0].Resume)
	assert.True(t, calls[1].Resume)
	assert.Equal(t, uint64(101), calls[1].Start, "续搜应从 nonce+1 开始")
	assert.NotEqual(t, calls[0].Prefix, calls[1].Prefix, "刷新状态后前缀应重建")

	assert.Len(t, f.eventsOf(types.EventTypeSubmissionRejected), 1)
	assert.Equal(t, 2, oracle.Fetches())
}

func TestExecuteMiningRound_SubmitUnavailableTreatedAsRejection(t *testing.T) {
	oracle := testutil.NewMockOracle(testutil.NewTestBlockInfo(3))
	calls := 0
	oracle.SubmitFn = func(uint64, *types.Submission) (bool, error) {
		calls++
		if calls == 1 {
			return false, types.NewOracleUnavailable("submit", errors.New("connection reset"))
		}
		return true, nil
	}
	searcher := &testutil.MockSearcher{}
	f := newFixture(t, oracle, searcher, quietOptions())

	result, err := f.orch.ExecuteMiningRound(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, uint64(1), result.Nonce, "默认搜索器返回起点，续搜起点为 0+1")
}

func TestExecuteMiningRound_SubmitOtherErrorPropagates(t *testing.T) {
	oracle := testutil.NewMockOracle(testutil.NewTestBlockInfo(3))
	oracle.SubmitFn = func(uint64, *types.Submission) (bool, error) {
		return false, types.NewInvalidInput("submission", "bad")
	}
	f := newFixture(t, oracle, &testutil.MockSearcher{}, quietOptions())

	_, err := f.orch.ExecuteMiningRound(context.Background())
	_, ok := types.IsInvalidInputError(err)
	assert.True(t, ok)
}

func TestExecuteMiningRound_FetchErrorWrapped(t *testing.T) {
	oracle := testutil.NewMockOracle(testutil.NewTestBlockInfo(1))
	oracle.SetFetchError(types.NewOracleUnavailable("fetch", errors.New("timeout")))
	searcher := &testutil.MockSearcher{}
	f := newFixture(t, oracle, searcher, quietOptions())

	_, err := f.orch.ExecuteMiningRound(context.Background())
	require.Error(t, err)
	_, ok := types.IsOracleUnavailableError(err)
	assert.True(t, ok)
	assert.Empty(t, searcher.Calls(), "抓取失败时不应开始搜索")
}

func TestExecuteMiningRound_WorkerFaultPropagates(t *testing.T) {
	oracle := testutil.NewMockOracle(testutil.NewTestBlockInfo(1))
	searcher := &testutil.MockSearcher{
		SearchFn: func(context.Context, testutil.SearchCall) (uint64, bool, error) {
			return 0, false, &types.WorkerFaultError{WorkerID: 3, Err: errors.New("boom")}
		},
	}
	f := newFixture(t, oracle, searcher, quietOptions())

	_, err := f.orch.ExecuteMiningRound(context.Background())
	wf, ok := types.IsWorkerFaultError(err)
	require.True(t, ok)
	assert.Equal(t, 3, wf.WorkerID)
	assert.Empty(t, oracle.Submitted())
}

func TestExecuteMiningRound_StaleMidSearch(t *testing.T) {
	oracle := testutil.NewMockOracle(testutil.NewTestBlockInfo(1))
	searcher := &testutil.MockSearcher{}
	searcher.SearchFn = func(ctx context.Context, _ testutil.SearchCall) (uint64, bool, error) {
		for searcher.StopCalls.Load() == 0 {
			select {
			case <-ctx.Done():
				return 0, false, ctx.Err()
			case <-time.After(time.Millisecond):
			}
		}
		return 0, false, nil
	}
	opts := testutil.NewTestMinerOptions()
	f := newFixture(t, oracle, searcher, opts)

	go func() {
		time.Sleep(30 * time.Millisecond)
		oracle.SetCommitment(testutil.NewTestBlockInfo(2))
	}()

	result, err := f.orch.ExecuteMiningRound(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.RoundOutcomeStale, result.Outcome)
	assert.Empty(t, oracle.Submitted(), "过期轮次不应提交")
	assert.Equal(t, int32(1), searcher.StopCalls.Load())
	assert.Len(t, f.eventsOf(types.EventTypeRoundStale), 1)
}

func TestExecuteMiningRound_StaleRightAfterRefresh(t *testing.T) {
	oracle := testutil.NewMockOracle(testutil.NewTestBlockInfo(1))
	oracle.SubmitFn = func(uint64, *types.Submission) (bool, error) {
		oracle.SetCommitment(testutil.NewTestBlockInfo(2))
		return false, nil
	}
	// 刷新拿到 salt=2 后链立即推进到 salt=3，续搜开始前就已过期
	oracle.AfterFetch = func(n int) {
		if n == 2 {
			oracle.SetCommitment(testutil.NewTestBlockInfo(3))
		}
	}

	searcher := &testutil.MockSearcher{}
	searcher.SearchFn = func(ctx context.Context, call testutil.SearchCall) (uint64, bool, error) {
		if !call.Resume {
			return 100, true, nil
		}
		for !searcher.Stopped() {
			select {
			case <-ctx.Done():
				return 0, false, ctx.Err()
			case <-time.After(time.Millisecond):
			}
		}
		return 0, false, nil
	}
	f := newFixture(t, oracle, searcher, testutil.NewTestMinerOptions())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := f.orch.ExecuteMiningRound(ctx)
	require.NoError(t, err, "续搜期间的停止请求不应丢失")
	assert.Equal(t, types.RoundOutcomeStale, result.Outcome)
	assert.Equal(t, uint64(2), result.BlockInfo.Salt)
	assert.Equal(t, []uint64{100}, oracle.Submitted())
	assert.GreaterOrEqual(t, searcher.StopCalls.Load(), int32(1))
	assert.Len(t, f.eventsOf(types.EventTypeRoundStale), 1)
}

func TestExecuteMiningRound_ContextCancelled(t *testing.T) {
	oracle := testutil.NewMockOracle(testutil.NewTestBlockInfo(1))
	ctx, cancel := context.WithCancel(context.Background())
	searcher := &testutil.MockSearcher{
		SearchFn: func(context.Context, testutil.SearchCall) (uint64, bool, error) {
			cancel()
			return 0, false, nil
		},
	}
	f := newFixture(t, oracle, searcher, quietOptions())

	_, err := f.orch.ExecuteMiningRound(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecuteMiningRound_TargetAdjustmentReported(t *testing.T) {
	info := testutil.NewTestBlockInfo(1)
	info.Target = new(big.Int).Lsh(big.NewInt(1), 200)
	oracle := testutil.NewMockOracle(info)
	f := newFixture(t, oracle, &testutil.MockSearcher{}, quietOptions())
	ctx := context.Background()

	_, err := f.orch.ExecuteMiningRound(ctx)
	require.NoError(t, err)
	assert.Empty(t, f.eventsOf(types.EventTypeTargetAdjusted), "首轮没有可比较的目标值")

	easier := testutil.NewTestBlockInfo(2)
	easier.Target = new(big.Int).Lsh(big.NewInt(3), 199) // 1.5 倍
	oracle.SetCommitment(easier)
	_, err = f.orch.ExecuteMiningRound(ctx)
	require.NoError(t, err)

	adjusted := f.eventsOf(types.EventTypeTargetAdjusted)
	require.Len(t, adjusted, 1)
	assert.Equal(t, "easier", adjusted[0].Payload["direction"])
	assert.Equal(t, int64(50), adjusted[0].Payload["percent"])
}

func TestExecuteMiningRound_RandomPayloadPerRound(t *testing.T) {
	oracle := testutil.NewMockOracle(testutil.NewTestBlockInfo(1))
	var payloads [][]byte
	oracle.SubmitFn = func(_ uint64, sub *types.Submission) (bool, error) {
		payloads = append(payloads, sub.Payload)
		return true, nil
	}
	searcher := &testutil.MockSearcher{}
	f := newFixture(t, oracle, searcher, quietOptions())

	for i := 0; i < 2; i++ {
		_, err := f.orch.ExecuteMiningRound(context.Background())
		require.NoError(t, err)
	}
	require.Len(t, payloads, 2)
	assert.Len(t, payloads[0], 16)
	assert.NotEqual(t, payloads[0], payloads[1])
	calls := searcher.Calls()
	assert.NotEqual(t, calls[0].Prefix, calls[1].Prefix)
}

func TestExecuteMiningRound_FixedPayloadAndMeta(t *testing.T) {
	opts := quietOptions()
	opts.MetaHex = "0xaabb"
	opts.PayloadHex = "010203"
	oracle := testutil.NewMockOracle(testutil.NewTestBlockInfo(9))
	var got *types.Submission
	oracle.SubmitFn = func(_ uint64, sub *types.Submission) (bool, error) {
		got = sub
		return true, nil
	}
	searcher := &testutil.MockSearcher{}
	f := newFixture(t, oracle, searcher, opts)

	_, err := f.orch.ExecuteMiningRound(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []byte{0xaa, 0xbb}, got.Meta)
	assert.Equal(t, []byte{1, 2, 3}, got.Payload)

	want, err := pow.BlockPreimage(hash.NewUncachedHashService(), testutil.NewTestBlockInfo(9), []byte{0xaa, 0xbb}, []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, want, searcher.Calls()[0].Prefix)
}

func TestExecuteMiningRound_BusModePrefix(t *testing.T) {
	opts := quietOptions()
	opts.Mode = types.CommitmentModeBus
	info := testutil.NewTestBlockInfo(1)
	info.Target = nil
	info.Difficulty = 1
	info.Signer = make([]byte, 32)
	info.Signer[31] = 0x42
	oracle := testutil.NewMockOracle(info)
	searcher := &testutil.MockSearcher{}
	f := newFixture(t, oracle, searcher, opts)

	_, err := f.orch.ExecuteMiningRound(context.Background())
	require.NoError(t, err)

	call := searcher.Calls()[0]
	require.Len(t, call.Prefix, 64)
	assert.Equal(t, info.PreviousHash, call.Prefix[:32])
	assert.Equal(t, info.Signer, call.Prefix[32:])
	want, _ := pow.TargetFromDifficulty(1)
	assert.Equal(t, 0, want.Cmp(call.Target))
}

// ==================== 与真实搜索器、模拟链集成 ====================

func newRealFinder(t *testing.T) *pow.NonceFinder {
	t.Helper()
	finder, err := pow.NewNonceFinder(pow.Config{Workers: 2, BatchSize: 1000, InitialNonceBits: 20}, corelog.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = finder.Close() })
	return finder
}

func TestExecuteMiningRound_SimulatedChainAccepts(t *testing.T) {
	sim, err := memory.NewSimulatedChain(memory.Options{Target: new(big.Int).Rsh(pow.MaxTarget(), 10)}, hash.NewUncachedHashService(), nil)
	require.NoError(t, err)
	f := newFixture(t, sim, newRealFinder(t), testutil.NewTestMinerOptions())

	result, err := f.orch.ExecuteMiningRound(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.RoundOutcomeAccepted, result.Outcome)
	assert.Equal(t, uint64(1), sim.Height())

	entries, err := f.journal.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, result.Nonce, entries[0].Nonce)
}

func TestExecuteMiningRound_SimulatedChainStale(t *testing.T) {
	sim, err := memory.NewSimulatedChain(memory.Options{Target: big.NewInt(0)}, hash.NewUncachedHashService(), nil)
	require.NoError(t, err)
	f := newFixture(t, sim, newRealFinder(t), testutil.NewTestMinerOptions())

	go func() {
		time.Sleep(50 * time.Millisecond)
		sim.Advance()
	}()

	done := make(chan struct{})
	var result *types.RoundResult
	go func() {
		defer close(done)
		result, err = f.orch.ExecuteMiningRound(context.Background())
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("链状态变化后搜索未结束")
	}

	require.NoError(t, err)
	assert.Equal(t, types.RoundOutcomeStale, result.Outcome)
	accepted, rejected := sim.Counters()
	assert.Zero(t, accepted)
	assert.Zero(t, rejected)
}

func TestNewMiningOrchestratorService_InvalidHex(t *testing.T) {
	opts := quietOptions()
	opts.MetaHex = "zz"
	_, err := NewMiningOrchestratorService(Dependencies{
		Logger:  corelog.NewNop(),
		Oracle:  testutil.NewMockOracle(nil),
		Options: opts,
	})
	assert.Error(t, err)
}
