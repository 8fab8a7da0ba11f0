// Package pow 提供工作量证明的随机 nonce 搜索
//
// 🎯 **组件**
// - codec.go: nonce 与目标值的定长编解码、小端自增
// - worker.go: HashWorker，单批次哈希尝试
// - pool.go: 常驻工作者池（errgroup 管理生命周期与故障传播）
// - finder.go: NonceFinder，分配不重叠区间、竞速取首个结果、协作式取消、算力统计
//
// 🔄 **搜索流程**
//  1. 重置停止标志，随机选取起点 initial_nonce，记录开始时间
//  2. 每轮为 N 个工作者依次分配 [next, next+batch) 区间，next 单调递增
//  3. 命中后等待区间更靠前的工作者回报，取本轮最小命中，重新计算校验后返回；
//     全部落空则记录算力并进入下一轮
//
// 第 3 步不是"首个回报即胜出"：同一轮内结果与工作者完成先后无关，
// 相同起点总是得到相同 nonce。代价是命中后最多再等一批哈希。
//  4. 停止请求在轮次边界生效，返回未找到
package pow

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/weisyn/metaminer/pkg/interfaces/consensus"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/metaminer/pkg/types"
)

var (
	errPoolFaulted  = errors.New("工作者池已故障，需重建")
	errFinderClosed = errors.New("搜索器已关闭")
)

// Config 搜索参数
type Config struct {
	Workers          int
	BatchSize        uint64
	InitialNonceBits int // 随机起点取自 [0, 2^bits)，0 表示从 0 开始
}

// FinderOption 可选配置
type FinderOption func(*NonceFinder)

// WithHasher 替换哈希实现（默认 Keccak-256）
func WithHasher(newHasher HasherFactory) FinderOption {
	return func(f *NonceFinder) { f.newHasher = newHasher }
}

// WithStartSampler 替换随机起点采样
func WithStartSampler(sample func() uint64) FinderOption {
	return func(f *NonceFinder) { f.sampleStart = sample }
}

// NonceFinder 随机 nonce 搜索协调者
//
// 持有固定大小的工作者池，同一时间只运行一次搜索（searchMu 串行化）。
// 工作者从不写共享状态：next_range_start 与停止标志只由协调者和 RequestStop 访问。
type NonceFinder struct {
	cfg       Config
	logger    log.Logger
	newHasher HasherFactory
	verifier  *HashWorker

	sampleStart func() uint64
	onAssign    func(worker int, start uint64) // 测试钩子

	searchMu sync.Mutex
	pool     *workerPool
	round    uint64
	closed   bool // 受 searchMu 保护

	stopRequested atomic.Bool
	phase         atomic.Int32

	rounds      atomic.Uint64
	totalHashes atomic.Uint64
	lastRate    atomic.Uint64 // math.Float64bits
}

// NewNonceFinder 创建搜索器并启动工作者池
func NewNonceFinder(cfg Config, logger log.Logger, opts ...FinderOption) (*NonceFinder, error) {
	if logger == nil {
		return nil, fmt.Errorf("日志记录器不能为空")
	}
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("工作者数量必须大于0: %d", cfg.Workers)
	}
	if cfg.BatchSize == 0 {
		return nil, fmt.Errorf("批大小必须大于0")
	}
	if cfg.InitialNonceBits < 0 || cfg.InitialNonceBits > 63 {
		return nil, fmt.Errorf("起点位数超出范围: %d", cfg.InitialNonceBits)
	}

	f := &NonceFinder{
		cfg:    cfg,
		logger: logger.With("component", "nonce_finder"),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.sampleStart == nil {
		bits := cfg.InitialNonceBits
		f.sampleStart = func() uint64 {
			if bits == 0 {
				return 0
			}
			return rand.Uint64N(uint64(1) << bits)
		}
	}
	f.verifier = NewHashWorker(f.newHasher)
	f.pool = newWorkerPool(cfg.Workers, f.newHasher)
	return f, nil
}

// FindValidNonce 从随机起点搜索满足 target 的 nonce
//
// 返回 (nonce, true, nil) 表示找到；(0, false, nil) 表示被 RequestStop 取消；
// ctx 取消时返回 ctx.Err()；工作者故障返回 *types.WorkerFaultError。
//
// onStarted 在停止标志重置之后、首轮分配之前同步调用，此后的 RequestStop 对本次搜索生效。
func (f *NonceFinder) FindValidNonce(ctx context.Context, prefix []byte, target *big.Int, onStarted ...func()) (uint64, bool, error) {
	return f.search(ctx, prefix, target, f.sampleStart, onStarted)
}

// ResumeFrom 从 from 开始（含）继续搜索，用于提交被拒后的续搜
func (f *NonceFinder) ResumeFrom(ctx context.Context, prefix []byte, target *big.Int, from uint64, onStarted ...func()) (uint64, bool, error) {
	// 工作者先自增再哈希，区间起点向前挪一位
	return f.search(ctx, prefix, target, func() uint64 { return from - 1 }, onStarted)
}

// RequestStop 请求停止当前搜索；幂等，在下一个轮次边界生效
func (f *NonceFinder) RequestStop() {
	f.stopRequested.Store(true)
}

// Phase 当前搜索阶段
func (f *NonceFinder) Phase() types.SearchPhase {
	return types.SearchPhase(f.phase.Load())
}

// HashRate 最近一轮记录的算力（H/s）
func (f *NonceFinder) HashRate() float64 {
	return math.Float64frombits(f.lastRate.Load())
}

// Stats 统计快照
func (f *NonceFinder) Stats() types.SearchStats {
	return types.SearchStats{
		Rounds:       f.rounds.Load(),
		TotalHashes:  f.totalHashes.Load(),
		LastHashRate: f.HashRate(),
		Phase:        f.Phase().String(),
	}
}

// RestartPool 关闭当前工作者池并新建；等待进行中的搜索结束
//
// 旧池关闭出错时仍换上新池，但把错误返回给调用方；搜索器已 Close 时不重建。
func (f *NonceFinder) RestartPool() error {
	f.searchMu.Lock()
	defer f.searchMu.Unlock()

	if f.closed {
		return errFinderClosed
	}
	closeErr := f.pool.close()
	f.pool = newWorkerPool(f.cfg.Workers, f.newHasher)
	f.phase.Store(int32(types.SearchPhaseIdle))
	if closeErr != nil {
		f.logger.Warnf("关闭旧工作者池出错: %v", closeErr)
		return fmt.Errorf("关闭旧工作者池: %w", closeErr)
	}
	f.logger.Infof("工作者池已重建，工作者数: %d", f.cfg.Workers)
	return nil
}

// Close 停止所有工作者，可重复调用
func (f *NonceFinder) Close() error {
	f.RequestStop()
	f.searchMu.Lock()
	defer f.searchMu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	return f.pool.close()
}

func (f *NonceFinder) search(ctx context.Context, prefix []byte, target *big.Int, initial func() uint64, onStarted []func()) (uint64, bool, error) {
	if len(prefix) == 0 {
		return 0, false, types.NewInvalidInput("prefix", "前缀为空")
	}
	t, err := ParseTarget(target)
	if err != nil {
		return 0, false, err
	}

	f.searchMu.Lock()
	defer f.searchMu.Unlock()

	if f.closed {
		return 0, false, errFinderClosed
	}
	pool := f.pool
	if pool.faulted.Load() {
		return 0, false, f.fault(&types.WorkerFaultError{WorkerID: -1, Err: errPoolFaulted})
	}

	f.stopRequested.Store(false)
	f.phase.Store(int32(types.SearchPhaseSearching))
	for _, fn := range onStarted {
		fn()
	}

	// 上一次搜索提前返回时遗留的落败批次
	if err := pool.drain(ctx); err != nil {
		return f.finishWithError(err)
	}

	initialNonce := initial()
	next := initialNonce
	startedAt := time.Now()
	// 前缀在搜索期间不可变，工作者共享只读副本
	prefix = append([]byte(nil), prefix...)

	f.logger.Debugf("开始搜索，起点: %d，工作者: %d，批大小: %d", initialNonce, pool.size(), f.cfg.BatchSize)

	for {
		f.round++
		round := f.round
		for i := 0; i < pool.size(); i++ {
			if f.onAssign != nil {
				f.onAssign(i, next)
			}
			pool.dispatch(i, batchJob{round: round, prefix: prefix, target: t, start: next, size: f.cfg.BatchSize})
			next += f.cfg.BatchSize
		}

		nonce, found, err := f.collect(ctx, pool, round)
		if err != nil {
			return f.finishWithError(err)
		}
		if found {
			f.recordRound(initialNonce, next, startedAt)
			if !f.verifier.Verify(prefix, nonce, target) {
				pool.faulted.Store(true)
				return 0, false, f.fault(&types.WorkerFaultError{
					WorkerID: -1,
					Err:      fmt.Errorf("nonce %d 未通过复核", nonce),
				})
			}
			f.phase.Store(int32(types.SearchPhaseFound))
			powRoundsTotal.WithLabelValues("found").Inc()
			return nonce, true, nil
		}

		rate := f.recordRound(initialNonce, next, startedAt)
		f.logger.Infof("当前算力: %.0f H/s", rate)

		if f.stopRequested.Load() {
			f.phase.Store(int32(types.SearchPhaseCancelled))
			powRoundsTotal.WithLabelValues("cancelled").Inc()
			f.logger.Info("收到停止请求，放弃当前搜索")
			return 0, false, nil
		}
		if err := ctx.Err(); err != nil {
			return f.finishWithError(err)
		}
	}
}

// collect 收集一轮结果
//
// 命中后只需等待区间更靠前的工作者回报，返回本轮最小的满足条件的 nonce；
// 其余在途批次留给下一次搜索开始时丢弃。
func (f *NonceFinder) collect(ctx context.Context, pool *workerPool, round uint64) (uint64, bool, error) {
	n := pool.size()
	reported := make([]bool, n)
	best := -1
	var bestNonce uint64

	for received := 0; received < n; {
		res, err := pool.receive(ctx)
		if err != nil {
			return 0, false, err
		}
		if res.round != round {
			continue
		}
		if res.err != nil {
			return 0, false, res.err
		}
		received++
		reported[res.worker] = true
		if res.found && (best < 0 || res.worker < best) {
			best, bestNonce = res.worker, res.nonce
		}

		if best >= 0 && allReported(reported[:best]) {
			return bestNonce, true, nil
		}
	}
	return 0, false, nil
}

func allReported(reported []bool) bool {
	for _, r := range reported {
		if !r {
			return false
		}
	}
	return true
}

// recordRound 更新统计并返回 (next - initial) / elapsed
func (f *NonceFinder) recordRound(initial, next uint64, startedAt time.Time) float64 {
	batchHashes := uint64(len(f.pool.workers)) * f.cfg.BatchSize
	f.rounds.Add(1)
	f.totalHashes.Add(batchHashes)
	powHashesTotal.Add(float64(batchHashes))

	elapsed := time.Since(startedAt).Seconds()
	if elapsed <= 0 {
		return f.HashRate()
	}
	rate := float64(next-initial) / elapsed
	f.lastRate.Store(math.Float64bits(rate))
	powHashRate.Set(rate)
	return rate
}

func (f *NonceFinder) finishWithError(err error) (uint64, bool, error) {
	var faultErr *types.WorkerFaultError
	if errors.As(err, &faultErr) {
		f.pool.faulted.Store(true)
		return 0, false, f.fault(faultErr)
	}
	f.phase.Store(int32(types.SearchPhaseCancelled))
	powRoundsTotal.WithLabelValues("aborted").Inc()
	return 0, false, err
}

func (f *NonceFinder) fault(err *types.WorkerFaultError) error {
	f.phase.Store(int32(types.SearchPhaseFaulted))
	powWorkerFaultsTotal.Inc()
	f.logger.Errorf("工作者故障: %v", err)
	return err
}

var _ consensus.NonceSearcher = (*NonceFinder)(nil)
