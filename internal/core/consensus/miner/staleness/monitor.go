// Package staleness 在搜索期间轮询链状态，状态变化时请求停止搜索
//
// 📋 **行为**
//   - 每个间隔调用一次 Oracle.CommitmentChanged（单次调用超时等于间隔）
//   - 发现变化：标记过期，并对当前基线只调用一次 RequestStop
//   - 预言机出错：记录日志后继续轮询，不因瞬时错误停止搜索
//   - UpdateBaseline 切换到新的基线后重新布防
package staleness

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/weisyn/metaminer/pkg/interfaces/chain"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/metaminer/pkg/types"
)

// Stopper 可被请求停止的搜索器
type Stopper interface {
	RequestStop()
}

// Monitor 过期检测器
type Monitor struct {
	oracle   chain.Oracle
	stopper  Stopper
	interval time.Duration
	logger   log.Logger

	// OnStale 检测到过期时的回调（可选），在 RequestStop 之后调用
	OnStale func(baseline *types.BlockInfo)
}

// DefaultInterval 默认轮询间隔
const DefaultInterval = 3000 * time.Millisecond

// NewMonitor 创建过期检测器，interval<=0 时使用 DefaultInterval
func NewMonitor(oracle chain.Oracle, stopper Stopper, interval time.Duration, logger log.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		oracle:   oracle,
		stopper:  stopper,
		interval: interval,
		logger:   logger,
	}
}

// Watch 一轮搜索的检测任务
type Watch struct {
	m *Monitor

	mu       sync.Mutex
	baseline *types.BlockInfo
	fired    bool

	outdated atomic.Bool
	checks   atomic.Uint64
	cancel   context.CancelFunc
	done     chan struct{}
}

// Watch 以 baseline 为基准开始轮询，直到 Stop 或 ctx 结束
func (m *Monitor) Watch(ctx context.Context, baseline *types.BlockInfo) *Watch {
	watchCtx, cancel := context.WithCancel(ctx)
	w := &Watch{
		m:        m,
		baseline: baseline.Clone(),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go w.run(watchCtx)
	return w
}

// Outdated 当前基线是否已过期
func (w *Watch) Outdated() bool {
	return w.outdated.Load()
}

// Checks 已完成的轮询次数
func (w *Watch) Checks() uint64 {
	return w.checks.Load()
}

// UpdateBaseline 切换基线并清除过期标记
func (w *Watch) UpdateBaseline(info *types.BlockInfo) {
	w.mu.Lock()
	w.baseline = info.Clone()
	w.fired = false
	w.outdated.Store(false)
	w.mu.Unlock()
}

// Stop 停止轮询并等待后台协程退出，可重复调用
func (w *Watch) Stop() {
	w.cancel()
	<-w.done
}

func (w *Watch) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Watch) tick(ctx context.Context) {
	w.mu.Lock()
	baseline, fired := w.baseline, w.fired
	w.mu.Unlock()
	if fired {
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, w.m.interval)
	changed, err := w.m.oracle.CommitmentChanged(checkCtx, baseline)
	cancel()
	w.checks.Add(1)
	if err != nil {
		if ctx.Err() == nil {
			w.m.logger.Warnf("过期检测失败，继续轮询: %v", err)
		}
		return
	}
	if !changed {
		return
	}

	w.mu.Lock()
	// 基线在检测期间被替换，本次结果作废
	if w.baseline != baseline || w.fired {
		w.mu.Unlock()
		return
	}
	w.fired = true
	w.outdated.Store(true)
	w.mu.Unlock()

	staleDetected.Inc()
	w.m.logger.Infof("链状态已变化，停止当前搜索 (salt=%d)", baseline.Salt)
	w.m.stopper.RequestStop()
	if w.m.OnStale != nil {
		w.m.OnStale(baseline)
	}
}
