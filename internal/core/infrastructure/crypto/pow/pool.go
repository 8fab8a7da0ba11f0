package pow

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/holiman/uint256"
	"github.com/weisyn/metaminer/pkg/types"
	"golang.org/x/sync/errgroup"
)

// batchJob 派发给单个工作者的一段连续区间
type batchJob struct {
	round  uint64
	prefix []byte
	target *uint256.Int
	start  uint64
	size   uint64
}

// batchResult 工作者返回的批结果
type batchResult struct {
	round  uint64
	worker int
	nonce  uint64
	found  bool
	err    error
}

// workerPool 常驻工作者 goroutine 池
//
// 每个工作者一个容量为 1 的任务通道，所有结果汇入同一通道。
// 调用方保证每个工作者同时最多一个未回报的任务，因此任务与结果通道都不会阻塞。
// 任一工作者故障（panic）会取消整个池，之后只能重建。
type workerPool struct {
	workers []*HashWorker
	jobs    []chan batchJob
	results chan batchResult

	group  *errgroup.Group
	cancel context.CancelFunc

	inflight int // 已派发未回报的任务数，仅由持有搜索锁的一方访问
	faulted  atomic.Bool
}

func newWorkerPool(size int, newHasher HasherFactory) *workerPool {
	ctx, cancel := context.WithCancel(context.Background())
	group, gctx := errgroup.WithContext(ctx)

	p := &workerPool{
		workers: make([]*HashWorker, size),
		jobs:    make([]chan batchJob, size),
		results: make(chan batchResult, size),
		group:   group,
		cancel:  cancel,
	}
	for i := 0; i < size; i++ {
		p.workers[i] = NewHashWorker(newHasher)
		p.jobs[i] = make(chan batchJob, 1)
		id := i
		group.Go(func() error {
			return p.runWorker(gctx, id)
		})
	}
	return p
}

func (p *workerPool) runWorker(ctx context.Context, id int) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case job := <-p.jobs[id]:
			res := p.execute(id, job)
			if res.err != nil {
				p.faulted.Store(true)
			}
			select {
			case p.results <- res:
			case <-ctx.Done():
				return nil
			}
			if res.err != nil {
				return res.err
			}
		}
	}
}

// execute 运行一批；panic 转换为 WorkerFaultError
func (p *workerPool) execute(id int, job batchJob) (res batchResult) {
	res = batchResult{round: job.round, worker: id}
	defer func() {
		if r := recover(); r != nil {
			res.err = &types.WorkerFaultError{WorkerID: id, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	res.nonce, res.found = p.workers[id].TryBatch(job.prefix, job.target, job.start, job.size)
	return res
}

// size 工作者数量
func (p *workerPool) size() int {
	return len(p.workers)
}

// dispatch 派发任务给指定工作者
func (p *workerPool) dispatch(id int, job batchJob) {
	p.jobs[id] <- job
	p.inflight++
}

// receive 等待下一个结果
func (p *workerPool) receive(ctx context.Context) (batchResult, error) {
	select {
	case res := <-p.results:
		p.inflight--
		return res, nil
	case <-ctx.Done():
		return batchResult{}, ctx.Err()
	}
}

// drain 丢弃上一轮遗留的结果，直到没有在途任务
func (p *workerPool) drain(ctx context.Context) error {
	for p.inflight > 0 {
		res, err := p.receive(ctx)
		if err != nil {
			return err
		}
		if res.err != nil {
			return res.err
		}
	}
	return nil
}

// close 取消所有工作者并等待退出
func (p *workerPool) close() error {
	p.cancel()
	err := p.group.Wait()
	if err != nil && !p.faulted.Load() {
		return err
	}
	return nil
}
