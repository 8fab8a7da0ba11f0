package controller

import (
	"context"
	"fmt"
	"time"

	eventimpl "github.com/weisyn/metaminer/internal/core/infrastructure/event"
	"github.com/weisyn/metaminer/pkg/types"
)

// startMining 抢占 Idle/Error → Active 并启动挖矿循环
//
// 循环使用脱离调用方取消的上下文，调用方（如 HTTP 请求）结束不会停止挖矿。
func (s *MinerControllerService) startMining(ctx context.Context, once bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loopDone != nil {
		return fmt.Errorf("挖矿已在运行")
	}
	from := s.stateManagerService.GetMinerState()
	if from == types.MinerStateActive || !s.stateManagerService.CompareAndSetMinerState(from, types.MinerStateActive) {
		return fmt.Errorf("当前状态 %s 不允许启动挖矿", from)
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	s.miningLoopCancel = cancel
	s.loopDone = done
	s.isRunning.Store(true)

	go s.runMiningLoop(loopCtx, done, once)

	if once {
		s.logger.Info("单次挖矿已启动")
	} else {
		s.logger.Info("挖矿服务启动成功")
	}
	s.publishStateChanged(from, types.MinerStateActive)
	return nil
}

// runMiningLoop 挖矿主循环，退出时自行完成状态收尾
func (s *MinerControllerService) runMiningLoop(ctx context.Context, done chan struct{}, once bool) {
	exit := types.MinerStateIdle
	defer func() {
		s.finishLoop(done, exit)
		close(done)
	}()

	for {
		if ctx.Err() != nil {
			return
		}

		result, err := s.orchestratorService.ExecuteMiningRound(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if !s.handleRoundError(err) {
				exit = types.MinerStateError
				return
			}
			if !s.waitWithCancellation(ctx, s.minerConfig.RetryDelay) {
				return
			}
			continue
		}

		s.recordRound(result)
		if once && result.Outcome == types.RoundOutcomeAccepted {
			s.logger.Info("单次挖矿完成，自动停止")
			return
		}
		if !s.waitWithCancellation(ctx, s.minerConfig.RetryDelay) {
			return
		}
	}
}

// handleRoundError 处理轮次错误，返回 false 表示循环无法继续
func (s *MinerControllerService) handleRoundError(err error) bool {
	if wf, ok := types.IsWorkerFaultError(err); ok {
		s.logger.Errorf("工作者故障，重建工作者池: %v", err)
		s.publish(types.EventTypeWorkerFault, map[string]interface{}{
			"worker": wf.WorkerID,
			"error":  err.Error(),
		})
		if rerr := s.searcher.RestartPool(); rerr != nil {
			s.logger.Errorf("重建工作者池失败，停止挖矿: %v", rerr)
			return false
		}
		return true
	}
	if _, ok := types.IsInvalidInputError(err); ok {
		s.logger.Errorf("挖矿轮次输入非法: %v", err)
		return true
	}
	s.logger.Warnf("挖矿轮次失败，%s 后重试: %v", s.minerConfig.RetryDelay, err)
	return true
}

func (s *MinerControllerService) recordRound(result *types.RoundResult) {
	if result == nil {
		return
	}
	switch result.Outcome {
	case types.RoundOutcomeAccepted:
		s.roundsCompleted.Add(1)
		s.lastNonce.Store(result.Nonce)
		s.lastFoundAt.Store(time.Now().UnixNano())
	case types.RoundOutcomeStale:
		s.staleRounds.Add(1)
	}
}

// finishLoop 清理循环句柄并转换到最终状态
func (s *MinerControllerService) finishLoop(done chan struct{}, exit types.MinerState) {
	s.mu.Lock()
	if s.loopDone != done {
		s.mu.Unlock()
		return
	}
	s.miningLoopCancel()
	s.miningLoopCancel = nil
	s.loopDone = nil
	s.isRunning.Store(false)
	s.mu.Unlock()

	if exit == types.MinerStateError {
		s.setState(types.MinerStateError)
		return
	}
	s.setState(types.MinerStateStopping)
	s.setState(types.MinerStateIdle)
}

// waitWithCancellation 带取消的等待，返回 false 表示已取消
func (s *MinerControllerService) waitWithCancellation(ctx context.Context, duration time.Duration) bool {
	if duration <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (s *MinerControllerService) setState(to types.MinerState) {
	from := s.stateManagerService.GetMinerState()
	if err := s.stateManagerService.SetMinerState(to); err != nil {
		s.logger.Warnf("设置矿工状态失败: %v", err)
		return
	}
	if from != to {
		s.publishStateChanged(from, to)
	}
}

func (s *MinerControllerService) publishStateChanged(from, to types.MinerState) {
	s.publish(types.EventTypeMinerStateChanged, map[string]interface{}{
		"from": from.String(),
		"to":   to.String(),
	})
}

func (s *MinerControllerService) publish(eventType types.EventType, payload map[string]interface{}) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.PublishEvent(eventimpl.NewMinerEvent(eventType, payload))
}
