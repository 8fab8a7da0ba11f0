package controller

import (
	"context"
	"fmt"

	"github.com/weisyn/metaminer/pkg/types"
)

// stopMining 请求停止并等待挖矿循环退出
//
// 等待上限为 stop_timeout 与 ctx 中较早者；搜索在下一个批次边界观察到停止请求，
// 状态收尾由循环退出时完成。
func (s *MinerControllerService) stopMining(ctx context.Context) error {
	s.mu.Lock()
	cancel, done := s.miningLoopCancel, s.loopDone
	s.mu.Unlock()

	if done == nil {
		s.logger.Debug("挖矿服务已处于停止状态")
		return nil
	}

	s.logger.Info("开始停止挖矿服务")
	s.setState(types.MinerStateStopping)
	cancel()
	s.searcher.RequestStop()

	waitCtx, waitCancel := context.WithTimeout(ctx, s.minerConfig.StopTimeout)
	defer waitCancel()
	select {
	case <-done:
	case <-waitCtx.Done():
		// 循环退出时仍会自行收尾
		return fmt.Errorf("等待挖矿循环退出超时: %w", waitCtx.Err())
	}
	s.logger.Info("挖矿服务停止成功")
	return nil
}
