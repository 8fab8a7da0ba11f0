package state_manager

import (
	"fmt"
	"time"

	"github.com/weisyn/metaminer/pkg/types"
)

// SetMinerState 校验后设置新状态
//
// 非法转换返回错误且状态保持不变。
func (s *MinerStateService) SetMinerState(newState types.MinerState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.currentState
	if !s.ValidateStateTransition(previous, newState) {
		s.logger.Warnf("矿工状态转换失败: %s -> %s", previous, newState)
		return fmt.Errorf("invalid state transition: cannot transition from %s to %s", previous, newState)
	}
	if previous == newState {
		return nil
	}

	s.currentState = newState
	s.lastChanged = time.Now()
	s.logger.Infof("矿工状态转换成功: %s -> %s", previous, newState)
	return nil
}

// CompareAndSetMinerState 仅当当前状态为 expected 时转换，返回是否成功
//
// 用于控制器抢占启动，避免两次 StartMining 同时通过检查。
func (s *MinerStateService) CompareAndSetMinerState(expected, newState types.MinerState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentState != expected || !s.ValidateStateTransition(expected, newState) {
		return false
	}
	s.currentState = newState
	s.lastChanged = time.Now()
	s.logger.Infof("矿工状态转换成功: %s -> %s", expected, newState)
	return true
}
