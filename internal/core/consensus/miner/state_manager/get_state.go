package state_manager

import "github.com/weisyn/metaminer/pkg/types"

// GetMinerState 获取当前矿工状态
func (s *MinerStateService) GetMinerState() types.MinerState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentState
}
