package state_manager

import "github.com/weisyn/metaminer/pkg/types"

// ValidateStateTransition 校验状态转换是否合法（相同状态视为幂等，允许）
func (s *MinerStateService) ValidateStateTransition(from, to types.MinerState) bool {
	if from == to {
		return true
	}
	if to == types.MinerStateError {
		return true
	}

	switch from {
	case types.MinerStateIdle:
		return to == types.MinerStateActive
	case types.MinerStateActive:
		return to == types.MinerStateStopping
	case types.MinerStateStopping:
		return to == types.MinerStateIdle
	case types.MinerStateError:
		return to == types.MinerStateIdle || to == types.MinerStateActive
	default:
		return false
	}
}
