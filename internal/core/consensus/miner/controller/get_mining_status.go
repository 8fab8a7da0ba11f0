package controller

import (
	"context"
	"time"

	"github.com/weisyn/metaminer/pkg/types"
)

func (s *MinerControllerService) getMiningStatus(_ context.Context) (*types.MinerStatus, error) {
	status := &types.MinerStatus{
		IsRunning:       s.isRunning.Load(),
		State:           s.stateManagerService.GetMinerState().String(),
		Mode:            s.minerConfig.Mode,
		RoundsCompleted: s.roundsCompleted.Load(),
		StaleRounds:     s.staleRounds.Load(),
		LastNonce:       s.lastNonce.Load(),
		Search:          s.searcher.Stats(),
	}
	if ts := s.lastFoundAt.Load(); ts != 0 {
		status.LastFoundAt = time.Unix(0, ts)
	}
	return status, nil
}
