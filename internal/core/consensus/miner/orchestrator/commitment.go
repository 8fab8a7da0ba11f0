package orchestrator

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/weisyn/metaminer/internal/core/infrastructure/crypto/pow"
	"github.com/weisyn/metaminer/pkg/types"
)

// buildCommitment 按模式构造哈希前缀并解析目标值
func (s *MiningOrchestratorService) buildCommitment(info *types.BlockInfo, payload []byte) ([]byte, *big.Int, error) {
	prefix, err := pow.BuildPrefix(s.hasher, s.options.Mode, info, s.meta, payload)
	if err != nil {
		return nil, nil, err
	}
	target, err := pow.ResolveTarget(info)
	if err != nil {
		return nil, nil, err
	}
	return prefix, target, nil
}

// roundPayload 配置了固定负载则使用之，否则每轮生成随机负载
func (s *MiningOrchestratorService) roundPayload() ([]byte, error) {
	if s.options.Mode == types.CommitmentModeBus {
		return nil, nil
	}
	if s.fixedPayload != nil {
		return s.fixedPayload, nil
	}
	payload := make([]byte, s.options.PayloadSize)
	if _, err := rand.Read(payload); err != nil {
		return nil, fmt.Errorf("生成随机负载失败: %w", err)
	}
	return payload, nil
}

// reportTargetAdjustment 目标值与上一次不同时记录方向与幅度
func (s *MiningOrchestratorService) reportTargetAdjustment(info *types.BlockInfo) {
	target, err := pow.ResolveTarget(info)
	if err != nil {
		return
	}

	s.mu.Lock()
	previous := s.lastTarget
	s.lastTarget = new(big.Int).Set(target)
	s.mu.Unlock()

	if previous == nil {
		return
	}
	adj := pow.CompareTargets(previous, target)
	if !adj.Changed {
		return
	}

	direction := "harder"
	if adj.Easier {
		direction = "easier"
	}
	s.logger.Infof("目标值调整: %d%% %s", adj.Percent, direction)
	s.publish(types.EventTypeTargetAdjusted, map[string]interface{}{
		"direction": direction,
		"percent":   adj.Percent,
		"target":    fmt.Sprintf("%#x", target),
	})
}
