package orchestrator

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/weisyn/metaminer/pkg/types"
)

// executeMiningRound 一轮完整流程
//
// 错误返回给控制器（WorkerFault 需重建工作者池，其余按固定延迟重试）；
// 过期不是错误，以 RoundOutcomeStale 结束。
func (s *MiningOrchestratorService) executeMiningRound(ctx context.Context) (*types.RoundResult, error) {
	roundID := uuid.NewString()
	startedAt := time.Now()

	info, err := s.oracle.FetchCommitment(ctx)
	if err != nil {
		return nil, fmt.Errorf("抓取出块状态失败: %w", err)
	}
	s.reportTargetAdjustment(info)

	payload, err := s.roundPayload()
	if err != nil {
		return nil, err
	}
	prefix, target, err := s.buildCommitment(info, payload)
	if err != nil {
		return nil, err
	}

	s.logger.Debugf("开始挖矿轮次 %s: salt=%d target=%#x", roundID, info.Salt, target)
	s.publish(types.EventTypeRoundStarted, map[string]interface{}{
		"round_id": roundID,
		"salt":     info.Salt,
		"target":   fmt.Sprintf("%#x", target),
	})

	watch := s.monitor.Watch(ctx, info)
	defer watch.Stop()

	// 基线在搜索重置停止标志之后才布防，此前检测到的变化会在下一次轮询重新触发
	baseline := info
	arm := func() { watch.UpdateBaseline(baseline) }

	nonce, found, err := s.searcher.FindValidNonce(ctx, prefix, target, arm)
	attempts := 0
	for {
		if err != nil {
			return nil, err
		}
		if !found || watch.Outdated() {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return s.finishStale(roundID, info, attempts, startedAt), nil
		}

		attempts++
		accepted, submitErr := s.submit(ctx, nonce, info, payload)
		if submitErr != nil {
			return nil, submitErr
		}
		if accepted {
			return s.finishAccepted(ctx, roundID, nonce, info, target, attempts, startedAt), nil
		}

		// 被拒：状态已在搜索与提交之间推进，刷新后从 nonce+1 续搜
		s.logger.Infof("提交被拒绝 (nonce=%d)，刷新状态后从 %d 继续搜索", nonce, nonce+1)
		s.publish(types.EventTypeSubmissionRejected, map[string]interface{}{
			"round_id": roundID,
			"nonce":    nonce,
			"attempt":  attempts,
		})

		refreshed, err := s.oracle.FetchCommitment(ctx)
		if err != nil {
			return nil, fmt.Errorf("刷新出块状态失败: %w", err)
		}
		s.reportTargetAdjustment(refreshed)
		prefix, target, err = s.buildCommitment(refreshed, payload)
		if err != nil {
			return nil, err
		}
		info = refreshed
		baseline = refreshed

		nonce, found, err = s.searcher.ResumeFrom(ctx, prefix, target, nonce+1, arm)
	}
}

// submit 提交 nonce；预言机不可用按被拒处理
func (s *MiningOrchestratorService) submit(ctx context.Context, nonce uint64, info *types.BlockInfo, payload []byte) (bool, error) {
	sub := &types.Submission{
		Meta:      s.meta,
		Payload:   payload,
		BlockInfo: info,
	}
	accepted, err := s.oracle.Submit(ctx, nonce, sub)
	if err != nil {
		if _, ok := types.IsOracleUnavailableError(err); ok {
			s.logger.Warnf("提交 nonce 失败，按被拒处理: %v", err)
			submissionsTotal.WithLabelValues("unavailable").Inc()
			return false, nil
		}
		return false, fmt.Errorf("提交 nonce 失败: %w", err)
	}
	if accepted {
		submissionsTotal.WithLabelValues("accepted").Inc()
	} else {
		submissionsTotal.WithLabelValues("rejected").Inc()
	}
	return accepted, nil
}

func (s *MiningOrchestratorService) finishAccepted(ctx context.Context, roundID string, nonce uint64, info *types.BlockInfo, target *big.Int, attempts int, startedAt time.Time) *types.RoundResult {
	elapsed := time.Since(startedAt)
	s.logger.Infof("valid nonce found in %d ms (nonce=%d)", elapsed.Milliseconds(), nonce)
	roundsTotal.WithLabelValues(string(types.RoundOutcomeAccepted)).Inc()
	solveSeconds.Observe(elapsed.Seconds())

	foundAt := time.Now()
	s.recordJournal(ctx, &types.JournalEntry{
		RoundID:      roundID,
		Nonce:        nonce,
		PreviousHash: fmt.Sprintf("%#x", info.PreviousHash),
		Salt:         info.Salt,
		Target:       fmt.Sprintf("%#x", target),
		Attempts:     attempts,
		SolveMillis:  elapsed.Milliseconds(),
		FoundAt:      foundAt,
	})
	s.publish(types.EventTypeNonceFound, map[string]interface{}{
		"round_id": roundID,
		"nonce":    nonce,
		"solve_ms": elapsed.Milliseconds(),
		"attempts": attempts,
	})

	return &types.RoundResult{
		RoundID:   roundID,
		Outcome:   types.RoundOutcomeAccepted,
		Nonce:     nonce,
		Attempts:  attempts,
		Elapsed:   elapsed,
		BlockInfo: info,
	}
}

func (s *MiningOrchestratorService) finishStale(roundID string, info *types.BlockInfo, attempts int, startedAt time.Time) *types.RoundResult {
	elapsed := time.Since(startedAt)
	s.logger.Infof("轮次 %s 因链状态变化结束，耗时 %d ms", roundID, elapsed.Milliseconds())
	roundsTotal.WithLabelValues(string(types.RoundOutcomeStale)).Inc()
	s.publish(types.EventTypeRoundStale, map[string]interface{}{
		"round_id": roundID,
		"salt":     info.Salt,
	})
	return &types.RoundResult{
		RoundID:   roundID,
		Outcome:   types.RoundOutcomeStale,
		Attempts:  attempts,
		Elapsed:   elapsed,
		BlockInfo: info,
	}
}
