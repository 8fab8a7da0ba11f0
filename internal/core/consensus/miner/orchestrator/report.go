package orchestrator

import (
	"context"

	eventimpl "github.com/weisyn/metaminer/internal/core/infrastructure/event"
	"github.com/weisyn/metaminer/pkg/types"
)

func (s *MiningOrchestratorService) publish(eventType types.EventType, payload map[string]interface{}) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.PublishEvent(eventimpl.NewMinerEvent(eventType, payload))
}

// recordJournal 写入 journal；失败只记录日志，不影响挖矿
func (s *MiningOrchestratorService) recordJournal(ctx context.Context, entry *types.JournalEntry) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(ctx, entry); err != nil {
		s.logger.Warnf("写入 journal 失败: %v", err)
	}
}
