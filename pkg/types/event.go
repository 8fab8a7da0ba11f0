// Package types provides event type definitions.
package types

import "time"

// EventType 事件类型
type EventType string

const (
	EventTypeMinerStateChanged  EventType = "miner.state_changed"
	EventTypeRoundStarted       EventType = "miner.round_started"
	EventTypeNonceFound         EventType = "miner.nonce_found"
	EventTypeSubmissionRejected EventType = "miner.submission_rejected"
	EventTypeRoundStale         EventType = "miner.round_stale"
	EventTypeTargetAdjusted     EventType = "miner.target_adjusted"
	EventTypeWorkerFault        EventType = "miner.worker_fault"
)

// MinerEvent 矿工事件
type MinerEvent struct {
	ID        string                 `json:"id"`
	EventType EventType              `json:"event_type"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// Type 实现 pkg/interfaces/infrastructure/event.Event 接口
func (e *MinerEvent) Type() EventType {
	return e.EventType
}

// Data 实现 pkg/interfaces/infrastructure/event.Event 接口
func (e *MinerEvent) Data() interface{} {
	return e.Payload
}
