// Package event 定义矿工事件总线接口
//
// 事件总线用于把矿工内部状态（轮次开始、找到 nonce、提交被拒、轮次过期、目标调整）
// 广播给 API 层等订阅者；发布方不感知订阅方。
package event

import "github.com/weisyn/metaminer/pkg/types"

// EventType 事件类型
type EventType = types.EventType

// Event 事件接口
type Event interface {
	Type() EventType
	Data() interface{}
}

// EventBus 事件总线接口
type EventBus interface {
	// Subscribe 同步订阅
	Subscribe(eventType EventType, handler interface{}) error
	// SubscribeAsync 异步订阅；transactional 为 true 时同一订阅者串行处理
	SubscribeAsync(eventType EventType, handler interface{}, transactional bool) error
	// SubscribeOnce 只触发一次的订阅
	SubscribeOnce(eventType EventType, handler interface{}) error
	// Publish 发布任意参数
	Publish(eventType EventType, args ...interface{})
	// PublishEvent 发布事件对象，订阅者收到 Event
	PublishEvent(event Event)
	// Unsubscribe 取消订阅
	Unsubscribe(eventType EventType, handler interface{}) error
	// WaitAsync 等待所有异步处理完成
	WaitAsync()
	// HasCallback 是否存在订阅者
	HasCallback(eventType EventType) bool
}
