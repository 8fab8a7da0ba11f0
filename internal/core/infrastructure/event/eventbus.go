// Package event 提供基于 asaskevich/EventBus 的事件总线实现
package event

import (
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	eventconfig "github.com/weisyn/metaminer/internal/config/event"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/metaminer/pkg/types"
)

// EventBus 事件总线
//
// 配置关闭时所有方法为空操作。
type EventBus struct {
	bus    evbus.Bus
	config *eventconfig.Config
}

// New 创建事件总线
func New(config *eventconfig.Config) *EventBus {
	if config == nil {
		config = eventconfig.New(nil)
	}
	return &EventBus{
		bus:    evbus.New(),
		config: config,
	}
}

// Subscribe 同步订阅
func (eb *EventBus) Subscribe(eventType event.EventType, handler interface{}) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	return eb.bus.Subscribe(string(eventType), handler)
}

// SubscribeAsync 异步订阅
func (eb *EventBus) SubscribeAsync(eventType event.EventType, handler interface{}, transactional bool) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	return eb.bus.SubscribeAsync(string(eventType), handler, transactional)
}

// SubscribeOnce 一次性订阅
func (eb *EventBus) SubscribeOnce(eventType event.EventType, handler interface{}) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	return eb.bus.SubscribeOnce(string(eventType), handler)
}

// Publish 发布事件
func (eb *EventBus) Publish(eventType event.EventType, args ...interface{}) {
	if !eb.config.IsEnabled() {
		return
	}
	eb.bus.Publish(string(eventType), args...)
}

// PublishEvent 发布事件对象，订阅者以 func(event.Event) 接收
func (eb *EventBus) PublishEvent(e event.Event) {
	if !eb.config.IsEnabled() || e == nil {
		return
	}
	eb.bus.Publish(string(e.Type()), e)
}

// Unsubscribe 取消订阅
func (eb *EventBus) Unsubscribe(eventType event.EventType, handler interface{}) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	return eb.bus.Unsubscribe(string(eventType), handler)
}

// WaitAsync 等待异步处理器完成
func (eb *EventBus) WaitAsync() {
	if !eb.config.IsEnabled() {
		return
	}
	eb.bus.WaitAsync()
}

// HasCallback 是否存在订阅者
func (eb *EventBus) HasCallback(eventType event.EventType) bool {
	if !eb.config.IsEnabled() {
		return false
	}
	return eb.bus.HasCallback(string(eventType))
}

// NewMinerEvent 构造带 ID 与时间戳的矿工事件
func NewMinerEvent(eventType types.EventType, payload map[string]interface{}) *types.MinerEvent {
	return &types.MinerEvent{
		ID:        uuid.NewString(),
		EventType: eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

var _ event.EventBus = (*EventBus)(nil)
