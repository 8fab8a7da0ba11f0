package event

import (
	"sync"

	"github.com/google/uuid"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/metaminer/pkg/types"
)

// Stream 把总线上的若干事件类型扇出给多个通道订阅者
//
// 每个事件类型只在总线上注册一个处理器；监听者按 ID 管理，慢消费者丢弃事件而不阻塞发布方。
type Stream struct {
	bus        event.EventBus
	eventTypes []types.EventType

	mu        sync.RWMutex
	listeners map[string]chan event.Event
	dropped   uint64
}

// NewStream 创建并注册到总线
func NewStream(bus event.EventBus, eventTypes ...types.EventType) (*Stream, error) {
	s := &Stream{
		bus:        bus,
		eventTypes: eventTypes,
		listeners:  make(map[string]chan event.Event),
	}
	for _, t := range eventTypes {
		if err := bus.Subscribe(t, s.dispatch); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// Listen 注册监听者，返回 ID、事件通道与取消函数
func (s *Stream) Listen(buffer int) (string, <-chan event.Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	id := uuid.NewString()
	ch := make(chan event.Event, buffer)

	s.mu.Lock()
	s.listeners[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return id, ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			// Close 可能已经关闭了通道
			if _, ok := s.listeners[id]; ok {
				delete(s.listeners, id)
				close(ch)
			}
		})
	}
}

// Listeners 当前监听者数量
func (s *Stream) Listeners() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listeners)
}

// Dropped 因通道满而丢弃的事件数
func (s *Stream) Dropped() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dropped
}

// Close 从总线注销并关闭所有监听通道
func (s *Stream) Close() {
	for _, t := range s.eventTypes {
		_ = s.bus.Unsubscribe(t, s.dispatch)
	}
	s.mu.Lock()
	for id, ch := range s.listeners {
		close(ch)
		delete(s.listeners, id)
	}
	s.mu.Unlock()
}

func (s *Stream) dispatch(e event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.listeners {
		select {
		case ch <- e:
		default:
			s.dropped++
		}
	}
}
