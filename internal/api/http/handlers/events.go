package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/weisyn/metaminer/internal/api/http/types"
	eventimpl "github.com/weisyn/metaminer/internal/core/infrastructure/event"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/log"
	minertypes "github.com/weisyn/metaminer/pkg/types"
)

const (
	writeWait      = 5 * time.Second
	pingInterval   = 30 * time.Second
	listenerBuffer = 64
)

// EventsHandler 通过 websocket 推送矿工事件
//
// 每个连接注册为 Stream 的一个监听者；客户端消费过慢时事件被丢弃，不阻塞挖矿。
// ?types=miner.nonce_found,miner.round_stale 只推送指定类型。
type EventsHandler struct {
	stream   *eventimpl.Stream // 为空表示事件总线未启用
	logger   log.Logger
	upgrader websocket.Upgrader
}

// NewEventsHandler 创建事件推送处理器
func NewEventsHandler(stream *eventimpl.Stream, logger log.Logger) *EventsHandler {
	return &EventsHandler{
		stream: stream,
		logger: logger,
		upgrader: websocket.Upgrader{
			// 默认只监听本机
			CheckOrigin:     func(*http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// Subscribe 升级为 websocket 并持续推送事件，直到任一端关闭
func (h *EventsHandler) Subscribe(c *gin.Context) {
	if h.stream == nil {
		respondError(c, http.StatusServiceUnavailable, types.ErrServiceUnavailable, "事件总线未启用", nil)
		return
	}
	filter := parseTypeFilter(c.Query("types"))

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 已写回错误响应
		h.logger.Warnf("websocket 升级失败: %v", err)
		return
	}
	defer conn.Close()

	id, events, cancel := h.stream.Listen(listenerBuffer)
	defer cancel()
	h.logger.Infof("事件订阅建立: id=%s remote=%s", id, conn.RemoteAddr())

	// 读循环只用于感知对端关闭
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			h.logger.Infof("事件订阅关闭: id=%s", id)
			return

		case e, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
					time.Now().Add(writeWait))
				return
			}
			if filter != nil && !filter[e.Type()] {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(eventMessage(e)); err != nil {
				h.logger.Warnf("推送事件失败: id=%s err=%v", id, err)
				return
			}

		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func eventMessage(e event.Event) interface{} {
	if me, ok := e.(*minertypes.MinerEvent); ok {
		return me
	}
	return gin.H{"event_type": e.Type(), "payload": e.Data()}
}

func parseTypeFilter(raw string) map[minertypes.EventType]bool {
	if raw == "" {
		return nil
	}
	filter := make(map[minertypes.EventType]bool)
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			filter[minertypes.EventType(t)] = true
		}
	}
	return filter
}
