// Package http 提供矿工的 HTTP 状态与控制接口
//
// 路由：
//
//	GET  /health
//	GET  /metrics
//	GET  /api/v1/miner/status
//	POST /api/v1/miner/start[?once=true]
//	POST /api/v1/miner/stop
//	GET  /api/v1/miner/journal[?limit=N]
//	GET  /api/v1/miner/events[?types=a,b]   (websocket)
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weisyn/metaminer/internal/api/http/handlers"
	"github.com/weisyn/metaminer/internal/api/http/middleware"
	apiconfig "github.com/weisyn/metaminer/internal/config/api"
	eventimpl "github.com/weisyn/metaminer/internal/core/infrastructure/event"
	"github.com/weisyn/metaminer/pkg/interfaces/consensus"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/metaminer/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/metaminer/pkg/types"
)

// streamedEvents 推送给 websocket 订阅者的事件类型
var streamedEvents = []types.EventType{
	types.EventTypeMinerStateChanged,
	types.EventTypeRoundStarted,
	types.EventTypeNonceFound,
	types.EventTypeSubmissionRejected,
	types.EventTypeRoundStale,
	types.EventTypeTargetAdjusted,
	types.EventTypeWorkerFault,
}

func init() {
	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}
}

// Dependencies HTTP 服务器依赖
type Dependencies struct {
	Options      *apiconfig.APIOptions
	Logger       log.Logger
	MinerService consensus.MinerService
	Journal      storage.Journal // 可选
	EventBus     event.EventBus  // 可选
}

// Server HTTP服务器
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	options    *apiconfig.APIOptions
	logger     log.Logger
	stream     *eventimpl.Stream

	mu   sync.Mutex
	addr string
}

// NewServer 创建服务器并注册路由，不监听端口
func NewServer(deps Dependencies) (*Server, error) {
	if deps.MinerService == nil {
		return nil, errors.New("HTTP 服务器缺少矿工服务")
	}
	logger := deps.Logger.With("module", "api")

	var stream *eventimpl.Stream
	if deps.EventBus != nil {
		s, err := eventimpl.NewStream(deps.EventBus, streamedEvents...)
		if err != nil {
			return nil, fmt.Errorf("注册事件流失败: %w", err)
		}
		stream = s
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.NewLogger(logger).Middleware(), middleware.Metrics())

	server := &Server{
		router:  router,
		options: deps.Options,
		logger:  logger,
		stream:  stream,
	}
	server.setupRoutes(deps)
	return server, nil
}

// setupRoutes 设置HTTP路由
func (s *Server) setupRoutes(deps Dependencies) {
	s.router.GET("/health", handlers.NewHealthHandler(deps.MinerService).GetHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	handlers.NewMiningHandlers(deps.MinerService, deps.Journal, s.logger).RegisterRoutes(v1)
	v1.GET("/miner/events", handlers.NewEventsHandler(s.stream, s.logger).Subscribe)

	s.logger.Debug("HTTP 路由注册完成")
}

// Handler 返回路由（测试与嵌入使用）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr 实际监听地址，未启动时为空
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Start 监听并在后台提供服务
//
// 端口为 0 时由系统分配，实际地址通过 Addr 获取。
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.options.Address())
	if err != nil {
		return fmt.Errorf("HTTP 监听 %s 失败: %w", s.options.Address(), err)
	}

	s.mu.Lock()
	s.addr = listener.Addr().String()
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("HTTP 服务器异常退出: %v", err)
		}
	}()

	s.logger.Infof("✅ HTTP服务器启动成功，监听地址: %s", listener.Addr())
	s.logger.Infof("📡 API端点: http://%s/api/v1/miner/status", listener.Addr())
	return nil
}

// Stop 关闭事件流并优雅停止服务器
//
// 事件流先关闭，websocket 连接随之收到关闭帧；hijack 后的连接不受 Shutdown 管理。
func (s *Server) Stop(ctx context.Context) error {
	if s.stream != nil {
		s.stream.Close()
	}

	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP 服务器停止失败: %w", err)
	}
	s.logger.Info("HTTP服务器已停止")
	return nil
}
