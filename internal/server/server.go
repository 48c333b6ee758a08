package server

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/palemoky/blackjack-sim/internal/config"
	"github.com/palemoky/blackjack-sim/internal/game/strategy"
	"github.com/palemoky/blackjack-sim/internal/logger"
	"github.com/palemoky/blackjack-sim/internal/storage"
)

const (
	// 每个 IP 发起模拟的频率限制
	simulatePerSecond = 2
	simulatePerMinute = 30
	simulateBan       = time.Minute
)

// Server 模拟服务器
type Server struct {
	config        *config.Config
	engine        *strategy.Engine
	store         *storage.ResultStore // nil when persistence is disabled
	originChecker *OriginChecker
	rateLimiter   *RateLimiter
	upgrader      websocket.Upgrader

	// 并发模拟数限制
	runs chan struct{}

	httpServer *http.Server
}

// NewServer 创建服务器实例. store may be nil.
func NewServer(cfg *config.Config, engine *strategy.Engine, store *storage.ResultStore) *Server {
	if engine == nil {
		engine = strategy.NewEngine(nil)
	}
	s := &Server{
		config:        cfg,
		engine:        engine,
		store:         store,
		originChecker: NewOriginChecker(cfg.Server.AllowedOrigins),
		rateLimiter:   NewRateLimiter(simulatePerSecond, simulatePerMinute, simulateBan),
		runs:          make(chan struct{}, runtime.NumCPU()),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}
	return s
}

// Router 构建路由
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWebSocket)
	r.Route("/api", func(r chi.Router) {
		r.Post("/simulate", s.handleSimulate)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/runs/{id}/shoes", s.handleListShoes)
		r.Get("/leaderboard", s.handleLeaderboard)
	})
	return r
}

// Start 启动服务器，阻塞直到关闭
func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.LogInfo("server listening on ws://%s/ws (CPUs: %d)", addr, runtime.NumCPU())
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.Stop()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// acquireRun reserves a simulation slot without blocking.
func (s *Server) acquireRun() bool {
	select {
	case s.runs <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Server) releaseRun() {
	<-s.runs
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"ok": true, "store": "disabled"}
	if s.store != nil {
		status["store"] = "ok"
		if err := s.store.Ping(r.Context()); err != nil {
			status["store"] = "unavailable"
		}
	}
	writeJSON(w, http.StatusOK, status)
}
