package server

import (
	"net/http"

	"github.com/palemoky/blackjack-sim/internal/logger"
)

// handleWebSocket 处理 WebSocket 连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)
	if s.rateLimiter.IsBanned(ip) {
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.LogError("websocket upgrade from %s: %v", ip, err)
		return
	}

	client := NewClient(s, conn, ip)
	logger.LogInfo("client %s connected from %s", client.ID, ip)

	go client.WritePump()
	go client.ReadPump()
}
