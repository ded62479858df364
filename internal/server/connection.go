package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/picture-game/internal/protocol"
	"github.com/palemoky/picture-game/internal/protocol/codec"
)

// handleWebSocket 处理 WebSocket 连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := GetClientIP(r)

	if s.IsMaintenanceMode() {
		log.Info().Str("ip", clientIP).Msg("maintenance mode, connection rejected")
		http.Error(w, "Server is under maintenance, please try again later", http.StatusServiceUnavailable)
		return
	}

	// 连接数限制，连接关闭后释放
	select {
	case s.semaphore <- struct{}{}:
	default:
		log.Warn().Int("max", s.maxConnections).Str("ip", clientIP).Msg("connection limit reached")
		http.Error(w, "Server Full", http.StatusServiceUnavailable)
		return
	}
	release := func() { <-s.semaphore }

	if !s.ipFilter.IsAllowed(clientIP) {
		release()
		log.Warn().Str("ip", clientIP).Msg("ip rejected by filter")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if !s.originChecker.Check(r) {
		release()
		log.Warn().Str("origin", r.Header.Get("Origin")).Str("ip", clientIP).Msg("origin not allowed")
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	if !s.rateLimiter.Allow(clientIP) {
		release()
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		release()
		log.Warn().Err(err).Str("ip", clientIP).Msg("websocket upgrade failed")
		return
	}

	client := NewClient(s, conn)
	client.IP = clientIP
	s.registerClient(client)

	client.SendMessage(codec.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		ConnectionID: client.ID,
	}))
	log.Info().Str("client", client.ID).Str("ip", clientIP).Msg("client connected")

	go func() {
		defer release()
		client.ReadPump()
	}()
	go client.WritePump()
}

// healthResponse 健康检查响应
type healthResponse struct {
	Status      string `json:"status"`
	Online      int    `json:"online"`
	Lobbies     int    `json:"lobbies"`
	ActiveGames int    `json:"active_games"`
	Maintenance bool   `json:"maintenance"`
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(healthResponse{
		Status:      "ok",
		Online:      s.GetOnlineCount(),
		Lobbies:     s.directory.LobbyCount(),
		ActiveGames: s.directory.ActiveGamesCount(),
		Maintenance: s.IsMaintenanceMode(),
	})
}

// registerClient 注册客户端
func (s *Server) registerClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client.ID] = client
}

// unregisterClient 注销客户端
func (s *Server) unregisterClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, ok := s.clients[client.ID]; ok {
		delete(s.clients, client.ID)
		log.Info().Str("client", client.ID).Str("name", client.GetName()).Msg("client disconnected")
	}
}
