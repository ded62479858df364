package server

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/picture-game/internal/protocol"
	"github.com/palemoky/picture-game/internal/protocol/codec"
)

const (
	monitorInterval       = 30 * time.Second
	shutdownCheckInterval = 5 * time.Second
)

// monitorStats 定期记录服务器状态
func (s *Server) monitorStats(ctx context.Context) {
	ticker := s.clock.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			log.Info().
				Int("online", s.GetOnlineCount()).
				Int("goroutines", runtime.NumGoroutine()).
				Int("active_conns", len(s.semaphore)).
				Int("lobbies", s.directory.LobbyCount()).
				Int("active_games", s.directory.ActiveGamesCount()).
				Float64("mem_mb", float64(m.Alloc)/1024/1024).
				Msg("stats")
		}
	}
}

// EnterMaintenanceMode 进入维护模式：拒绝新连接和大厅加入
func (s *Server) EnterMaintenanceMode() {
	s.maintenanceMu.Lock()
	s.maintenanceMode = true
	s.maintenanceMu.Unlock()

	s.BroadcastToIdle(codec.NewErrorMessage(protocol.ErrCodeMaintenance))
	log.Info().Msg("entered maintenance mode")
}

// IsMaintenanceMode 是否处于维护模式
func (s *Server) IsMaintenanceMode() bool {
	s.maintenanceMu.RLock()
	defer s.maintenanceMu.RUnlock()
	return s.maintenanceMode
}

// GracefulShutdown 进入维护模式，等待进行中的游戏结束或超时，然后关闭
func (s *Server) GracefulShutdown(timeout time.Duration) {
	s.EnterMaintenanceMode()

	deadline := s.clock.Now().Add(timeout)
	ticker := s.clock.NewTicker(shutdownCheckInterval)
	defer ticker.Stop()

	for s.clock.Now().Before(deadline) {
		active := s.directory.ActiveGamesCount()
		if active == 0 {
			break
		}
		log.Info().Int("active_games", active).Msg("waiting for games to finish")
		<-ticker.Chan()
	}

	if active := s.directory.ActiveGamesCount(); active > 0 {
		log.Warn().Int("active_games", active).Msg("shutdown timeout, closing anyway")
		s.Broadcast(codec.NewErrorMessageWithText(protocol.ErrCodeMaintenance,
			fmt.Sprintf("服务器停机维护，%d 局游戏被中止", active)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Shutdown(ctx)
}

// Shutdown 关闭 HTTP 服务、所有连接、大厅计时器与 Redis
func (s *Server) Shutdown(ctx context.Context) {
	if s.cancel != nil {
		s.cancel()
	}
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("http shutdown")
		}
	}

	for _, client := range s.snapshotClients() {
		client.Close()
	}

	s.directory.Close()

	if s.redis != nil {
		_ = s.redis.Close()
	}

	log.Info().Msg("server stopped")
}
