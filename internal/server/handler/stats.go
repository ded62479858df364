package handler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/picture-game/internal/protocol"
	"github.com/palemoky/picture-game/internal/protocol/codec"
	"github.com/palemoky/picture-game/internal/server/storage"
	"github.com/palemoky/picture-game/internal/types"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 50
	leaderboardTimeout      = 3 * time.Second
)

// handleGetLeaderboard 获取排行榜
func (h *Handler) handleGetLeaderboard(client types.ClientInterface, msg *protocol.Message) {
	if h.leaderboard == nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeStatsDisabled))
		return
	}

	payload, err := codec.ParsePayload[protocol.GetLeaderboardPayload](msg)
	if err != nil {
		payload = &protocol.GetLeaderboardPayload{}
	}
	if payload.Type != storage.BoardWeekly {
		payload.Type = storage.BoardTotal
	}
	if payload.Limit <= 0 || payload.Limit > maxLeaderboardLimit {
		payload.Limit = defaultLeaderboardLimit
	}

	ctx, cancel := context.WithTimeout(context.Background(), leaderboardTimeout)
	defer cancel()

	entries, err := h.leaderboard.GetLeaderboard(ctx, payload.Type, payload.Limit)
	if err != nil {
		log.Error().Err(err).Msg("get leaderboard failed")
		client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "获取排行榜失败"))
		return
	}

	result := make([]protocol.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, protocol.LeaderboardEntry{
			Rank:    e.Rank,
			Name:    e.Stats.Name,
			Score:   e.Stats.Score,
			Wins:    e.Stats.Wins,
			Games:   e.Stats.TotalGames,
			WinRate: e.Stats.WinRate(),
		})
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgLeaderboardResult, protocol.LeaderboardResultPayload{
		Type:    payload.Type,
		Entries: result,
	}))
}

// handleGetOnlineCount 在线人数与大厅统计
func (h *Handler) handleGetOnlineCount(client types.ClientInterface) {
	payload := protocol.OnlineCountPayload{
		Lobbies:     h.directory.LobbyCount(),
		ActiveGames: h.directory.ActiveGamesCount(),
	}
	if h.server != nil {
		payload.Count = h.server.GetOnlineCount()
	}
	client.SendMessage(codec.MustNewMessage(protocol.MsgOnlineCount, payload))
}
