package handler

import (
	"github.com/rs/zerolog/log"

	"github.com/palemoky/picture-game/internal/apperrors"
	"github.com/palemoky/picture-game/internal/protocol"
	"github.com/palemoky/picture-game/internal/protocol/codec"
	"github.com/palemoky/picture-game/internal/types"
)

// maintenance 维护模式下拒绝进入大厅
func (h *Handler) maintenance(client types.ClientInterface) bool {
	if h.server != nil && h.server.IsMaintenanceMode() {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeMaintenance))
		return true
	}
	return false
}

// handleJoinPublic 加入公共大厅。加入成功的通知由大厅发送。
func (h *Handler) handleJoinPublic(client types.ClientInterface) {
	if h.maintenance(client) {
		return
	}

	id, err := h.directory.JoinPublic(client)
	if err != nil {
		sendError(client, err)
		return
	}
	log.Info().Str("name", client.GetName()).Int64("lobby", id).Msg("joined public lobby")
}

// handleCreatePrivate 创建私人大厅
func (h *Handler) handleCreatePrivate(client types.ClientInterface, msg *protocol.Message) {
	if h.maintenance(client) {
		return
	}

	payload, err := codec.ParsePayload[protocol.CreatePrivatePayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	key, err := h.directory.CreatePrivate(client, payload.RoundTime, payload.ScoreLimit)
	if err != nil {
		sendError(client, err)
		return
	}
	log.Info().Str("name", client.GetName()).Int64("lobby", client.GetLobby()).Str("key", key).Msg("created private lobby")
}

// handleJoinPrivate 通过密钥加入私人大厅
func (h *Handler) handleJoinPrivate(client types.ClientInterface, msg *protocol.Message) {
	if h.maintenance(client) {
		return
	}

	payload, err := codec.ParsePayload[protocol.JoinPrivatePayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	id, err := h.directory.JoinPrivate(client, payload.Key)
	if err != nil {
		sendError(client, err)
		return
	}
	log.Info().Str("name", client.GetName()).Int64("lobby", id).Msg("joined private lobby")
}

// handleLeaveLobby 离开当前大厅
func (h *Handler) handleLeaveLobby(client types.ClientInterface) {
	id := client.GetLobby()
	if id == types.NoLobby {
		sendError(client, apperrors.ErrNotInLobby)
		return
	}
	h.directory.Leave(client, id)
}

// handleRefresh 重新获取名单和角色
func (h *Handler) handleRefresh(client types.ClientInterface) {
	l := h.currentLobby(client)
	if l == nil {
		sendError(client, apperrors.ErrNotInLobby)
		return
	}
	l.Refresh(client)
}
