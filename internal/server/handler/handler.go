// Package handler 把客户端消息分发到大厅目录和大厅。
package handler

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/picture-game/internal/apperrors"
	"github.com/palemoky/picture-game/internal/game/directory"
	"github.com/palemoky/picture-game/internal/game/lobby"
	"github.com/palemoky/picture-game/internal/protocol"
	"github.com/palemoky/picture-game/internal/protocol/codec"
	"github.com/palemoky/picture-game/internal/server/storage"
	"github.com/palemoky/picture-game/internal/types"
)

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	Server      types.ServerInterface
	Directory   *directory.Directory
	ChatLimiter types.ChatLimiter    // 可为空
	Leaderboard *storage.Leaderboard // 未启用 Redis 时为空
}

// Handler 消息处理器
type Handler struct {
	server      types.ServerInterface
	directory   *directory.Directory
	chatLimiter types.ChatLimiter
	leaderboard *storage.Leaderboard
	handlers    map[protocol.MessageType]handlerFunc
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{
		server:      deps.Server,
		directory:   deps.Directory,
		chatLimiter: deps.ChatLimiter,
		leaderboard: deps.Leaderboard,
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgPing:      h.handlePing,
		protocol.MsgClaimName: h.handleClaimName,

		// 大厅操作
		protocol.MsgJoinPublic:    h.requireName(func(c types.ClientInterface, _ *protocol.Message) { h.handleJoinPublic(c) }),
		protocol.MsgCreatePrivate: h.requireName(h.handleCreatePrivate),
		protocol.MsgJoinPrivate:   h.requireName(h.handleJoinPrivate),
		protocol.MsgLeaveLobby:    func(c types.ClientInterface, _ *protocol.Message) { h.handleLeaveLobby(c) },
		protocol.MsgRefresh:       func(c types.ClientInterface, _ *protocol.Message) { h.handleRefresh(c) },

		// 游戏操作
		protocol.MsgGuess:       h.handleGuess,
		protocol.MsgDraw:        h.handleDraw,
		protocol.MsgDrawRelease: func(c types.ClientInterface, _ *protocol.Message) { h.relay(c, protocol.DrawKindRelease) },
		protocol.MsgDrawClear:   func(c types.ClientInterface, _ *protocol.Message) { h.relay(c, protocol.DrawKindClear) },
		protocol.MsgChat:        h.handleChat,

		// 信息查询
		protocol.MsgGetLeaderboard: h.handleGetLeaderboard,
		protocol.MsgGetOnlineCount: func(c types.ClientInterface, _ *protocol.Message) { h.handleGetOnlineCount(c) },
	}
}

// Handle 处理消息
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	if handler, ok := h.handlers[msg.Type]; ok {
		handler(client, msg)
		return
	}

	log.Warn().Str("type", string(msg.Type)).Str("client", client.GetID()).
		Int("payload_bytes", len(msg.Payload)).Msg("unknown message type")
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}

// requireName 未申请用户名的连接不能进入大厅
func (h *Handler) requireName(next handlerFunc) handlerFunc {
	return func(client types.ClientInterface, msg *protocol.Message) {
		if client.GetName() == "" {
			sendError(client, apperrors.ErrNameMissing)
			return
		}
		next(client, msg)
	}
}

// currentLobby 返回客户端所在的大厅，不在大厅时返回 nil
func (h *Handler) currentLobby(client types.ClientInterface) *lobby.Lobby {
	id := client.GetLobby()
	if id == types.NoLobby {
		return nil
	}
	return h.directory.Lobby(id)
}

// sendError 把 GameError 转为错误消息，其他错误统一为未知错误
func sendError(client types.ClientInterface, err error) {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		client.SendMessage(codec.NewErrorMessageWithText(gameErr.Code, gameErr.Message))
		return
	}
	log.Error().Err(err).Str("client", client.GetID()).Msg("request failed")
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeUnknown))
}
