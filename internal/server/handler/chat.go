package handler

import (
	"strings"
	"unicode/utf8"

	"github.com/palemoky/picture-game/internal/apperrors"
	"github.com/palemoky/picture-game/internal/protocol"
	"github.com/palemoky/picture-game/internal/protocol/codec"
	"github.com/palemoky/picture-game/internal/types"
)

// maxTextLength 聊天和猜词的最大字符数
const maxTextLength = 200

// allowText 聊天与猜词共用限流
func (h *Handler) allowText(client types.ClientInterface) bool {
	if h.chatLimiter == nil {
		return true
	}
	allowed, reason := h.chatLimiter.AllowChat(client.GetID())
	if !allowed {
		client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeChatLimit, reason))
	}
	return allowed
}

// handleChat 大厅内聊天
func (h *Handler) handleChat(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.ChatPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	content := strings.TrimSpace(payload.Content)
	if content == "" || utf8.RuneCountInString(content) > maxTextLength {
		return
	}

	l := h.currentLobby(client)
	if l == nil {
		sendError(client, apperrors.ErrNotInLobby)
		return
	}
	if !h.allowText(client) {
		return
	}
	l.Chat(client, content)
}

// handleGuess 猜词，是否计入由大厅判断
func (h *Handler) handleGuess(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.GuessPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	text := strings.TrimSpace(payload.Text)
	if text == "" || utf8.RuneCountInString(text) > maxTextLength {
		return
	}

	l := h.currentLobby(client)
	if l == nil {
		sendError(client, apperrors.ErrNotInLobby)
		return
	}
	if !h.allowText(client) {
		return
	}
	l.SubmitGuess(client, text)
}

// handleDraw 转发绘画坐标
func (h *Handler) handleDraw(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.DrawPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if l := h.currentLobby(client); l != nil {
		l.RelayDrawing(client, protocol.DrawingPayload{
			Kind: protocol.DrawKindPoint,
			X:    payload.X,
			Y:    payload.Y,
			RGB:  payload.RGB,
		})
	}
}

// relay 转发抬笔、清屏
func (h *Handler) relay(client types.ClientInterface, kind string) {
	if l := h.currentLobby(client); l != nil {
		l.RelayDrawing(client, protocol.DrawingPayload{Kind: kind})
	}
}
