package handler

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/picture-game/internal/apperrors"
	"github.com/palemoky/picture-game/internal/protocol"
	"github.com/palemoky/picture-game/internal/protocol/codec"
	"github.com/palemoky/picture-game/internal/types"
)

// maxNameLength 用户名最大字符数
const maxNameLength = 16

// handlePing 处理心跳消息
func (h *Handler) handlePing(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

// handleClaimName 申请用户名。已在大厅中不能改名；改名成功后释放旧名字。
func (h *Handler) handleClaimName(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.ClaimNamePayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	name := strings.TrimSpace(payload.Name)
	if err := validateName(name); err != nil {
		sendError(client, err)
		return
	}
	if client.GetLobby() != types.NoLobby {
		sendError(client, apperrors.ErrAlreadyInLobby)
		return
	}

	old := client.GetName()
	if old == name {
		client.SendMessage(codec.MustNewMessage(protocol.MsgNameClaimed, protocol.NameClaimedPayload{Name: name}))
		return
	}
	if err := h.directory.ClaimName(name); err != nil {
		sendError(client, err)
		return
	}
	if old != "" {
		h.directory.ReleaseName(old)
	}
	client.SetName(name)

	client.SendMessage(codec.MustNewMessage(protocol.MsgNameClaimed, protocol.NameClaimedPayload{Name: name}))
	log.Info().Str("client", client.GetID()).Str("name", name).Msg("name claimed")
}

func validateName(name string) error {
	if name == "" {
		return apperrors.ErrNameRequired
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return apperrors.ErrNameInvalid
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return apperrors.ErrNameInvalid
		}
	}
	return nil
}
