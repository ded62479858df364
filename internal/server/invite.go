package server

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

const inviteQRSize = 256

// handleInviteQR 生成私人大厅邀请二维码（PNG）
func (s *Server) handleInviteQR(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	l, ok := s.directory.LobbyByKey(ps.ByName("key"))
	if !ok {
		http.Error(w, "lobby not found", http.StatusNotFound)
		return
	}

	// 未配置邀请链接时二维码内容为密钥本身
	content := s.config.Server.InviteURL + l.Key()
	png, err := qrcode.Encode(content, qrcode.Medium, inviteQRSize)
	if err != nil {
		log.Error().Err(err).Int64("lobby", l.ID()).Msg("qr generation failed")
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}
