package types

import (
	"context"

	"github.com/palemoky/picture-game/internal/protocol"
)

// ClientInterface 定义参与者（连接）接口，由传输层实现
type ClientInterface interface {
	GetID() string
	GetName() string
	SetName(name string)
	GetLobby() int64
	SetLobby(id int64)
	SendMessage(msg *protocol.Message)
	Close()
}

// NoLobby 表示参与者不在任何大厅中
const NoLobby int64 = -1

// ResultRecorder 记录对局结果（用于排行榜）
type ResultRecorder interface {
	RecordGameResult(ctx context.Context, playerName string, won bool) error
}

// ServerInterface 定义处理器需要的服务器能力
type ServerInterface interface {
	GetOnlineCount() int
	IsMaintenanceMode() bool
}

// ChatLimiter 聊天与猜词限流
type ChatLimiter interface {
	AllowChat(clientID string) (bool, string)
}
