package apperrors

import (
	"github.com/palemoky/picture-game/internal/protocol"
)

// GameError 游戏错误（大厅和目录共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrNameRequired   = &GameError{Code: protocol.ErrCodeNameRequired, Message: "用户名不能为空"}
	ErrNameTaken      = &GameError{Code: protocol.ErrCodeNameTaken, Message: "用户名已被占用"}
	ErrNameMissing    = &GameError{Code: protocol.ErrCodeNameMissing, Message: "请先设置用户名"}
	ErrNameInvalid    = &GameError{Code: protocol.ErrCodeNameInvalid, Message: "用户名过长或包含非法字符"}
	ErrLobbyNotFound  = &GameError{Code: protocol.ErrCodeLobbyNotFound, Message: "大厅不存在或已满"}
	ErrLobbyFull      = &GameError{Code: protocol.ErrCodeLobbyFull, Message: "大厅已满"}
	ErrNotInLobby     = &GameError{Code: protocol.ErrCodeNotInLobby, Message: "您不在大厅中"}
	ErrAlreadyInLobby = &GameError{Code: protocol.ErrCodeAlreadyInLobby, Message: "您已在大厅中"}
	ErrEmptyBank      = &GameError{Code: protocol.ErrCodeEmptyBank, Message: "词库为空"}
)
