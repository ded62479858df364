package protocol

// 错误码
const (
	ErrCodeUnknown        = 1000
	ErrCodeInvalidMsg     = 1001
	ErrCodeRateLimit      = 1002
	ErrCodeChatLimit      = 1003
	ErrCodeMaintenance    = 1004
	ErrCodeNameRequired   = 1101
	ErrCodeNameTaken      = 1102
	ErrCodeNameMissing    = 1103 // 未申请用户名就请求大厅操作
	ErrCodeNameInvalid    = 1104
	ErrCodeLobbyNotFound  = 2001
	ErrCodeLobbyFull      = 2002
	ErrCodeNotInLobby     = 2003
	ErrCodeAlreadyInLobby = 2004
	ErrCodeEmptyBank      = 5001 // 词库配置错误
	ErrCodeStatsDisabled  = 5002 // 未启用统计存储
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:        "未知错误",
	ErrCodeInvalidMsg:     "无效的消息格式",
	ErrCodeRateLimit:      "请求过于频繁",
	ErrCodeChatLimit:      "发言过于频繁，请稍后再试",
	ErrCodeMaintenance:    "服务器维护中，暂停加入大厅",
	ErrCodeNameRequired:   "用户名不能为空",
	ErrCodeNameTaken:      "用户名已被占用",
	ErrCodeNameMissing:    "请先设置用户名",
	ErrCodeNameInvalid:    "用户名过长或包含非法字符",
	ErrCodeLobbyNotFound:  "大厅不存在或已满",
	ErrCodeLobbyFull:      "大厅已满",
	ErrCodeNotInLobby:     "您不在大厅中",
	ErrCodeAlreadyInLobby: "您已在大厅中",
	ErrCodeEmptyBank:      "词库为空",
	ErrCodeStatsDisabled:  "排行榜暂不可用",
}
