package protocol

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// ClaimNamePayload 申请用户名
type ClaimNamePayload struct {
	Name string `json:"name"`
}

// CreatePrivatePayload 创建私人大厅请求
type CreatePrivatePayload struct {
	RoundTime  int `json:"round_time"`  // 每轮时长（秒），超出范围则使用默认值
	ScoreLimit int `json:"score_limit"` // 获胜分数，超出范围则使用默认值
}

// JoinPrivatePayload 加入私人大厅请求
type JoinPrivatePayload struct {
	Key string `json:"key"`
}

// GuessPayload 猜词请求
type GuessPayload struct {
	Text string `json:"text"`
}

// DrawPayload 绘画坐标，服务端不做解释原样转发
type DrawPayload struct {
	X   int `json:"x"`
	Y   int `json:"y"`
	RGB int `json:"rgb"`
}

// GetLeaderboardPayload 获取排行榜请求
type GetLeaderboardPayload struct {
	Type  string `json:"type,omitempty"` // total（默认）/ weekly
	Limit int    `json:"limit"`
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	ConnectionID string `json:"connection_id"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"server_timestamp"` // 服务器时间戳（毫秒）
}

// NameClaimedPayload 用户名申请成功
type NameClaimedPayload struct {
	Name string `json:"name"`
}

// LobbyJoinedPayload 加入大厅成功
type LobbyJoinedPayload struct {
	LobbyID int64  `json:"lobby_id"`
	Private bool   `json:"private"`
	Key     string `json:"key,omitempty"` // 仅私人大厅
}

// RosterPayload 大厅名单
type RosterPayload struct {
	LobbyID int64    `json:"lobby_id"`
	Started bool     `json:"started"`
	Members []string `json:"members"`
	TeamA   []string `json:"team_a,omitempty"`
	TeamB   []string `json:"team_b,omitempty"`
	Waiting []string `json:"waiting,omitempty"` // 回合中途加入、等待下一轮分队的玩家
}

// RolePayload 本轮角色
type RolePayload struct {
	Drawing bool   `json:"drawing"`
	Team    string `json:"team"`
	Word    string `json:"word,omitempty"` // 只发给画手
}

// TimerPayload 剩余时间
type TimerPayload struct {
	Remaining int `json:"remaining"`
}

// 回合结束方式
const (
	OutcomeCorrect    = "correct"
	OutcomeTimeout    = "timeout"
	OutcomeDrawerLeft = "drawer_left"
)

// RoundEndPayload 回合结束通知
type RoundEndPayload struct {
	Outcome string `json:"outcome"`
	Guesser string `json:"guesser,omitempty"`
	Word    string `json:"word,omitempty"`
	Team    string `json:"team,omitempty"` // 得分队伍或掉线画手所在队伍
	ScoreA  int    `json:"score_a"`
	ScoreB  int    `json:"score_b"`
	Message string `json:"message"`
}

// 游戏结束原因
const (
	GameOverWinner          = "winner"
	GameOverNotEnoughPlayer = "not_enough_players"
)

// GameOverPayload 游戏结束通知
type GameOverPayload struct {
	Reason  string `json:"reason"`
	Winner  string `json:"winner,omitempty"`
	Message string `json:"message"`
	ScoreA  int    `json:"score_a"`
	ScoreB  int    `json:"score_b"`
}

// 绘画数据类型
const (
	DrawKindPoint   = "point"
	DrawKindRelease = "release"
	DrawKindClear   = "clear"
)

// DrawingPayload 转发给队友的绘画数据
type DrawingPayload struct {
	Kind string `json:"kind"`
	X    int    `json:"x,omitempty"`
	Y    int    `json:"y,omitempty"`
	RGB  int    `json:"rgb,omitempty"`
}

// GuessesPayload 本队本轮的猜词记录
type GuessesPayload struct {
	Team    string   `json:"team"`
	Guesses []string `json:"guesses"`
}

// LeaderboardResultPayload 排行榜结果
type LeaderboardResultPayload struct {
	Type    string             `json:"type"` // total / weekly
	Entries []LeaderboardEntry `json:"entries"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank    int     `json:"rank"`
	Name    string  `json:"name"`
	Score   int     `json:"score"`
	Wins    int     `json:"wins"`
	Games   int     `json:"games"`
	WinRate float64 `json:"win_rate"`
}

// OnlineCountPayload 在线统计
type OnlineCountPayload struct {
	Count       int `json:"count"`
	Lobbies     int `json:"lobbies"`
	ActiveGames int `json:"active_games"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ChatPayload 聊天消息
type ChatPayload struct {
	Sender   string `json:"sender,omitempty"` // 发送者名字 (服务端填充)
	Content  string `json:"content"`
	Time     int64  `json:"time,omitempty"`      // 发送时间 (服务端填充)
	IsSystem bool   `json:"is_system,omitempty"` // 是否是系统消息
}
