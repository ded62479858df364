package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing      MessageType = "ping"       // 心跳 ping
	MsgClaimName MessageType = "claim_name" // 申请用户名

	// 大厅操作
	MsgJoinPublic    MessageType = "join_public"    // 加入公开大厅
	MsgCreatePrivate MessageType = "create_private" // 创建私人大厅
	MsgJoinPrivate   MessageType = "join_private"   // 通过密钥加入私人大厅
	MsgLeaveLobby    MessageType = "leave_lobby"    // 离开大厅
	MsgRefresh       MessageType = "refresh"        // 请求刷新名单和角色

	// 游戏操作
	MsgGuess          MessageType = "guess"           // 猜词
	MsgDraw           MessageType = "draw"            // 绘画坐标
	MsgDrawRelease    MessageType = "draw_release"    // 抬笔
	MsgDrawClear      MessageType = "draw_clear"      // 清空画布
	MsgChat           MessageType = "chat"            // 聊天消息
	MsgGetLeaderboard MessageType = "get_leaderboard" // 获取排行榜

	// 信息查询
	MsgGetOnlineCount MessageType = "get_online_count" // 获取在线人数
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected   MessageType = "connected"    // 连接成功
	MsgPong        MessageType = "pong"         // 心跳 pong
	MsgNameClaimed MessageType = "name_claimed" // 用户名申请成功

	// 大厅相关
	MsgLobbyJoined MessageType = "lobby_joined" // 加入大厅成功
	MsgLobbyLeft   MessageType = "lobby_left"   // 已离开大厅
	MsgRoster      MessageType = "roster"       // 队伍名单

	// 游戏流程
	MsgGameStart MessageType = "game_start" // 游戏开始
	MsgRole      MessageType = "role"       // 本轮角色
	MsgTimer     MessageType = "timer"      // 剩余时间
	MsgRoundEnd  MessageType = "round_end"  // 本轮结束
	MsgGameOver  MessageType = "game_over"  // 游戏结束
	MsgRebalance MessageType = "rebalance"  // 重新分队
	MsgDrawing   MessageType = "drawing"    // 转发的绘画数据
	MsgGuesses   MessageType = "guesses"    // 本队猜词记录

	// 排行榜
	MsgLeaderboardResult MessageType = "leaderboard_result" // 排行榜结果
	MsgOnlineCount       MessageType = "online_count"       // 在线人数

	// 错误
	MsgError MessageType = "error" // 错误消息
)
