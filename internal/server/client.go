package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/picture-game/internal/logger"
	"github.com/palemoky/picture-game/internal/protocol"
	"github.com/palemoky/picture-game/internal/protocol/codec"
	"github.com/palemoky/picture-game/internal/types"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时（pong 等待时间）
	pongWait = 60 * time.Second

	// ping 发送间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 消息最大大小
	maxMessageSize = 4096

	// 发送缓冲，绘画数据突发时可能较多
	sendBufferSize = 256
)

// Client 一个 WebSocket 连接，实现 types.ClientInterface
type Client struct {
	ID string
	IP string

	server *Server
	conn   *websocket.Conn
	send   chan []byte

	mu     sync.RWMutex
	name   string
	lobby  int64
	closed bool
}

var _ types.ClientInterface = (*Client)(nil)

// NewClient 创建客户端，用户名在 claim_name 之后才设置
func NewClient(s *Server, conn *websocket.Conn) *Client {
	return &Client{
		ID:     uuid.New().String(),
		server: s,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		lobby:  types.NoLobby,
	}
}

// ReadPump 从 WebSocket 读取消息并交给处理器
func (c *Client) ReadPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		c.handleDisconnect()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("client", c.ID).Msg("websocket read error")
			}
			return
		}

		allowed, warning := c.server.messageLimiter.AllowMessage(c.ID)
		if !allowed {
			c.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeRateLimit, "消息发送过于频繁"))
			if c.server.messageLimiter.ShouldDisconnect(c.ID) {
				log.Warn().Str("client", c.ID).Str("ip", c.IP).Msg("disconnecting client after repeated rate violations")
				return
			}
			continue
		}
		if warning {
			c.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeRateLimit, "请求过于频繁，请放慢速度"))
		}

		msg, err := codec.Decode(data)
		if err != nil {
			log.Debug().Err(err).Str("client", c.ID).Msg("invalid message")
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			continue
		}

		c.server.handler.Handle(c, msg)
		codec.Release(msg)
	}
}

// WritePump 把发送队列写入 WebSocket，并定时发送 ping
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage 非阻塞入队，缓冲区满时关闭连接
func (c *Client) SendMessage(msg *protocol.Message) {
	data, err := codec.Encode(msg)
	if err != nil {
		log.Error().Err(err).Str("type", string(msg.Type)).Msg("encode message failed")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		log.Warn().Str("client", c.ID).Msg("send buffer full, closing connection")
		c.closeLocked()
	}
}

// handleDisconnect 离开大厅、释放用户名并注销连接
func (c *Client) handleDisconnect() {
	c.server.directory.Disconnect(c)
	c.server.messageLimiter.RemoveClient(c.ID)
	c.server.chatLimiter.RemoveClient(c.ID)
	c.server.unregisterClient(c)
	c.Close()
}

// Close 关闭发送队列，WritePump 随后关闭连接
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// GetID 连接 ID
func (c *Client) GetID() string { return c.ID }

// GetName 用户名，未申请时为空
func (c *Client) GetName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// SetName 设置用户名
func (c *Client) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

// GetLobby 当前大厅 ID
func (c *Client) GetLobby() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lobby
}

// SetLobby 设置当前大厅
func (c *Client) SetLobby(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lobby = id
}
