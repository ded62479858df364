//go:build !production

package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/picture-game/internal/protocol"
	"github.com/palemoky/picture-game/internal/types"
)

// MockClient 实现 types.ClientInterface 的 mock
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) SetName(name string) {
	m.Called(name)
}

func (m *MockClient) GetLobby() int64 {
	args := m.Called()
	return args.Get(0).(int64)
}

func (m *MockClient) SetLobby(id int64) {
	m.Called(id)
}

func (m *MockClient) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockClient) Close() {
	m.Called()
}

// SimpleClient 记录收到消息的客户端，不使用 testify（用于不需要断言调用的测试）。
// 可在多个协程中使用。
type SimpleClient struct {
	ID string

	mu       sync.Mutex
	name     string
	lobby    int64
	messages []*protocol.Message
	closed   bool
}

// NewSimpleClient 创建不在任何大厅中的客户端
func NewSimpleClient(id, name string) *SimpleClient {
	return &SimpleClient{ID: id, name: name, lobby: types.NoLobby}
}

func (c *SimpleClient) GetID() string { return c.ID }

func (c *SimpleClient) GetName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

func (c *SimpleClient) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

func (c *SimpleClient) GetLobby() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lobby
}

func (c *SimpleClient) SetLobby(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lobby = id
}

func (c *SimpleClient) SendMessage(msg *protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.messages = append(c.messages, msg)
}

func (c *SimpleClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Closed 是否已关闭
func (c *SimpleClient) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Messages 返回收到的全部消息
func (c *SimpleClient) Messages() []*protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*protocol.Message(nil), c.messages...)
}

// MessagesOfType 返回指定类型的消息
func (c *SimpleClient) MessagesOfType(t protocol.MessageType) []*protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*protocol.Message
	for _, m := range c.messages {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

// Last 返回指定类型的最后一条消息，没有时返回 nil
func (c *SimpleClient) Last(t protocol.MessageType) *protocol.Message {
	msgs := c.MessagesOfType(t)
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

// Types 按顺序返回收到的消息类型
func (c *SimpleClient) Types() []protocol.MessageType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]protocol.MessageType, len(c.messages))
	for i, m := range c.messages {
		out[i] = m.Type
	}
	return out
}

// Reset 清空已收到的消息
func (c *SimpleClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}
