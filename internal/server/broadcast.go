package server

import (
	"github.com/palemoky/picture-game/internal/protocol"
	"github.com/palemoky/picture-game/internal/types"
)

// GetOnlineCount 获取在线连接数
func (s *Server) GetOnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Broadcast 广播消息给所有连接
func (s *Server) Broadcast(msg *protocol.Message) {
	for _, client := range s.snapshotClients() {
		client.SendMessage(msg)
	}
}

// BroadcastToIdle 广播消息给不在任何大厅中的连接
func (s *Server) BroadcastToIdle(msg *protocol.Message) {
	for _, client := range s.snapshotClients() {
		if client.GetLobby() == types.NoLobby {
			client.SendMessage(msg)
		}
	}
}

// snapshotClients 复制连接列表，发送时不持有 clientsMu
func (s *Server) snapshotClients() []*Client {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	clients := make([]*Client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	return clients
}
