package lobby

import (
	"time"

	"github.com/palemoky/picture-game/internal/protocol"
	"github.com/palemoky/picture-game/internal/types"
)

// Chat 向大厅所有成员转发聊天消息
func (l *Lobby) Chat(p types.ClientInterface, content string) {
	l.run(func(out *outbox) {
		if _, m := l.find(p); m == nil {
			return
		}
		out.sendAll(l.members, protocol.MsgChat, protocol.ChatPayload{
			Sender:  p.GetName(),
			Content: content,
			Time:    time.Now().Unix(),
		})
	})
}

// RelayDrawing 把画手的绘画数据原样转发给同队的猜词者
func (l *Lobby) RelayDrawing(p types.ClientInterface, sample protocol.DrawingPayload) {
	l.run(func(out *outbox) {
		if !l.roundActive {
			return
		}
		_, m := l.find(p)
		if m == nil || !m.Drawing {
			return
		}
		for _, mate := range l.teamMembers(m.Team) {
			if mate != m {
				out.send(mate.Client, protocol.MsgDrawing, sample)
			}
		}
	})
}

// Refresh 重新发送名单；回合进行中时一并发送该成员的角色
func (l *Lobby) Refresh(p types.ClientInterface) {
	l.run(func(out *outbox) {
		_, m := l.find(p)
		if m == nil {
			return
		}
		out.send(p, protocol.MsgRoster, l.roster())
		if l.roundActive && (m.Team == TeamA || m.Team == TeamB) {
			role := protocol.RolePayload{Drawing: m.Drawing, Team: m.Team.String()}
			if m.Drawing {
				role.Word = l.word
			}
			out.send(p, protocol.MsgRole, role)
		}
	})
}

func (l *Lobby) broadcastRoster(out *outbox) {
	out.sendAll(l.members, protocol.MsgRoster, l.roster())
}

func (l *Lobby) roster() protocol.RosterPayload {
	return protocol.RosterPayload{
		LobbyID: l.id,
		Started: l.started,
		Members: names(l.members),
		TeamA:   names(l.teamA),
		TeamB:   names(l.teamB),
		Waiting: names(l.waiting),
	}
}

func names(list []*Member) []string {
	if len(list) == 0 {
		return nil
	}
	out := make([]string, len(list))
	for i, m := range list {
		out[i] = m.name()
	}
	return out
}

// Snapshot 大厅状态的只读视图
type Snapshot struct {
	ID          int64
	Private     bool
	Key         string
	Settings    Settings
	Started     bool
	RoundActive bool
	Members     []string
	TeamA       []string
	TeamB       []string
	Waiting     []string
	ScoreA      int
	ScoreB      int
	Word        string
	DrawerA     string
	DrawerB     string
	GuessesA    []string
	GuessesB    []string
}

// Snapshot 返回一致的状态快照
func (l *Lobby) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Snapshot{
		ID:          l.id,
		Private:     l.private,
		Key:         l.key,
		Settings:    l.settings,
		Started:     l.started,
		RoundActive: l.roundActive,
		Members:     names(l.members),
		TeamA:       names(l.teamA),
		TeamB:       names(l.teamB),
		Waiting:     names(l.waiting),
		ScoreA:      l.scoreA,
		ScoreB:      l.scoreB,
		Word:        l.word,
		GuessesA:    append([]string(nil), l.guessesA...),
		GuessesB:    append([]string(nil), l.guessesB...),
	}
	if l.drawerA != nil {
		s.DrawerA = l.drawerA.name()
	}
	if l.drawerB != nil {
		s.DrawerB = l.drawerB.name()
	}
	return s
}
