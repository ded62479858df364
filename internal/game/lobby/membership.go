package lobby

import (
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/picture-game/internal/apperrors"
	"github.com/palemoky/picture-game/internal/protocol"
	"github.com/palemoky/picture-game/internal/types"
)

// AddParticipant 加入大厅。
// 已开局且回合进行中时进入等待名单；已开局但在两轮之间时直接分队；
// 未开局且人数达到下限时自动开局。
func (l *Lobby) AddParticipant(p types.ClientInterface) error {
	var err error
	l.run(func(out *outbox) {
		err = l.addParticipant(p, out)
	})
	return err
}

func (l *Lobby) addParticipant(p types.ClientInterface, out *outbox) error {
	if _, m := l.find(p); m != nil {
		return apperrors.ErrAlreadyInLobby
	}
	if len(l.members) >= l.rules.MaxPlayers {
		return apperrors.ErrLobbyFull
	}

	m := &Member{Client: p}
	l.members = append(l.members, m)
	p.SetLobby(l.id)
	out.send(p, protocol.MsgLobbyJoined, protocol.LobbyJoinedPayload{
		LobbyID: l.id,
		Private: l.private,
		Key:     l.key,
	})

	switch {
	case l.started && l.roundActive:
		m.Team = TeamWaiting
		l.waiting = append(l.waiting, m)
	case l.started:
		l.placeOnTeam(m)
	}

	log.Info().Int64("lobby", l.id).Str("player", p.GetName()).Int("size", len(l.members)).
		Str("team", m.Team.String()).Msg("player joined lobby")

	if !l.started && len(l.members) >= l.rules.MinPlayers {
		l.start(out)
		return nil
	}
	l.broadcastRoster(out)
	return nil
}

// RemoveParticipant 离开大厅，重复调用无效果。
// 返回该参与者是否确实在大厅中。
func (l *Lobby) RemoveParticipant(p types.ClientInterface) bool {
	var removed bool
	l.run(func(out *outbox) {
		removed = l.removeParticipant(p, out)
	})
	return removed
}

func (l *Lobby) removeParticipant(p types.ClientInterface, out *outbox) bool {
	idx, m := l.find(p)
	if m == nil {
		return false
	}

	l.members = slices.Delete(l.members, idx, idx+1)
	l.teamA = removeMember(l.teamA, m)
	l.teamB = removeMember(l.teamB, m)
	l.waiting = removeMember(l.waiting, m)
	if p.GetLobby() == l.id {
		p.SetLobby(types.NoLobby)
	}
	out.send(p, protocol.MsgLobbyLeft, nil)

	wasDrawer := l.roundActive && (m == l.drawerA || m == l.drawerB)
	log.Info().Int64("lobby", l.id).Str("player", p.GetName()).Int("size", len(l.members)).
		Bool("drawer", wasDrawer).Msg("player left lobby")

	switch {
	case l.started && len(l.members) < l.rules.MinPlayers:
		l.notEnoughPlayers(out)
	case wasDrawer:
		l.endRound(protocol.OutcomeDrawerLeft, "", m.Team, out)
	default:
		l.broadcastRoster(out)
	}
	return true
}

func removeMember(list []*Member, m *Member) []*Member {
	return slices.DeleteFunc(list, func(x *Member) bool { return x == m })
}

// Start 人数达到下限且未开局时开局，返回是否开局
func (l *Lobby) Start() bool {
	var ok bool
	l.run(func(out *outbox) {
		if l.started || len(l.members) < l.rules.MinPlayers {
			return
		}
		l.start(out)
		ok = true
	})
	return ok
}

// start Forming → Active-Waiting
func (l *Lobby) start(out *outbox) {
	l.started = true
	l.roundActive = false
	out.sendAll(l.members, protocol.MsgGameStart, nil)

	l.clearTeams()
	for _, m := range l.members {
		l.placeOnTeam(m)
	}

	l.timer.SetRemaining(l.rules.PostRoundDelay)
	l.timer.Start()
	l.broadcastRoster(out)

	log.Info().Int64("lobby", l.id).Int("players", len(l.members)).Msg("lobby started")
}

// placeOnTeam 加入人数较少的队伍，人数相同时随机
func (l *Lobby) placeOnTeam(m *Member) {
	m.Drawing = false
	team := TeamA
	switch {
	case len(l.teamA) > len(l.teamB):
		team = TeamB
	case len(l.teamA) == len(l.teamB) && l.rng.IntN(2) == 1:
		team = TeamB
	}

	m.Team = team
	if team == TeamA {
		l.teamA = append(l.teamA, m)
	} else {
		l.teamB = append(l.teamB, m)
	}
}

// balanceTeams 清空两队并按加入顺序重新分配全部成员
func (l *Lobby) balanceTeams(out *outbox) {
	out.sendAll(l.members, protocol.MsgRebalance, nil)
	l.clearTeams()
	for _, m := range l.members {
		l.placeOnTeam(m)
	}
	l.broadcastRoster(out)
}

// placeWaiting 把等待名单中的成员分队
func (l *Lobby) placeWaiting() {
	for _, m := range l.waiting {
		l.placeOnTeam(m)
	}
	l.waiting = nil
}

func (l *Lobby) clearTeams() {
	l.teamA = nil
	l.teamB = nil
	l.waiting = nil
	l.drawerA = nil
	l.drawerB = nil
	for _, m := range l.members {
		m.Team = TeamNone
		m.Drawing = false
	}
}
