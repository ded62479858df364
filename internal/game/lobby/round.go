package lobby

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/picture-game/internal/game/timer"
	"github.com/palemoky/picture-game/internal/protocol"
	"github.com/palemoky/picture-game/internal/types"
)

// startRound Active-Waiting → Active-Round
func (l *Lobby) startRound(out *outbox) {
	l.guessesA = nil
	l.guessesB = nil

	if len(l.members) < l.rules.MinPlayers {
		l.notEnoughPlayers(out)
		return
	}
	if len(l.teamA) < 2 || len(l.teamB) < 2 {
		l.balanceTeams(out)
	}

	l.drawerA = l.pickDrawer(l.teamA)
	l.drawerB = l.pickDrawer(l.teamB)
	l.word = l.bank.Draw()

	for _, m := range l.members {
		role := protocol.RolePayload{Drawing: m.Drawing, Team: m.Team.String()}
		if m.Drawing {
			role.Word = l.word
		}
		out.send(m.Client, protocol.MsgRole, role)
	}

	l.timer.SetRemaining(l.settings.RoundTime)
	l.roundActive = true

	log.Debug().Int64("lobby", l.id).Str("drawer_a", l.drawerA.name()).Str("drawer_b", l.drawerB.name()).
		Msg("round started")
}

// pickDrawer 随机选出一名画手，其余队员为猜词者
func (l *Lobby) pickDrawer(team []*Member) *Member {
	drawer := team[l.rng.IntN(len(team))]
	for _, m := range team {
		m.Drawing = m == drawer
	}
	return drawer
}

// SubmitGuess 提交猜词。只在回合进行中、提交者已分队且不是画手时生效。
func (l *Lobby) SubmitGuess(p types.ClientInterface, text string) {
	l.run(func(out *outbox) {
		l.submitGuess(p, text, out)
	})
}

func (l *Lobby) submitGuess(p types.ClientInterface, text string, out *outbox) {
	if !l.roundActive {
		return
	}
	_, m := l.find(p)
	if m == nil || m.Drawing {
		return
	}

	var guesses []string
	switch m.Team {
	case TeamA:
		l.guessesA = append(l.guessesA, text)
		guesses = l.guessesA
	case TeamB:
		l.guessesB = append(l.guessesB, text)
		guesses = l.guessesB
	default:
		return
	}
	out.sendAll(l.teamMembers(m.Team), protocol.MsgGuesses, protocol.GuessesPayload{
		Team:    m.Team.String(),
		Guesses: append([]string(nil), guesses...),
	})

	if !strings.EqualFold(strings.TrimSpace(text), l.word) {
		return
	}
	if m.Team == TeamA {
		l.scoreA++
	} else {
		l.scoreB++
	}
	l.endRound(protocol.OutcomeCorrect, m.name(), m.Team, out)
}

// endRound Active-Round → Active-Waiting，达到获胜分数时结束游戏。
// 回合已结束时直接返回，保证每轮只结束一次。
func (l *Lobby) endRound(outcome, guesser string, team Team, out *outbox) {
	if !l.roundActive {
		return
	}
	l.roundActive = false

	notice := protocol.RoundEndPayload{
		Outcome: outcome,
		Team:    team.String(),
		ScoreA:  l.scoreA,
		ScoreB:  l.scoreB,
	}
	switch outcome {
	case protocol.OutcomeCorrect:
		notice.Guesser = guesser
		notice.Word = l.word
		notice.Message = fmt.Sprintf(msgCorrectFormat, guesser, l.word)
	case protocol.OutcomeDrawerLeft:
		notice.Word = l.word
		notice.Message = msgDrawerLeft
	default:
		notice.Word = l.word
		notice.Message = msgRoundTimeout
	}
	out.sendAll(l.members, protocol.MsgRoundEnd, notice)

	log.Info().Int64("lobby", l.id).Str("outcome", outcome).Int("score_a", l.scoreA).Int("score_b", l.scoreB).
		Msg("round ended")

	for _, m := range l.members {
		m.Drawing = false
	}
	l.drawerA = nil
	l.drawerB = nil

	switch {
	case l.scoreA >= l.settings.ScoreLimit:
		l.gameWon(TeamA, out)
		return
	case l.scoreB >= l.settings.ScoreLimit:
		l.gameWon(TeamB, out)
		return
	}

	l.placeWaiting()
	l.broadcastRoster(out)
	l.timer.SetRemaining(l.rules.PostRoundDelay)
}

// gameWon 宣布获胜队伍，重置后人数足够则立即重新开局
func (l *Lobby) gameWon(winner Team, out *outbox) {
	msg := msgTeamAWins
	if winner == TeamB {
		msg = msgTeamBWins
	}
	for _, m := range l.teamA {
		out.record(m.name(), winner == TeamA)
	}
	for _, m := range l.teamB {
		out.record(m.name(), winner == TeamB)
	}
	out.sendAll(l.members, protocol.MsgGameOver, protocol.GameOverPayload{
		Reason:  protocol.GameOverWinner,
		Winner:  winner.String(),
		Message: msg,
		ScoreA:  l.scoreA,
		ScoreB:  l.scoreB,
	})
	log.Info().Int64("lobby", l.id).Str("winner", winner.String()).Msg("game over")

	l.reset()
	if len(l.members) >= l.rules.MinPlayers {
		l.start(out)
		return
	}
	l.broadcastRoster(out)
}

// notEnoughPlayers 人数低于下限：停止游戏并回到 Forming
func (l *Lobby) notEnoughPlayers(out *outbox) {
	out.sendAll(l.members, protocol.MsgGameOver, protocol.GameOverPayload{
		Reason:  protocol.GameOverNotEnoughPlayer,
		Message: msgNotEnough,
		ScoreA:  l.scoreA,
		ScoreB:  l.scoreB,
	})
	log.Info().Int64("lobby", l.id).Int("players", len(l.members)).Msg("not enough players, game ended")

	l.reset()
	l.broadcastRoster(out)
}

// reset 回到 Forming：清零分数，重置词库，所有成员取消分队
func (l *Lobby) reset() {
	l.started = false
	l.roundActive = false
	l.scoreA = 0
	l.scoreB = 0
	l.guessesA = nil
	l.guessesB = nil
	l.word = ""
	l.bank.Reset()
	l.clearTeams()
}

// OnTimerTick 处理一次计时器滴答（仅在已开局时生效）
func (l *Lobby) OnTimerTick(remaining int) {
	l.run(func(out *outbox) {
		l.onTimerTick(remaining, out)
	})
}

// handleTick 丢弃重新设置倒计时之前产生的滴答
func (l *Lobby) handleTick(tick timer.Tick) {
	l.run(func(out *outbox) {
		if tick.Epoch != l.timer.Epoch() {
			return
		}
		l.onTimerTick(tick.Remaining, out)
	})
}

func (l *Lobby) onTimerTick(remaining int, out *outbox) {
	if !l.started {
		return
	}
	out.sendAll(l.members, protocol.MsgTimer, protocol.TimerPayload{Remaining: remaining})

	if remaining > 0 {
		return
	}
	if l.roundActive {
		l.endRound(protocol.OutcomeTimeout, "", TeamNone, out)
		return
	}
	l.startRound(out)
}
