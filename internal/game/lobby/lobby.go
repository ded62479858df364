// Package lobby 实现组队你画我猜的大厅：成员与分队、回合状态机、计分与计时。
//
// 所有状态由 Lobby.mu 保护。对外通知先写入 outbox，解锁后再发送，
// 因此任何网络 I/O 都不会在持锁期间发生。
package lobby

import (
	"math/rand/v2"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/palemoky/picture-game/internal/game/timer"
	"github.com/palemoky/picture-game/internal/game/words"
	"github.com/palemoky/picture-game/internal/types"
)

// Team 队伍归属
type Team int

const (
	TeamNone    Team = iota // 未开局，未分队
	TeamA                   // A 队
	TeamB                   // B 队
	TeamWaiting             // 回合中途加入，等待下一轮分队
)

func (t Team) String() string {
	switch t {
	case TeamA:
		return "A"
	case TeamB:
		return "B"
	case TeamWaiting:
		return "waiting"
	default:
		return ""
	}
}

// 游戏结束提示
const (
	msgTeamAWins     = "Team A wins!  Restarting..."
	msgTeamBWins     = "Team B wins!  Restarting..."
	msgNotEnough     = "Not enough players. Ending game..."
	msgRoundTimeout  = "Round ended with a timeout"
	msgDrawerLeft    = "The drawer left. Round ended"
	msgCorrectFormat = "%s correctly guessed %s"
)

// Settings 每个大厅可调整的规则（仅私人大厅可自定义）
type Settings struct {
	RoundTime  int // 每轮秒数
	ScoreLimit int // 获胜分数
}

// Rules 所有大厅共享的固定规则
type Rules struct {
	MinPlayers     int
	MaxPlayers     int
	PostRoundDelay int // 两轮之间的秒数
}

// DefaultRules 默认规则
func DefaultRules() Rules {
	return Rules{MinPlayers: 4, MaxPlayers: 10, PostRoundDelay: 10}
}

// DefaultSettings 默认设置
func DefaultSettings() Settings {
	return Settings{RoundTime: 90, ScoreLimit: 7}
}

// Options 创建大厅的参数
type Options struct {
	ID       int64
	Private  bool
	Key      string
	Settings Settings
	Rules    Rules
	Bank     *words.Bank
	Clock    clockwork.Clock      // 为空时使用真实时钟
	Rand     *rand.Rand           // 为空时使用随机种子
	Recorder types.ResultRecorder // 可为空
}

// Member 大厅成员及其本局状态
type Member struct {
	Client  types.ClientInterface
	Team    Team
	Drawing bool
}

func (m *Member) name() string {
	return m.Client.GetName()
}

// Lobby 游戏大厅
type Lobby struct {
	id       int64
	private  bool
	key      string
	settings Settings
	rules    Rules

	mu          sync.Mutex
	members     []*Member // 按加入顺序
	teamA       []*Member
	teamB       []*Member
	waiting     []*Member
	scoreA      int
	scoreB      int
	guessesA    []string
	guessesB    []string
	word        string
	drawerA     *Member
	drawerB     *Member
	started     bool
	roundActive bool

	bank     *words.Bank
	rng      *rand.Rand
	recorder types.ResultRecorder

	timer *timer.RoundTimer
	ticks chan timer.Tick
	quit  chan struct{}
	done  chan struct{}
	once  sync.Once
}

// New 创建大厅并启动它的 tick 消费协程。计时器在首次开局时启动。
func New(opts Options) *Lobby {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Bank != nil {
		opts.Bank.SetRand(rng)
	}

	l := &Lobby{
		id:       opts.ID,
		private:  opts.Private,
		key:      opts.Key,
		settings: opts.Settings,
		rules:    opts.Rules,
		bank:     opts.Bank,
		rng:      rng,
		recorder: opts.Recorder,
		ticks:    make(chan timer.Tick, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	l.timer = timer.New(opts.Clock, l.ticks)

	go l.loop()
	return l
}

// loop 把计时器的滴答串行送入大厅
func (l *Lobby) loop() {
	defer close(l.done)
	for {
		select {
		case <-l.quit:
			return
		case tick := <-l.ticks:
			l.handleTick(tick)
		}
	}
}

// Close 停止计时器与 tick 协程
func (l *Lobby) Close() {
	l.once.Do(func() {
		l.timer.Stop()
		close(l.quit)
		<-l.done
	})
}

// ID 大厅编号
func (l *Lobby) ID() int64 { return l.id }

// Private 是否为私人大厅
func (l *Lobby) Private() bool { return l.private }

// Key 私人大厅密钥，公共大厅为空
func (l *Lobby) Key() string { return l.key }

// Settings 大厅设置
func (l *Lobby) Settings() Settings { return l.settings }

// Timer 大厅计时器
func (l *Lobby) Timer() *timer.RoundTimer { return l.timer }

// Size 当前人数
func (l *Lobby) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.members)
}

// HasSlot 是否还有空位
func (l *Lobby) HasSlot() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.members) < l.rules.MaxPlayers
}

// Started 是否已开局
func (l *Lobby) Started() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.started
}

// run 在锁内执行 fn，解锁后发送收集到的通知
func (l *Lobby) run(fn func(out *outbox)) {
	out := &outbox{}
	l.mu.Lock()
	fn(out)
	l.mu.Unlock()
	out.flush(l.recorder)
}

func (l *Lobby) find(p types.ClientInterface) (int, *Member) {
	id := p.GetID()
	for i, m := range l.members {
		if m.Client.GetID() == id {
			return i, m
		}
	}
	return -1, nil
}

func (l *Lobby) teamMembers(t Team) []*Member {
	switch t {
	case TeamA:
		return l.teamA
	case TeamB:
		return l.teamB
	default:
		return nil
	}
}
