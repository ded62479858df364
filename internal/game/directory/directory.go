// Package directory 是进程内所有大厅与已占用用户名的注册表，
// 负责把加入、创建、离开请求路由到对应的大厅。
//
// 锁顺序：先取目录锁，再取大厅锁，绝不反向。
package directory

import (
	"errors"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/picture-game/internal/apperrors"
	"github.com/palemoky/picture-game/internal/config"
	"github.com/palemoky/picture-game/internal/game/lobby"
	"github.com/palemoky/picture-game/internal/game/words"
	"github.com/palemoky/picture-game/internal/types"
)

// keyAlphabet 私人大厅密钥字符集
const keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Bounds 私人大厅自定义设置的取值范围（闭区间）
type Bounds struct {
	MinRoundTime  int
	MaxRoundTime  int
	MinScoreLimit int
	MaxScoreLimit int
}

// Options 目录参数
type Options struct {
	Banks     []*words.Bank
	Rules     lobby.Rules
	Defaults  lobby.Settings
	Bounds    Bounds
	KeyLength int
	Clock     clockwork.Clock
	Rand      *rand.Rand
	Recorder  types.ResultRecorder
}

// OptionsFromConfig 根据游戏配置构造目录参数
func OptionsFromConfig(cfg config.GameConfig, banks []*words.Bank) Options {
	return Options{
		Banks: banks,
		Rules: lobby.Rules{
			MinPlayers:     cfg.MinPlayers,
			MaxPlayers:     cfg.MaxPlayers,
			PostRoundDelay: cfg.PostRoundDelay,
		},
		Defaults: lobby.Settings{RoundTime: cfg.RoundTime, ScoreLimit: cfg.ScoreLimit},
		Bounds: Bounds{
			MinRoundTime:  cfg.MinRoundTime,
			MaxRoundTime:  cfg.MaxRoundTime,
			MinScoreLimit: cfg.MinScoreLimit,
			MaxScoreLimit: cfg.MaxScoreLimit,
		},
		KeyLength: cfg.KeyLength,
	}
}

// Directory 大厅目录
type Directory struct {
	opts Options

	mu      sync.Mutex
	lobbies map[int64]*lobby.Lobby
	order   []int64          // 创建顺序
	names   map[string]bool  // 已占用的用户名
	keys    map[string]int64 // 私人大厅密钥 → 大厅 ID
	nextID  int64
	rng     *rand.Rand
}

// New 创建目录。词库为空时返回 ErrEmptyBank。
func New(opts Options) (*Directory, error) {
	if _, err := words.Combine(words.AllBankName, opts.Banks...); err != nil {
		return nil, err
	}
	if opts.KeyLength <= 0 {
		opts.KeyLength = 8
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Directory{
		opts:    opts,
		lobbies: make(map[int64]*lobby.Lobby),
		names:   make(map[string]bool),
		keys:    make(map[string]int64),
		rng:     rng,
	}, nil
}

// --- 用户名 ---

// ClaimName 占用用户名，为空或已被占用时返回 ErrNameTaken
func (d *Directory) ClaimName(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if name == "" || d.names[name] {
		return apperrors.ErrNameTaken
	}
	d.names[name] = true
	return nil
}

// ReleaseName 释放用户名
func (d *Directory) ReleaseName(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.names, name)
}

// NameTaken 用户名是否已被占用
func (d *Directory) NameTaken(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.names[name]
}

// --- 大厅路由 ---

// JoinPublic 按创建顺序加入第一个有空位的公共大厅，没有则新建
func (d *Directory) JoinPublic(p types.ClientInterface) (int64, error) {
	if p.GetLobby() != types.NoLobby {
		return 0, apperrors.ErrAlreadyInLobby
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, id := range d.order {
		l := d.lobbies[id]
		if l.Private() {
			continue
		}
		err := l.AddParticipant(p)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, apperrors.ErrLobbyFull) {
			return 0, err
		}
	}

	l := d.newLobbyLocked(false, "", d.opts.Defaults)
	if err := l.AddParticipant(p); err != nil {
		return 0, err
	}
	return l.ID(), nil
}

// CreatePrivate 创建私人大厅并加入，返回密钥。
// 超出范围的自定义值被忽略，使用默认值。
func (d *Directory) CreatePrivate(p types.ClientInterface, roundTime, scoreLimit int) (string, error) {
	if p.GetLobby() != types.NoLobby {
		return "", apperrors.ErrAlreadyInLobby
	}

	settings := d.opts.Defaults
	b := d.opts.Bounds
	if roundTime >= b.MinRoundTime && roundTime <= b.MaxRoundTime {
		settings.RoundTime = roundTime
	}
	if scoreLimit >= b.MinScoreLimit && scoreLimit <= b.MaxScoreLimit {
		settings.ScoreLimit = scoreLimit
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	key := d.generateKeyLocked()
	l := d.newLobbyLocked(true, key, settings)
	d.keys[key] = l.ID()
	if err := l.AddParticipant(p); err != nil {
		return "", err
	}
	return key, nil
}

// JoinPrivate 通过密钥加入私人大厅。密钥错误或大厅已满都返回 ErrLobbyNotFound。
func (d *Directory) JoinPrivate(p types.ClientInterface, key string) (int64, error) {
	if p.GetLobby() != types.NoLobby {
		return 0, apperrors.ErrAlreadyInLobby
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	id, ok := d.keys[normalizeKey(key)]
	if !ok {
		return 0, apperrors.ErrLobbyNotFound
	}
	if err := d.lobbies[id].AddParticipant(p); err != nil {
		if errors.Is(err, apperrors.ErrLobbyFull) {
			return 0, apperrors.ErrLobbyNotFound
		}
		return 0, err
	}
	return id, nil
}

// LobbyByKey 按密钥查找私人大厅
func (d *Directory) LobbyByKey(key string) (*lobby.Lobby, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id, ok := d.keys[normalizeKey(key)]
	if !ok {
		return nil, false
	}
	return d.lobbies[id], true
}

// Leave 离开指定大厅，大厅不存在或不在其中时无效果
func (d *Directory) Leave(p types.ClientInterface, lobbyID int64) bool {
	l := d.Lobby(lobbyID)
	if l == nil {
		return false
	}
	return l.RemoveParticipant(p)
}

// Disconnect 连接断开：离开当前大厅并释放用户名
func (d *Directory) Disconnect(p types.ClientInterface) {
	if id := p.GetLobby(); id != types.NoLobby {
		d.Leave(p, id)
	}
	if name := p.GetName(); name != "" {
		d.ReleaseName(name)
	}
}

// --- 查询 ---

// Lobby 按 ID 查找大厅
func (d *Directory) Lobby(id int64) *lobby.Lobby {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lobbies[id]
}

// LobbyCount 大厅数量
func (d *Directory) LobbyCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.lobbies)
}

// ActiveGamesCount 正在进行游戏的大厅数量
func (d *Directory) ActiveGamesCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	count := 0
	for _, l := range d.lobbies {
		if l.Started() {
			count++
		}
	}
	return count
}

// Snapshots 按 ID 排序的所有大厅快照
func (d *Directory) Snapshots() []lobby.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]lobby.Snapshot, 0, len(d.lobbies))
	for _, l := range d.lobbies {
		out = append(out, l.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Close 停止所有大厅的计时器
func (d *Directory) Close() {
	d.mu.Lock()
	lobbies := make([]*lobby.Lobby, 0, len(d.lobbies))
	for _, l := range d.lobbies {
		lobbies = append(lobbies, l)
	}
	d.mu.Unlock()

	for _, l := range lobbies {
		l.Close()
	}
}

// --- 内部 ---

func (d *Directory) newLobbyLocked(private bool, key string, settings lobby.Settings) *lobby.Lobby {
	// 每个大厅持有独立的合并词库，已用标记互不影响
	bank, _ := words.Combine(words.AllBankName, d.opts.Banks...)

	id := d.nextID
	d.nextID++
	l := lobby.New(lobby.Options{
		ID:       id,
		Private:  private,
		Key:      key,
		Settings: settings,
		Rules:    d.opts.Rules,
		Bank:     bank,
		Clock:    d.opts.Clock,
		Rand:     rand.New(rand.NewPCG(d.rng.Uint64(), d.rng.Uint64())),
		Recorder: d.opts.Recorder,
	})
	d.lobbies[id] = l
	d.order = append(d.order, id)

	log.Info().Int64("lobby", id).Bool("private", private).Int("round_time", settings.RoundTime).
		Int("score_limit", settings.ScoreLimit).Msg("lobby created")
	return l
}

// generateKeyLocked 生成未被占用的密钥
func (d *Directory) generateKeyLocked() string {
	buf := make([]byte, d.opts.KeyLength)
	for {
		for i := range buf {
			buf[i] = keyAlphabet[d.rng.IntN(len(keyAlphabet))]
		}
		key := string(buf)
		if _, exists := d.keys[key]; !exists {
			return key
		}
	}
}

func normalizeKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}
