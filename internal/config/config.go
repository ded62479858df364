package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// 默认值
const (
	defaultHost           = "0.0.0.0"
	defaultPort           = 1780
	defaultMaxConnections = 1000
	defaultRedisAddr      = "localhost:6379"

	defaultRoundTime       = 90
	defaultMinRoundTime    = 30
	defaultMaxRoundTime    = 120
	defaultScoreLimit      = 7
	defaultMinScoreLimit   = 1
	defaultMaxScoreLimit   = 20
	defaultMinPlayers      = 4
	defaultMaxPlayers      = 10
	defaultPostRoundDelay  = 10
	defaultKeyLength       = 8
	defaultShutdownTimeout = 30

	defaultWordsDir   = "words"
	defaultWordsIndex = "index.txt"

	defaultLogLevel = "info"
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Game     GameConfig     `yaml:"game"`
	Words    WordsConfig    `yaml:"words"`
	Security SecurityConfig `yaml:"security"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxConnections int    `yaml:"max_connections"`
	InviteURL      string `yaml:"invite_url"` // 私人大厅邀请链接前缀，二维码内容为前缀+密钥
}

// Addr 返回监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig Redis 配置（排行榜）
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Disabled bool   `yaml:"disabled"`
}

// GameConfig 游戏配置
type GameConfig struct {
	RoundTime       int `yaml:"round_time"`       // 每轮时长（秒）
	MinRoundTime    int `yaml:"min_round_time"`   // 私人大厅可设置的最短时长
	MaxRoundTime    int `yaml:"max_round_time"`   // 私人大厅可设置的最长时长
	ScoreLimit      int `yaml:"score_limit"`      // 获胜分数
	MinScoreLimit   int `yaml:"min_score_limit"`  // 私人大厅可设置的最低分数
	MaxScoreLimit   int `yaml:"max_score_limit"`  // 私人大厅可设置的最高分数
	MinPlayers      int `yaml:"min_players"`      // 开局最少人数
	MaxPlayers      int `yaml:"max_players"`      // 大厅容量
	PostRoundDelay  int `yaml:"post_round_delay"` // 两轮之间的间隔（秒）
	KeyLength       int `yaml:"key_length"`       // 私人大厅密钥长度
	ShutdownTimeout int `yaml:"shutdown_timeout"` // 优雅关闭超时（秒）
}

// RoundTimeDuration 返回每轮时长
func (c *GameConfig) RoundTimeDuration() time.Duration {
	return time.Duration(c.RoundTime) * time.Second
}

// PostRoundDelayDuration 返回两轮间隔时长
func (c *GameConfig) PostRoundDelayDuration() time.Duration {
	return time.Duration(c.PostRoundDelay) * time.Second
}

// ShutdownTimeoutDuration 返回优雅关闭超时时长
func (c *GameConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// WordsConfig 词库配置
type WordsConfig struct {
	Dir   string `yaml:"dir"`   // 词库目录
	Index string `yaml:"index"` // 索引文件名，每行一个词库文件
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins []string           `yaml:"allowed_origins"`
	IPWhitelist    []string           `yaml:"ip_whitelist"` // 非空时只允许这些 IP 连接
	IPBlacklist    []string           `yaml:"ip_blacklist"` // 优先于白名单
	RateLimit      RateLimitConfig    `yaml:"rate_limit"`
	MessageLimit   MessageLimitConfig `yaml:"message_limit"`
	ChatLimit      ChatLimitConfig    `yaml:"chat_limit"`
}

// RateLimitConfig 连接速率限制
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	BanDuration  int `yaml:"ban_duration"` // 秒
}

// BanDurationTime 返回封禁时长
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// MessageLimitConfig 消息速率限制（绘画消息较多，默认值偏大）
type MessageLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
}

// ChatLimitConfig 聊天与猜词速率限制
type ChatLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	Cooldown     int `yaml:"cooldown"` // 秒
}

// CooldownDuration 返回冷却时长
func (c *ChatLimitConfig) CooldownDuration() time.Duration {
	return time.Duration(c.Cooldown) * time.Second
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // 为空时输出到 stderr
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.Host, defaultHost)
	setDefault(&c.Server.Port, defaultPort)
	setDefault(&c.Server.MaxConnections, defaultMaxConnections)
	setDefault(&c.Redis.Addr, defaultRedisAddr)

	g := &c.Game
	setDefault(&g.RoundTime, defaultRoundTime)
	setDefault(&g.MinRoundTime, defaultMinRoundTime)
	setDefault(&g.MaxRoundTime, defaultMaxRoundTime)
	setDefault(&g.ScoreLimit, defaultScoreLimit)
	setDefault(&g.MinScoreLimit, defaultMinScoreLimit)
	setDefault(&g.MaxScoreLimit, defaultMaxScoreLimit)
	setDefault(&g.MinPlayers, defaultMinPlayers)
	setDefault(&g.MaxPlayers, defaultMaxPlayers)
	setDefault(&g.PostRoundDelay, defaultPostRoundDelay)
	setDefault(&g.KeyLength, defaultKeyLength)
	setDefault(&g.ShutdownTimeout, defaultShutdownTimeout)

	setDefault(&c.Words.Dir, defaultWordsDir)
	setDefault(&c.Words.Index, defaultWordsIndex)

	if len(c.Security.AllowedOrigins) == 0 {
		c.Security.AllowedOrigins = []string{"*"}
	}
	s := &c.Security
	setDefault(&s.RateLimit.MaxPerSecond, 10)
	setDefault(&s.RateLimit.MaxPerMinute, 60)
	setDefault(&s.RateLimit.BanDuration, 60)
	setDefault(&s.MessageLimit.MaxPerSecond, 120)
	setDefault(&s.ChatLimit.MaxPerSecond, 3)
	setDefault(&s.ChatLimit.MaxPerMinute, 60)
	setDefault(&s.ChatLimit.Cooldown, 5)

	setDefault(&c.Log.Level, defaultLogLevel)
}

func setDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}

// Validate 检查配置之间的约束
func (c *Config) Validate() error {
	g := c.Game
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Server.Port)
	}
	if g.MinPlayers < 4 {
		return fmt.Errorf("min_players must be at least 4 (a drawer and a guesser per team): %d", g.MinPlayers)
	}
	if g.MinPlayers > g.MaxPlayers {
		return fmt.Errorf("min_players (%d) exceeds max_players (%d)", g.MinPlayers, g.MaxPlayers)
	}
	if g.MinRoundTime < 1 {
		return fmt.Errorf("min_round_time must be positive: %d", g.MinRoundTime)
	}
	if g.MinRoundTime > g.MaxRoundTime || g.RoundTime < g.MinRoundTime || g.RoundTime > g.MaxRoundTime {
		return fmt.Errorf("round_time %d outside [%d, %d]", g.RoundTime, g.MinRoundTime, g.MaxRoundTime)
	}
	if g.MinScoreLimit > g.MaxScoreLimit || g.ScoreLimit < g.MinScoreLimit || g.ScoreLimit > g.MaxScoreLimit {
		return fmt.Errorf("score_limit %d outside [%d, %d]", g.ScoreLimit, g.MinScoreLimit, g.MaxScoreLimit)
	}
	if g.PostRoundDelay < 1 {
		return errors.New("post_round_delay must be positive")
	}
	if g.KeyLength < 4 {
		return errors.New("key_length must be at least 4")
	}
	return nil
}
