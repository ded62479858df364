package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	t.Parallel()

	content := `
server:
  host: "127.0.0.1"
  port: 8080
  max_connections: 5000
  invite_url: "https://game.example/join?key="

redis:
  addr: "redis:6379"
  password: "secret"
  db: 1

game:
  round_time: 60
  score_limit: 5
  post_round_delay: 5

words:
  dir: "/srv/words"
  index: "lists.txt"

security:
  allowed_origins:
    - "http://localhost:3000"
    - "https://example.com"
  chat_limit:
    max_per_second: 2
    max_per_minute: 30
    cooldown: 10

log:
  level: debug
`
	cfg, err := Load(writeConfig(t, content))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://game.example/join?key=", cfg.Server.InviteURL)
	assert.Equal(t, 5000, cfg.Server.MaxConnections)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "secret", cfg.Redis.Password)
	assert.Equal(t, 1, cfg.Redis.DB)
	assert.Equal(t, 60, cfg.Game.RoundTime)
	assert.Equal(t, 5, cfg.Game.ScoreLimit)
	assert.Equal(t, 5, cfg.Game.PostRoundDelay)
	assert.Equal(t, "/srv/words", cfg.Words.Dir)
	assert.Equal(t, "lists.txt", cfg.Words.Index)
	assert.Len(t, cfg.Security.AllowedOrigins, 2)
	assert.Equal(t, 2, cfg.Security.ChatLimit.MaxPerSecond)
	assert.Equal(t, "debug", cfg.Log.Level)

	// 未配置的字段使用默认值
	assert.Equal(t, defaultMinPlayers, cfg.Game.MinPlayers)
	assert.Equal(t, defaultMaxPlayers, cfg.Game.MaxPlayers)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	cfg, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "invalid: yaml: :::"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, defaultHost, cfg.Server.Host)
	assert.Equal(t, defaultPort, cfg.Server.Port)
	assert.Equal(t, defaultMaxConnections, cfg.Server.MaxConnections)
	assert.Equal(t, defaultRedisAddr, cfg.Redis.Addr)
	assert.False(t, cfg.Redis.Disabled)
	assert.Equal(t, 90, cfg.Game.RoundTime)
	assert.Equal(t, 30, cfg.Game.MinRoundTime)
	assert.Equal(t, 120, cfg.Game.MaxRoundTime)
	assert.Equal(t, 7, cfg.Game.ScoreLimit)
	assert.Equal(t, 1, cfg.Game.MinScoreLimit)
	assert.Equal(t, 20, cfg.Game.MaxScoreLimit)
	assert.Equal(t, 4, cfg.Game.MinPlayers)
	assert.Equal(t, 10, cfg.Game.MaxPlayers)
	assert.Equal(t, 10, cfg.Game.PostRoundDelay)
	assert.Equal(t, 8, cfg.Game.KeyLength)
	assert.Equal(t, defaultWordsDir, cfg.Words.Dir)
	assert.Equal(t, defaultWordsIndex, cfg.Words.Index)
	assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, defaultLogLevel, cfg.Log.Level)
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, defaultHost, cfg.Server.Host)
	assert.Equal(t, defaultPort, cfg.Server.Port)
	assert.Equal(t, defaultRoundTime, cfg.Game.RoundTime)
	assert.Equal(t, "0.0.0.0:1780", cfg.Server.Addr())
	assert.NoError(t, cfg.Validate())
}

func TestGameConfig_DurationMethods(t *testing.T) {
	t.Parallel()

	cfg := &GameConfig{
		RoundTime:       90,
		PostRoundDelay:  10,
		ShutdownTimeout: 30,
	}

	assert.Equal(t, 90*time.Second, cfg.RoundTimeDuration())
	assert.Equal(t, 10*time.Second, cfg.PostRoundDelayDuration())
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeoutDuration())
}

func TestRateLimitConfig_BanDurationTime(t *testing.T) {
	t.Parallel()

	cfg := &RateLimitConfig{BanDuration: 120}
	assert.Equal(t, 120*time.Second, cfg.BanDurationTime())
}

func TestChatLimitConfig_CooldownDuration(t *testing.T) {
	t.Parallel()

	cfg := &ChatLimitConfig{Cooldown: 10}
	assert.Equal(t, 10*time.Second, cfg.CooldownDuration())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "invalid port"},
		{"too few players", func(c *Config) { c.Game.MinPlayers = 2 }, "at least 4"},
		{"min above max", func(c *Config) { c.Game.MinPlayers = 12 }, "exceeds max_players"},
		{"round time out of range", func(c *Config) { c.Game.RoundTime = 200 }, "round_time"},
		{"score limit out of range", func(c *Config) { c.Game.ScoreLimit = 50 }, "score_limit"},
		{"negative delay", func(c *Config) { c.Game.PostRoundDelay = -1 }, "post_round_delay"},
		{"zero min round time", func(c *Config) { c.Game.MinRoundTime, c.Game.RoundTime = 0, 0 }, "min_round_time"},
		{"short key", func(c *Config) { c.Game.KeyLength = 2 }, "key_length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
