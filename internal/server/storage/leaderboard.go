// Package storage 保存对局统计与排行榜（Redis）。
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

const (
	// Redis key
	playerStatsKey    = "picture:stats:"
	leaderboardKey    = "picture:leaderboard:total"
	weeklyLeaderboard = "picture:leaderboard:weekly:"

	weeklyExpiration = 8 * 24 * time.Hour
)

// 排行榜类型
const (
	BoardTotal  = "total"
	BoardWeekly = "weekly"
)

// 积分规则
const (
	WinPoints  = 10
	LossPoints = -3

	// 连胜加成
	StreakBonus3 = 2
	StreakBonus5 = 5
)

// PlayerStats 玩家统计数据，以用户名为键
type PlayerStats struct {
	Name       string `json:"name"`
	TotalGames int    `json:"total_games"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	Score      int    `json:"score"`

	CurrentStreak int `json:"current_streak"` // 正数为连胜，负数为连败
	MaxWinStreak  int `json:"max_win_streak"`

	LastPlayedAt int64 `json:"last_played_at"`
	CreatedAt    int64 `json:"created_at"`
}

// WinRate 胜率（百分比）
func (s *PlayerStats) WinRate() float64 {
	if s.TotalGames == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.TotalGames) * 100
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank  int
	Stats *PlayerStats
}

// Leaderboard 基于 Redis 有序集合的排行榜
type Leaderboard struct {
	redis *redis.Client
	clock clockwork.Clock
}

// NewLeaderboard 创建排行榜，clock 为空时使用真实时钟
func NewLeaderboard(client *redis.Client, clock clockwork.Clock) *Leaderboard {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Leaderboard{redis: client, clock: clock}
}

// GetPlayerStats 获取玩家统计，不存在时返回 nil
func (lb *Leaderboard) GetPlayerStats(ctx context.Context, name string) (*PlayerStats, error) {
	data, err := lb.redis.Get(ctx, playerStatsKey+name).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats PlayerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("反序列化玩家统计失败: %w", err)
	}
	return &stats, nil
}

func (lb *Leaderboard) savePlayerStats(ctx context.Context, stats *PlayerStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("序列化玩家统计失败: %w", err)
	}
	return lb.redis.Set(ctx, playerStatsKey+stats.Name, data, 0).Err()
}

// RecordGameResult 记录一名玩家的对局结果
func (lb *Leaderboard) RecordGameResult(ctx context.Context, name string, won bool) error {
	stats, err := lb.GetPlayerStats(ctx, name)
	if err != nil {
		return err
	}
	now := lb.clock.Now().Unix()
	if stats == nil {
		stats = &PlayerStats{Name: name, CreatedAt: now}
	}

	stats.TotalGames++
	stats.LastPlayedAt = now

	change := LossPoints
	if won {
		stats.Wins++
		stats.CurrentStreak = max(1, stats.CurrentStreak+1)
		change = WinPoints + streakBonus(stats.CurrentStreak)
	} else {
		stats.Losses++
		stats.CurrentStreak = min(-1, stats.CurrentStreak-1)
	}
	stats.MaxWinStreak = max(stats.MaxWinStreak, stats.CurrentStreak)
	stats.Score = max(0, stats.Score+change)

	if err := lb.savePlayerStats(ctx, stats); err != nil {
		return err
	}
	return lb.updateBoards(ctx, stats)
}

func streakBonus(streak int) int {
	switch {
	case streak >= 5:
		return StreakBonus5
	case streak >= 3:
		return StreakBonus3
	default:
		return 0
	}
}

func (lb *Leaderboard) updateBoards(ctx context.Context, stats *PlayerStats) error {
	z := redis.Z{Score: float64(stats.Score), Member: stats.Name}

	pipe := lb.redis.TxPipeline()
	pipe.ZAdd(ctx, leaderboardKey, z)
	weekly := lb.weeklyKey()
	pipe.ZAdd(ctx, weekly, z)
	pipe.Expire(ctx, weekly, weeklyExpiration)
	_, err := pipe.Exec(ctx)
	return err
}

func (lb *Leaderboard) weeklyKey() string {
	year, week := lb.clock.Now().ISOWeek()
	return fmt.Sprintf("%s%d-W%02d", weeklyLeaderboard, year, week)
}

// GetLeaderboard 获取排行榜（积分从高到低），boardType 为空时取总榜
func (lb *Leaderboard) GetLeaderboard(ctx context.Context, boardType string, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	key := leaderboardKey
	if boardType == BoardWeekly {
		key = lb.weeklyKey()
	}

	names, err := lb.redis.ZRevRange(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(names))
	for i, name := range names {
		stats, err := lb.GetPlayerStats(ctx, name)
		if err != nil || stats == nil {
			continue
		}
		entries = append(entries, LeaderboardEntry{Rank: i + 1, Stats: stats})
	}
	return entries, nil
}

// GetPlayerRank 获取玩家总榜排名，未上榜返回 -1
func (lb *Leaderboard) GetPlayerRank(ctx context.Context, name string) (int64, error) {
	rank, err := lb.redis.ZRevRank(ctx, leaderboardKey, name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	return rank + 1, nil
}
