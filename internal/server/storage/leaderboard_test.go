package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLeaderboard(t *testing.T) (*Leaderboard, *miniredis.Miniredis, *clockwork.FakeClock) {
	t.Helper()
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))
	return NewLeaderboard(client, clock), mr, clock
}

func TestLeaderboard_RecordGameResult_NewPlayer(t *testing.T) {
	t.Parallel()

	lb, _, clock := newTestLeaderboard(t)
	ctx := context.Background()

	require.NoError(t, lb.RecordGameResult(ctx, "alice", true))

	stats, err := lb.GetPlayerStats(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, stats)

	assert.Equal(t, "alice", stats.Name)
	assert.Equal(t, 1, stats.TotalGames)
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, WinPoints, stats.Score)
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, clock.Now().Unix(), stats.CreatedAt)
	assert.InDelta(t, 100.0, stats.WinRate(), 0.001)
}

func TestLeaderboard_RecordGameResult_Loss(t *testing.T) {
	t.Parallel()

	lb, _, _ := newTestLeaderboard(t)
	ctx := context.Background()

	require.NoError(t, lb.RecordGameResult(ctx, "bob", true))
	require.NoError(t, lb.RecordGameResult(ctx, "bob", false))
	require.NoError(t, lb.RecordGameResult(ctx, "bob", false))

	stats, err := lb.GetPlayerStats(ctx, "bob")
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalGames)
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 2, stats.Losses)
	assert.Equal(t, WinPoints+2*LossPoints, stats.Score)
	assert.Equal(t, -2, stats.CurrentStreak)
	assert.Equal(t, 1, stats.MaxWinStreak)
}

func TestLeaderboard_ScoreNeverNegative(t *testing.T) {
	t.Parallel()

	lb, _, _ := newTestLeaderboard(t)
	ctx := context.Background()

	require.NoError(t, lb.RecordGameResult(ctx, "carol", false))

	stats, err := lb.GetPlayerStats(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Score)
}

func TestLeaderboard_StreakBonus(t *testing.T) {
	t.Parallel()

	lb, _, _ := newTestLeaderboard(t)
	ctx := context.Background()

	for range 5 {
		require.NoError(t, lb.RecordGameResult(ctx, "dave", true))
	}

	stats, err := lb.GetPlayerStats(ctx, "dave")
	require.NoError(t, err)

	// 1、2 场无加成，3、4 场 +StreakBonus3，第 5 场 +StreakBonus5
	want := 5*WinPoints + 2*StreakBonus3 + StreakBonus5
	assert.Equal(t, want, stats.Score)
	assert.Equal(t, 5, stats.MaxWinStreak)
}

func TestLeaderboard_GetLeaderboard(t *testing.T) {
	t.Parallel()

	lb, _, _ := newTestLeaderboard(t)
	ctx := context.Background()

	require.NoError(t, lb.RecordGameResult(ctx, "alice", true))
	require.NoError(t, lb.RecordGameResult(ctx, "alice", true))
	require.NoError(t, lb.RecordGameResult(ctx, "bob", true))
	require.NoError(t, lb.RecordGameResult(ctx, "carol", false))

	entries, err := lb.GetLeaderboard(ctx, BoardTotal, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "alice", entries[0].Stats.Name)
	assert.Equal(t, "bob", entries[1].Stats.Name)
	assert.Equal(t, "carol", entries[2].Stats.Name)

	entries, err = lb.GetLeaderboard(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].Stats.Name)

	entries, err = lb.GetLeaderboard(ctx, BoardTotal, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLeaderboard_Weekly(t *testing.T) {
	t.Parallel()

	lb, mr, clock := newTestLeaderboard(t)
	ctx := context.Background()

	require.NoError(t, lb.RecordGameResult(ctx, "alice", true))

	assert.True(t, mr.Exists(weeklyLeaderboard+"2026-W10"))
	assert.Greater(t, mr.TTL(weeklyLeaderboard+"2026-W10"), time.Duration(0))

	entries, err := lb.GetLeaderboard(ctx, BoardWeekly, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// 下一周的周榜为空，总榜仍保留
	clock.Advance(7 * 24 * time.Hour)
	entries, err = lb.GetLeaderboard(ctx, BoardWeekly, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = lb.GetLeaderboard(ctx, BoardTotal, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLeaderboard_GetPlayerRank(t *testing.T) {
	t.Parallel()

	lb, _, _ := newTestLeaderboard(t)
	ctx := context.Background()

	require.NoError(t, lb.RecordGameResult(ctx, "alice", true))
	require.NoError(t, lb.RecordGameResult(ctx, "alice", true))
	require.NoError(t, lb.RecordGameResult(ctx, "bob", true))

	rank, err := lb.GetPlayerRank(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rank)

	rank, err = lb.GetPlayerRank(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rank)

	rank, err = lb.GetPlayerRank(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), rank)
}

func TestLeaderboard_RedisDown(t *testing.T) {
	t.Parallel()

	lb, mr, _ := newTestLeaderboard(t)
	mr.Close()

	err := lb.RecordGameResult(context.Background(), "alice", true)
	assert.Error(t, err)
}
