package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_SecondLimit(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	rl := NewRateLimiter(clock, 5, 10, time.Second)
	ip := "127.0.0.1"

	for i := range 5 {
		assert.True(t, rl.Allow(ip), "request %d", i)
	}
	assert.False(t, rl.Allow(ip))
	assert.True(t, rl.IsBanned(ip))
}

func TestRateLimiter_BanExpires(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	rl := NewRateLimiter(clock, 10, 50, 2*time.Second)
	ip := "192.168.1.1"

	for range 10 {
		require.True(t, rl.Allow(ip))
	}
	assert.False(t, rl.Allow(ip))

	clock.Advance(time.Second)
	assert.True(t, rl.IsBanned(ip), "still banned")
	assert.False(t, rl.Allow(ip))

	clock.Advance(1100 * time.Millisecond)
	assert.False(t, rl.IsBanned(ip))
	assert.True(t, rl.Allow(ip))
}

func TestRateLimiter_MinuteLimit(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	rl := NewRateLimiter(clock, 100, 5, time.Second)
	ip := "10.0.0.1"

	for range 5 {
		assert.True(t, rl.Allow(ip))
		clock.Advance(2 * time.Second)
	}
	assert.False(t, rl.Allow(ip), "per-minute limit reached")
}

func TestRateLimiter_IndependentIPs(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(clockwork.NewFakeClock(), 1, 10, time.Minute)

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))
	assert.False(t, rl.IsBanned("3.3.3.3"))
}

func TestRateLimiter_Concurrency(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(clockwork.NewFakeClock(), 20, 200, time.Second)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("127.0.0.1") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, allowed)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	rl := NewRateLimiter(clock, 1, 10, time.Hour)

	rl.Allow("idle")
	rl.Allow("banned")
	rl.Allow("banned")
	require.Equal(t, 2, rl.Len())

	clock.Advance(limiterIdleTTL + time.Minute)
	rl.Cleanup()

	assert.Equal(t, 1, rl.Len(), "banned ip is kept until the ban expires")
	assert.True(t, rl.IsBanned("banned"))
}

func TestRunCleanup_StopsWithContext(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	ctx, cancel := context.WithCancel(context.Background())

	calls := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		runCleanup(ctx, clock, func() { calls <- struct{}{} })
		close(done)
	}()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(limiterCleanupInterval)
	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("cleanup not called")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runCleanup did not stop")
	}
}

func TestOriginChecker(t *testing.T) {
	t.Parallel()

	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	all := NewOriginChecker([]string{"*"})
	assert.True(t, all.Check(req("https://anything.example")))

	oc := NewOriginChecker([]string{"https://Game.Example"})
	assert.True(t, oc.Check(req("https://game.example")))
	assert.False(t, oc.Check(req("https://evil.example")))
	assert.True(t, oc.Check(req("")), "native clients send no Origin")
}

func TestIPFilter(t *testing.T) {
	t.Parallel()

	f := NewIPFilter(nil, nil)
	assert.True(t, f.IsAllowed("1.2.3.4"))

	f.AddToBlacklist("1.2.3.4")
	assert.False(t, f.IsAllowed("1.2.3.4"))
	f.RemoveFromBlacklist("1.2.3.4")
	assert.True(t, f.IsAllowed("1.2.3.4"))

	f.AddToWhitelist("10.0.0.1")
	assert.True(t, f.IsAllowed("10.0.0.1"))
	assert.False(t, f.IsAllowed("1.2.3.4"), "whitelist excludes everyone else")

	f.AddToBlacklist("10.0.0.1")
	assert.False(t, f.IsAllowed("10.0.0.1"), "blacklist wins")
}

func TestNewIPFilter_FromLists(t *testing.T) {
	t.Parallel()

	f := NewIPFilter([]string{" 10.0.0.1 ", "", "10.0.0.2"}, []string{"10.0.0.2"})
	assert.True(t, f.IsAllowed("10.0.0.1"))
	assert.False(t, f.IsAllowed("10.0.0.2"), "blacklist wins")
	assert.False(t, f.IsAllowed("10.0.0.3"), "not on the whitelist")

	open := NewIPFilter(nil, []string{"192.0.2.9"})
	assert.False(t, open.IsAllowed("192.0.2.9"))
	assert.True(t, open.IsAllowed("192.0.2.10"))
}

func TestGetClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.1"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.7"}, "10.0.0.2:1234", "198.51.100.7"},
		{"remote addr", nil, "192.0.2.5:5555", "192.0.2.5"},
		{"remote without port", nil, "192.0.2.6", "192.0.2.6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetClientIP(r))
		})
	}
}

func TestMessageRateLimiter(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	ml := NewMessageRateLimiter(clock, 8)

	var warnings int
	for i := range 8 {
		allowed, warning := ml.AllowMessage("c1")
		require.True(t, allowed, "message %d", i)
		if warning {
			warnings++
		}
	}
	assert.Equal(t, 1, warnings, "warn once when crossing the threshold")

	allowed, warning := ml.AllowMessage("c1")
	assert.False(t, allowed)
	assert.True(t, warning)

	clock.Advance(time.Second)
	allowed, warning = ml.AllowMessage("c1")
	assert.True(t, allowed)
	assert.False(t, warning)
}

func TestMessageRateLimiter_ShouldDisconnect(t *testing.T) {
	t.Parallel()

	ml := NewMessageRateLimiter(clockwork.NewFakeClock(), 1)

	ml.AllowMessage("c1")
	for range maxWarnings {
		allowed, _ := ml.AllowMessage("c1")
		require.False(t, allowed)
	}
	assert.False(t, ml.ShouldDisconnect("c1"))

	ml.AllowMessage("c1")
	assert.True(t, ml.ShouldDisconnect("c1"))

	ml.RemoveClient("c1")
	assert.False(t, ml.ShouldDisconnect("c1"))
}

func TestChatRateLimiter_Cooldown(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	cl := NewChatRateLimiter(clock, 2, 10, 5*time.Second)

	ok, _ := cl.AllowChat("p1")
	assert.True(t, ok)
	ok, _ = cl.AllowChat("p1")
	assert.True(t, ok)

	ok, reason := cl.AllowChat("p1")
	assert.False(t, ok)
	assert.NotEmpty(t, reason)

	clock.Advance(3 * time.Second)
	ok, _ = cl.AllowChat("p1")
	assert.False(t, ok, "still cooling down")

	clock.Advance(3 * time.Second)
	ok, _ = cl.AllowChat("p1")
	assert.True(t, ok)

	ok, _ = cl.AllowChat("p2")
	assert.True(t, ok, "limits are per client")
}

func TestChatRateLimiter_MinuteLimit(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	cl := NewChatRateLimiter(clock, 10, 3, time.Second)

	for range 3 {
		ok, _ := cl.AllowChat("p1")
		require.True(t, ok)
		clock.Advance(2 * time.Second)
	}
	ok, _ := cl.AllowChat("p1")
	assert.False(t, ok)

	cl.RemoveClient("p1")
	ok, _ = cl.AllowChat("p1")
	assert.True(t, ok, "fresh record after removal")
}
