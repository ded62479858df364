package server

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// 限流记录在空闲这么久之后被清理
const (
	limiterCleanupInterval = 5 * time.Minute
	limiterIdleTTL         = 10 * time.Minute
)

// --- 连接速率限制 ---

// RateLimiter 按 IP 限制建立连接的频率，超限后封禁一段时间
type RateLimiter struct {
	clock clockwork.Clock

	mu       sync.Mutex
	requests map[string]*clientRate

	maxPerSecond int
	maxPerMinute int
	banDuration  time.Duration
}

type clientRate struct {
	secondCount int
	minuteCount int
	lastSecond  time.Time
	lastMinute  time.Time
	bannedUntil time.Time
}

// NewRateLimiter 创建速率限制器
func NewRateLimiter(clock clockwork.Clock, maxPerSecond, maxPerMinute int, banDuration time.Duration) *RateLimiter {
	return &RateLimiter{
		clock:        clock,
		requests:     make(map[string]*clientRate),
		maxPerSecond: maxPerSecond,
		maxPerMinute: maxPerMinute,
		banDuration:  banDuration,
	}
}

// Allow 检查是否允许该 IP 建立连接
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	rate, exists := rl.requests[ip]
	if !exists {
		rl.requests[ip] = &clientRate{secondCount: 1, minuteCount: 1, lastSecond: now, lastMinute: now}
		return true
	}

	if now.Before(rate.bannedUntil) {
		return false
	}

	if now.Sub(rate.lastSecond) >= time.Second {
		rate.secondCount = 0
		rate.lastSecond = now
	}
	if now.Sub(rate.lastMinute) >= time.Minute {
		rate.minuteCount = 0
		rate.lastMinute = now
	}

	rate.secondCount++
	rate.minuteCount++

	if rate.secondCount > rl.maxPerSecond || rate.minuteCount > rl.maxPerMinute {
		rate.bannedUntil = now.Add(rl.banDuration)
		log.Warn().Str("ip", ip).Dur("ban", rl.banDuration).Msg("connection rate exceeded, ip banned")
		return false
	}
	return true
}

// IsBanned 检查 IP 是否处于封禁期
func (rl *RateLimiter) IsBanned(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rate, exists := rl.requests[ip]
	return exists && rl.clock.Now().Before(rate.bannedUntil)
}

// Cleanup 清理空闲且未封禁的记录
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	for ip, rate := range rl.requests {
		if now.Sub(rate.lastMinute) > limiterIdleTTL && now.After(rate.bannedUntil) {
			delete(rl.requests, ip)
		}
	}
}

// Len 当前记录数
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.requests)
}

// runCleanup 周期性调用 fn，直到 ctx 结束
func runCleanup(ctx context.Context, clock clockwork.Clock, fn func()) {
	ticker := clock.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			fn()
		}
	}
}

// --- 来源验证 ---

// OriginChecker 检查 WebSocket 握手的 Origin 头
type OriginChecker struct {
	allowed  map[string]bool
	allowAll bool
}

// NewOriginChecker 创建来源验证器，"*" 表示允许全部
func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{allowed: make(map[string]bool)}
	for _, origin := range origins {
		if origin == "*" {
			oc.allowAll = true
			return oc
		}
		oc.allowed[strings.ToLower(origin)] = true
	}
	return oc
}

// Check 检查来源是否允许。没有 Origin 头的请求（本地客户端）放行。
func (oc *OriginChecker) Check(r *http.Request) bool {
	if oc.allowAll {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return oc.allowed[strings.ToLower(origin)]
}

// --- IP 白名单/黑名单 ---

// IPFilter IP 过滤器
type IPFilter struct {
	mu        sync.RWMutex
	whitelist map[string]bool
	blacklist map[string]bool
}

// NewIPFilter 创建 IP 过滤器，名单来自配置
func NewIPFilter(whitelist, blacklist []string) *IPFilter {
	f := &IPFilter{
		whitelist: make(map[string]bool, len(whitelist)),
		blacklist: make(map[string]bool, len(blacklist)),
	}
	for _, ip := range whitelist {
		if ip = strings.TrimSpace(ip); ip != "" {
			f.whitelist[ip] = true
		}
	}
	for _, ip := range blacklist {
		if ip = strings.TrimSpace(ip); ip != "" {
			f.blacklist[ip] = true
		}
	}
	return f
}

// AddToWhitelist 添加到白名单
func (f *IPFilter) AddToWhitelist(ip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.whitelist[ip] = true
}

// AddToBlacklist 添加到黑名单
func (f *IPFilter) AddToBlacklist(ip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blacklist[ip] = true
}

// RemoveFromBlacklist 从黑名单移除
func (f *IPFilter) RemoveFromBlacklist(ip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blacklist, ip)
}

// IsAllowed 白名单非空时只放行白名单，黑名单一律拒绝
func (f *IPFilter) IsAllowed(ip string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(f.whitelist) > 0 && !f.whitelist[ip] {
		return false
	}
	return !f.blacklist[ip]
}

// GetClientIP 获取客户端真实 IP，优先使用代理头
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// --- 消息速率限制 ---

// MessageRateLimiter 限制已连接客户端每秒的消息数
type MessageRateLimiter struct {
	clock clockwork.Clock

	mu     sync.Mutex
	limits map[string]*messageRate

	maxPerSecond     int
	warningThreshold int
}

type messageRate struct {
	count     int
	lastReset time.Time
	warnings  int
}

// maxWarnings 超速次数超过该值后断开连接
const maxWarnings = 5

// NewMessageRateLimiter 创建消息速率限制器
func NewMessageRateLimiter(clock clockwork.Clock, maxPerSecond int) *MessageRateLimiter {
	return &MessageRateLimiter{
		clock:            clock,
		limits:           make(map[string]*messageRate),
		maxPerSecond:     maxPerSecond,
		warningThreshold: maxPerSecond * 3 / 4,
	}
}

// AllowMessage 返回是否放行，以及是否接近上限需要提醒
func (ml *MessageRateLimiter) AllowMessage(clientID string) (allowed, warning bool) {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	now := ml.clock.Now()
	rate, exists := ml.limits[clientID]
	if !exists {
		ml.limits[clientID] = &messageRate{count: 1, lastReset: now}
		return true, false
	}

	if now.Sub(rate.lastReset) >= time.Second {
		rate.count = 1
		rate.lastReset = now
		return true, false
	}

	rate.count++
	if rate.count > ml.maxPerSecond {
		rate.warnings++
		return false, true
	}
	// 只在跨过阈值的那一条提醒一次
	return true, rate.count == ml.warningThreshold+1
}

// ShouldDisconnect 超速次数过多
func (ml *MessageRateLimiter) ShouldDisconnect(clientID string) bool {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	rate, exists := ml.limits[clientID]
	return exists && rate.warnings > maxWarnings
}

// RemoveClient 移除客户端记录
func (ml *MessageRateLimiter) RemoveClient(clientID string) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	delete(ml.limits, clientID)
}

// --- 聊天速率限制 ---

// ChatRateLimiter 限制聊天与猜词频率，超限后进入冷却
type ChatRateLimiter struct {
	clock clockwork.Clock

	mu     sync.Mutex
	limits map[string]*chatRate

	maxPerSecond int
	maxPerMinute int
	cooldown     time.Duration
}

type chatRate struct {
	secondCount   int
	minuteCount   int
	lastSecond    time.Time
	lastMinute    time.Time
	cooldownUntil time.Time
}

// NewChatRateLimiter 创建聊天限流器
func NewChatRateLimiter(clock clockwork.Clock, maxPerSecond, maxPerMinute int, cooldown time.Duration) *ChatRateLimiter {
	return &ChatRateLimiter{
		clock:        clock,
		limits:       make(map[string]*chatRate),
		maxPerSecond: maxPerSecond,
		maxPerMinute: maxPerMinute,
		cooldown:     cooldown,
	}
}

// AllowChat 实现 types.ChatLimiter，拒绝时返回提示文本
func (cl *ChatRateLimiter) AllowChat(clientID string) (bool, string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := cl.clock.Now()
	rate, exists := cl.limits[clientID]
	if !exists {
		cl.limits[clientID] = &chatRate{secondCount: 1, minuteCount: 1, lastSecond: now, lastMinute: now}
		return true, ""
	}

	if now.Before(rate.cooldownUntil) {
		return false, "发言过于频繁，请稍后再试"
	}

	if now.Sub(rate.lastSecond) >= time.Second {
		rate.secondCount = 0
		rate.lastSecond = now
	}
	if now.Sub(rate.lastMinute) >= time.Minute {
		rate.minuteCount = 0
		rate.lastMinute = now
	}

	rate.secondCount++
	rate.minuteCount++

	if rate.secondCount > cl.maxPerSecond || rate.minuteCount > cl.maxPerMinute {
		rate.cooldownUntil = now.Add(cl.cooldown)
		return false, "发言过于频繁，已被禁言片刻"
	}
	return true, ""
}

// RemoveClient 移除客户端记录
func (cl *ChatRateLimiter) RemoveClient(clientID string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	delete(cl.limits, clientID)
}
