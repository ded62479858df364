// Package server 提供 WebSocket 传输层：连接管理、安全限制与优雅关闭。
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/picture-game/internal/config"
	"github.com/palemoky/picture-game/internal/game/directory"
	"github.com/palemoky/picture-game/internal/game/words"
	"github.com/palemoky/picture-game/internal/server/handler"
	"github.com/palemoky/picture-game/internal/server/storage"
)

// Options 服务器可注入的依赖，零值表示使用默认实现
type Options struct {
	Clock clockwork.Clock
	Redis *redis.Client // 为空且未禁用时按配置连接
}

// Server WebSocket 服务器
type Server struct {
	config      *config.Config
	clock       clockwork.Clock
	redis       *redis.Client
	leaderboard *storage.Leaderboard
	directory   *directory.Directory
	handler     *handler.Handler
	upgrader    websocket.Upgrader
	httpServer  *http.Server

	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 安全组件
	rateLimiter    *RateLimiter
	originChecker  *OriginChecker
	messageLimiter *MessageRateLimiter
	chatLimiter    *ChatRateLimiter
	ipFilter       *IPFilter

	// 连接控制
	maxConnections int
	semaphore      chan struct{}

	// 维护模式
	maintenanceMode bool
	maintenanceMu   sync.RWMutex

	cancel context.CancelFunc
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config, banks []*words.Bank, opts Options) (*Server, error) {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	s := &Server{
		config:  cfg,
		clock:   clock,
		clients: make(map[string]*Client),
		rateLimiter: NewRateLimiter(clock,
			cfg.Security.RateLimit.MaxPerSecond,
			cfg.Security.RateLimit.MaxPerMinute,
			cfg.Security.RateLimit.BanDurationTime(),
		),
		originChecker:  NewOriginChecker(cfg.Security.AllowedOrigins),
		messageLimiter: NewMessageRateLimiter(clock, cfg.Security.MessageLimit.MaxPerSecond),
		chatLimiter: NewChatRateLimiter(clock,
			cfg.Security.ChatLimit.MaxPerSecond,
			cfg.Security.ChatLimit.MaxPerMinute,
			cfg.Security.ChatLimit.CooldownDuration(),
		),
		ipFilter:       NewIPFilter(cfg.Security.IPWhitelist, cfg.Security.IPBlacklist),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// 来源检查在升级前由 OriginChecker 完成
		CheckOrigin: func(*http.Request) bool { return true },
	}

	if err := s.initRedis(cfg.Redis, opts.Redis); err != nil {
		return nil, err
	}

	dirOpts := directory.OptionsFromConfig(cfg.Game, banks)
	dirOpts.Clock = clock
	if s.leaderboard != nil {
		dirOpts.Recorder = s.leaderboard
	}
	dir, err := directory.New(dirOpts)
	if err != nil {
		return nil, fmt.Errorf("创建大厅目录失败: %w", err)
	}
	s.directory = dir

	s.handler = handler.NewHandler(handler.HandlerDeps{
		Server:      s,
		Directory:   s.directory,
		ChatLimiter: s.chatLimiter,
		Leaderboard: s.leaderboard,
	})

	log.Info().
		Int("conn_per_second", cfg.Security.RateLimit.MaxPerSecond).
		Int("msg_per_second", cfg.Security.MessageLimit.MaxPerSecond).
		Int("chat_per_second", cfg.Security.ChatLimit.MaxPerSecond).
		Int("max_connections", cfg.Server.MaxConnections).
		Msg("security configured")

	return s, nil
}

// initRedis 连接 Redis 并创建排行榜，禁用时跳过
func (s *Server) initRedis(cfg config.RedisConfig, client *redis.Client) error {
	if cfg.Disabled {
		log.Info().Msg("redis disabled, leaderboard unavailable")
		return nil
	}

	if client == nil {
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis 连接失败: %w", err)
	}

	s.redis = client
	s.leaderboard = storage.NewLeaderboard(client, s.clock)
	return nil
}

// Routes 返回 HTTP 路由，非 WebSocket 接口按 AllowedOrigins 提供 CORS
func (s *Server) Routes() http.Handler {
	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, "/ws", s.handleWebSocket)
	router.HandlerFunc(http.MethodGet, "/health", s.handleHealth)
	router.GET("/invite/:key/qr", s.handleInviteQR)

	c := cors.New(cors.Options{
		AllowedOrigins: s.config.Security.AllowedOrigins,
		AllowedMethods: []string{http.MethodHead, http.MethodGet},
	})
	return c.Handler(router)
}

// Start 启动服务器，阻塞直到关闭
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go runCleanup(ctx, s.clock, s.rateLimiter.Cleanup)
	go s.monitorStats(ctx)

	addr := s.config.Server.Addr()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info().Str("addr", "ws://"+addr+"/ws").Int("cpus", runtime.NumCPU()).Msg("server started")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Directory 大厅目录
func (s *Server) Directory() *directory.Directory {
	return s.directory
}
