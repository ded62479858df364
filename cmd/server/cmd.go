package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/palemoky/picture-game/internal/config"
	"github.com/palemoky/picture-game/internal/game/words"
	"github.com/palemoky/picture-game/internal/logger"
	"github.com/palemoky/picture-game/internal/server"
)

// flags 命令行参数，设置后覆盖配置文件中的值
type flags struct {
	config        string
	host          string
	port          int
	redisAddr     string
	redisDisabled bool
	wordsDir      string
	logLevel      string
	logFile       string
}

func newCmd(f *flags) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("PICTUREGAME")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "picture-server",
		Short:         "Team drawing and guessing game server.",
		Args:          cobra.ExactArgs(0),
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(f, cmd.Flags())
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&f.config, "config", "c", "configs/config.yaml", "path to config file (env: PICTUREGAME_CONFIG)")
	fs.StringVarP(&f.host, "host", "b", "", "address to bind to (env: PICTUREGAME_HOST)")
	fs.IntVarP(&f.port, "port", "p", 0, "port to listen on (env: PICTUREGAME_PORT)")
	fs.StringVar(&f.redisAddr, "redis-addr", "", "redis address for the leaderboard (env: PICTUREGAME_REDIS_ADDR)")
	fs.BoolVar(&f.redisDisabled, "no-redis", false, "run without redis, disabling the leaderboard (env: PICTUREGAME_NO_REDIS)")
	fs.StringVar(&f.wordsDir, "words", "", "directory containing word lists (env: PICTUREGAME_WORDS)")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error (env: PICTUREGAME_LOG_LEVEL)")
	fs.StringVar(&f.logFile, "log-file", "", "write logs to this file instead of stderr (env: PICTUREGAME_LOG_FILE)")

	fs.VisitAll(func(fl *pflag.Flag) {
		_ = v.BindPFlag(fl.Name, fl)
		_ = v.BindEnv(fl.Name)
		if !fl.Changed && v.IsSet(fl.Name) {
			_ = fs.Set(fl.Name, fmt.Sprintf("%v", v.Get(fl.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("picture-server v{{.Version}}\n")

	return cmd
}

// loadConfig 读取配置文件（不存在时使用默认值），再应用已设置的参数
func loadConfig(f *flags, set *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(f.config)
	switch {
	case errors.Is(err, os.ErrNotExist) && !set.Changed("config"):
		cfg = config.Default()
	case err != nil:
		return nil, fmt.Errorf("加载配置文件失败: %w", err)
	}

	if set.Changed("host") {
		cfg.Server.Host = f.host
	}
	if set.Changed("port") {
		cfg.Server.Port = f.port
	}
	if set.Changed("redis-addr") {
		cfg.Redis.Addr = f.redisAddr
	}
	if set.Changed("no-redis") {
		cfg.Redis.Disabled = f.redisDisabled
	}
	if set.Changed("words") {
		cfg.Words.Dir = f.wordsDir
	}
	if set.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if set.Changed("log-file") {
		cfg.Log.File = f.logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cfg *config.Config) error {
	if err := logger.Init(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File}); err != nil {
		return err
	}
	defer logger.Close()

	banks, err := words.LoadDir(cfg.Words.Dir, cfg.Words.Index)
	if err != nil {
		return fmt.Errorf("加载词库失败: %w", err)
	}

	srv, err := server.NewServer(cfg, banks, server.Options{})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	srv.GracefulShutdown(cfg.Game.ShutdownTimeoutDuration())
	return nil
}
