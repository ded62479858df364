package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// 日志文件超过该大小时轮转
const maxLogSize = 10 * 1024 * 1024

var (
	logFile *os.File
	logPath string
)

// Options 日志初始化参数
type Options struct {
	Level string // debug / info / warn / error，为空时为 info
	File  string // 日志文件路径，为空时输出到 stderr
}

// Init 初始化全局 zerolog 日志器
func Init(opts Options) error {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}
	zerolog.SetGlobalLevel(level)

	Close()
	logPath = ""
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if opts.File != "" {
		f, err := openLogFile(opts.File)
		if err != nil {
			return err
		}
		logFile = f
		logPath = opts.File
		out = f
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	log.Info().Str("level", level.String()).Str("file", logPath).Msg("logger initialized")
	return nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Rotate if file is too large
	if info, err := os.Stat(path); err == nil && info.Size() > maxLogSize {
		backupPath := fmt.Sprintf("%s.%d", path, time.Now().Unix())
		_ = os.Rename(path, backupPath)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// Close 关闭日志文件
func Close() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// LogInfo logs an info message
func LogInfo(format string, args ...any) {
	log.Info().Msgf(format, args...)
}

// LogError logs an error message
func LogError(format string, args ...any) {
	log.Error().Msgf(format, args...)
}

// LogPanic logs a recovered panic with stack trace
func LogPanic(r any) {
	log.Error().Str("stack", string(debug.Stack())).Msgf("panic: %v", r)
}

// GetLogPath returns the current log file path
func GetLogPath() string {
	return logPath
}
