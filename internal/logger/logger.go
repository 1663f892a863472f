// Package logger 全局日志，基于 zerolog
//
// 保留 Info/Debug/Error/Fatal 这套 printf 风格的调用方式，
// 需要结构化字段时使用 L() 或 Ctx(ctx) 拿到 zerolog.Logger
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config 日志配置
type Config struct {
	Level  string // trace, debug, info, warn, error
	Format string // json, console
	Output io.Writer
}

var (
	mu   sync.RWMutex
	base zerolog.Logger
)

func init() {
	Init(Config{Level: "info", Format: "console"})
}

// Init 初始化全局 logger，可以重复调用
func Init(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Output
	if strings.ToLower(cfg.Format) != "json" {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}

	l := zerolog.New(out).With().Timestamp().Logger().Level(parseLevel(cfg.Level))

	mu.Lock()
	base = l
	mu.Unlock()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// SetDebug 设置是否开启调试模式
func SetDebug(debug bool) {
	mu.Lock()
	defer mu.Unlock()
	if debug {
		base = base.Level(zerolog.DebugLevel)
	} else if base.GetLevel() < zerolog.InfoLevel {
		base = base.Level(zerolog.InfoLevel)
	}
}

// L 返回全局 logger 的副本
func L() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// With 返回带组件名的子 logger
func With(component string) zerolog.Logger {
	l := L()
	return l.With().Str("component", component).Logger()
}

// Info 打印信息日志
func Info(format string, v ...interface{}) {
	l := L()
	l.Info().Msgf(format, v...)
}

// Debug 打印调试日志
func Debug(format string, v ...interface{}) {
	l := L()
	l.Debug().Msgf(format, v...)
}

// Warn 打印警告日志
func Warn(format string, v ...interface{}) {
	l := L()
	l.Warn().Msgf(format, v...)
}

// Error 打印错误日志
func Error(format string, v ...interface{}) {
	l := L()
	l.Error().Msgf(format, v...)
}

// Fatal 打印错误日志并退出
func Fatal(format string, v ...interface{}) {
	l := L()
	l.Fatal().Msgf(format, v...)
}
