// Package supervisor 进程内服务的监督树，基于 suture
package supervisor

import (
	"context"
	"time"

	"moodmusic/internal/logger"

	"github.com/thejerf/suture/v4"
)

// Config 监督树参数
type Config struct {
	FailureThreshold float64
	FailureDecay     float64
	FailureBackoff   time.Duration
	ShutdownTimeout  time.Duration
}

// DefaultConfig 默认参数
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// Tree 根监督者
type Tree struct {
	root *suture.Supervisor
}

// New 创建监督树
func New(name string, cfg Config) *Tree {
	def := DefaultConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.FailureDecay <= 0 {
		cfg.FailureDecay = def.FailureDecay
	}
	if cfg.FailureBackoff <= 0 {
		cfg.FailureBackoff = def.FailureBackoff
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}

	root := suture.New(name, suture.Spec{
		EventHook:        eventHook,
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		Timeout:          cfg.ShutdownTimeout,
	})
	return &Tree{root: root}
}

// Add 添加受监督的服务
func (t *Tree) Add(svc suture.Service) suture.ServiceToken {
	return t.root.Add(svc)
}

// Serve 阻塞运行直到 ctx 取消
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground 后台运行，返回的 channel 在监督树退出时收到错误
func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// eventHook 把 suture 事件写到 zerolog
func eventHook(e suture.Event) {
	l := logger.With("supervisor")
	switch ev := e.(type) {
	case suture.EventServicePanic:
		l.Error().
			Str("supervisor", ev.SupervisorName).
			Str("service", ev.ServiceName).
			Str("panic", ev.PanicMsg).
			Str("stacktrace", ev.Stacktrace).
			Msg("service panicked")
	case suture.EventServiceTerminate:
		l.Warn().
			Str("supervisor", ev.SupervisorName).
			Str("service", ev.ServiceName).
			Interface("error", ev.Err).
			Bool("restarting", ev.Restarting).
			Msg("service terminated")
	case suture.EventBackoff:
		l.Warn().Str("supervisor", ev.SupervisorName).Msg("entering backoff")
	case suture.EventResume:
		l.Info().Str("supervisor", ev.SupervisorName).Msg("resuming after backoff")
	case suture.EventStopTimeout:
		l.Error().
			Str("supervisor", ev.SupervisorName).
			Str("service", ev.ServiceName).
			Msg("service did not stop in time")
	default:
		l.Debug().Str("event", e.String()).Msg("supervisor event")
	}
}
