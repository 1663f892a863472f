package sentiment

import (
	"errors"
	"time"

	"moodmusic/internal/logger"
	"moodmusic/internal/metrics"

	gobreaker "github.com/sony/gobreaker/v2"
)

// prediction 远程分类器的单条结果
type prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// BreakerConfig 远程分类器的熔断参数
type BreakerConfig struct {
	// MaxFailures 连续失败多少次后熔断
	MaxFailures uint32 `koanf:"max_failures"`
	// OpenTimeout 熔断后多久进入半开状态
	OpenTimeout time.Duration `koanf:"open_timeout"`
}

func newBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker[prediction] {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[prediction](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l := logger.With("sentiment")
			l.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// isBreakerRejection 请求是否被熔断器直接拒绝
func isBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
