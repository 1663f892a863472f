package sentiment

import (
	"context"
	"fmt"
	"io"
	"time"

	"moodmusic/internal/logger"
	"moodmusic/internal/metrics"
	"moodmusic/internal/model"
	"moodmusic/internal/textnorm"
)

// Adapter 包装一个已加载的 Classifier
// 进程启动时构建一次，之后在各请求间共享，不持有每次调用的可变状态
type Adapter struct {
	classifier Classifier
	backend    string
	initErr    error
	timeout    time.Duration
}

// Option 配置 Adapter
type Option func(*Adapter)

// WithBackend 设置后端名 (用于日志和指标)
func WithBackend(name string) Option {
	return func(a *Adapter) {
		a.backend = name
	}
}

// WithTimeout 为每次分类调用设置超时，0 表示不设置
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		a.timeout = d
	}
}

// NewAdapter 创建可用的 Adapter
func NewAdapter(classifier Classifier, opts ...Option) *Adapter {
	a := &Adapter{classifier: classifier, backend: "custom"}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewUnavailableAdapter 模型加载失败时使用，所有分类请求直接返回 ErrModelUnavailable
func NewUnavailableAdapter(cause error, opts ...Option) *Adapter {
	a := NewAdapter(nil, opts...)
	a.initErr = cause
	return a
}

// Ready 模型是否加载成功
func (a *Adapter) Ready() bool {
	return a.classifier != nil
}

// Backend 后端名
func (a *Adapter) Backend() string {
	return a.backend
}

// Classify 对文本做情感分类并映射为情绪
func (a *Adapter) Classify(ctx context.Context, text string) (model.SentimentResult, error) {
	text = textnorm.Text(text)
	if text == "" {
		metrics.RecordClassification(a.backend, "validation_error", 0)
		return model.SentimentResult{}, ErrValidation
	}

	if a.classifier == nil {
		metrics.RecordClassification(a.backend, "unavailable", 0)
		if a.initErr != nil {
			return model.SentimentResult{}, fmt.Errorf("%w: %v", ErrModelUnavailable, a.initErr)
		}
		return model.SentimentResult{}, ErrModelUnavailable
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	label, score, err := a.call(ctx, text)
	elapsed := time.Since(start)
	if err != nil {
		metrics.RecordClassification(a.backend, "error", elapsed)
		l := logger.Ctx(ctx)
		l.Error().Err(err).Str("backend", a.backend).Msg("sentiment classification failed")
		return model.SentimentResult{}, fmt.Errorf("%w: %v", ErrClassification, err)
	}

	mood := MoodForLabel(label)
	metrics.RecordClassification(a.backend, string(mood), elapsed)

	return model.SentimentResult{
		Label: label,
		Score: score,
		Mood:  mood,
	}, nil
}

func (a *Adapter) call(ctx context.Context, text string) (label string, score float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("classifier panic: %v", r)
		}
	}()
	return a.classifier.Classify(ctx, text)
}

// Close 释放分类器持有的资源 (如 ONNX 会话)
func (a *Adapter) Close() error {
	if c, ok := a.classifier.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
