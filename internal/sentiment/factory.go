package sentiment

import (
	"fmt"
	"strings"
	"time"

	"moodmusic/internal/logger"
)

// 可选的分类后端
const (
	BackendLexicon     = "lexicon"
	BackendHuggingFace = "huggingface"
	BackendLLM         = "llm"
	BackendONNX        = "onnx"
)

// Config 情感分类配置
type Config struct {
	Backend     string            `koanf:"backend"`
	Timeout     time.Duration     `koanf:"timeout"`
	HuggingFace HuggingFaceConfig `koanf:"huggingface"`
	LLM         LLMConfig         `koanf:"llm"`
	ONNX        ONNXConfig        `koanf:"onnx"`
}

// NewClassifier 按配置构造分类器
func NewClassifier(cfg Config) (Classifier, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendLexicon:
		return NewLexiconClassifier(), nil
	case BackendHuggingFace:
		return NewHuggingFaceClassifier(cfg.HuggingFace)
	case BackendLLM:
		return NewLLMClassifierFromConfig(cfg.LLM)
	case BackendONNX:
		return NewONNXClassifier(cfg.ONNX)
	default:
		return nil, fmt.Errorf("unknown sentiment backend %q", cfg.Backend)
	}
}

// New 构造 Adapter
// 分类器构造失败不会中止进程，而是返回降级的 Adapter，分类请求统一返回 ErrModelUnavailable
func New(cfg Config) *Adapter {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = BackendLexicon
	}
	opts := []Option{WithBackend(backend), WithTimeout(cfg.Timeout)}

	classifier, err := NewClassifier(cfg)
	if err != nil {
		l := logger.With("sentiment")
		l.Error().Err(err).Str("backend", backend).Msg("failed to load sentiment classifier, classification disabled")
		return NewUnavailableAdapter(err, opts...)
	}

	logger.Info("sentiment classifier loaded: %s", backend)
	return NewAdapter(classifier, opts...)
}
