package sentiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// ONNXConfig 本地 ONNX 情感模型配置 (DistilBERT SST-2 一类的二分类模型)
type ONNXConfig struct {
	SharedLibrary string   `koanf:"shared_library"`
	ModelPath     string   `koanf:"model_path"`
	TokenizerPath string   `koanf:"tokenizer_path"`
	MaxSeqLen     int      `koanf:"max_seq_len"`
	Labels        []string `koanf:"labels"` // 与 logits 下标一一对应
}

// ONNXClassifier 在进程内运行 ONNX 模型
type ONNXClassifier struct {
	tk      *tokenizer.Tokenizer
	session *ort.DynamicAdvancedSession
	labels  []string
	maxLen  int

	mu sync.Mutex
}

// NewONNXClassifier 初始化 onnxruntime 环境、加载 tokenizer 和模型
func NewONNXClassifier(cfg ONNXConfig) (*ONNXClassifier, error) {
	if cfg.ModelPath == "" || cfg.TokenizerPath == "" {
		return nil, errors.New("onnx: model_path and tokenizer_path are required")
	}
	labels := cfg.Labels
	if len(labels) == 0 {
		labels = []string{LabelNegative, LabelPositive}
	}
	maxLen := cfg.MaxSeqLen
	if maxLen <= 0 {
		maxLen = 512
	}

	if cfg.SharedLibrary != "" {
		ort.SetSharedLibraryPath(cfg.SharedLibrary)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("onnx: initialize runtime: %w", err)
		}
	}

	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: load tokenizer: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask"}, []string{"logits"}, nil)
	if err != nil {
		return nil, fmt.Errorf("onnx: load model: %w", err)
	}

	return &ONNXClassifier{
		tk:      tk,
		session: session,
		labels:  labels,
		maxLen:  maxLen,
	}, nil
}

func (c *ONNXClassifier) Classify(ctx context.Context, text string) (string, float64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	// tokenizer 和 session 都不保证并发安全
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return "", 0, errors.New("onnx: classifier closed")
	}

	enc, err := c.tk.EncodeSingle(text, true)
	if err != nil {
		return "", 0, fmt.Errorf("onnx: tokenize: %w", err)
	}

	ids, mask := modelInputs(enc.Ids, enc.AttentionMask, c.maxLen)
	if len(ids) == 0 {
		return "", 0, errors.New("onnx: empty token sequence")
	}

	logits, err := c.run(ids, mask)
	if err != nil {
		return "", 0, err
	}
	if len(logits) != len(c.labels) {
		return "", 0, fmt.Errorf("onnx: model returned %d logits for %d labels", len(logits), len(c.labels))
	}

	probs := softmax(logits)
	best := 0
	for i := range probs {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return c.labels[best], probs[best], nil
}

func (c *ONNXClassifier) run(ids, mask []int64) ([]float32, error) {
	shape := ort.NewShape(1, int64(len(ids)))

	idsTensor, err := ort.NewTensor(shape, ids)
	if err != nil {
		return nil, fmt.Errorf("onnx: input tensor: %w", err)
	}
	defer idsTensor.Destroy()

	maskTensor, err := ort.NewTensor(shape, mask)
	if err != nil {
		return nil, fmt.Errorf("onnx: mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	out, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(c.labels))))
	if err != nil {
		return nil, fmt.Errorf("onnx: output tensor: %w", err)
	}
	defer out.Destroy()

	if err := c.session.Run([]ort.Value{idsTensor, maskTensor}, []ort.Value{out}); err != nil {
		return nil, fmt.Errorf("onnx: run session: %w", err)
	}

	result := make([]float32, len(out.GetData()))
	copy(result, out.GetData())
	return result, nil
}

// Close 释放模型和运行时
func (c *ONNXClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		if err := c.session.Destroy(); err != nil {
			return err
		}
		c.session = nil
	}
	return ort.DestroyEnvironment()
}

func softmax(logits []float32) []float64 {
	maxLogit := math.Inf(-1)
	for _, l := range logits {
		maxLogit = math.Max(maxLogit, float64(l))
	}
	probs := make([]float64, len(logits))
	sum := 0.0
	for i, l := range logits {
		probs[i] = math.Exp(float64(l) - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// modelInputs 把编码结果转成模型输入，超长时截断
// 截断保留最后一个特殊 token ([SEP])，模型只在这种格式上训练过
func modelInputs(ids, attention []int, maxLen int) ([]int64, []int64) {
	src := make([]int, len(ids))
	for i := range ids {
		src[i] = i
	}
	if len(src) > maxLen {
		if maxLen > 1 {
			src = append(src[:maxLen-1], len(ids)-1)
		} else {
			src = src[:maxLen]
		}
	}

	outIDs := make([]int64, len(src))
	outMask := make([]int64, len(src))
	for i, j := range src {
		outIDs[i] = int64(ids[j])
		outMask[i] = 1
		if j < len(attention) {
			outMask[i] = int64(attention[j])
		}
	}
	return outIDs, outMask
}
