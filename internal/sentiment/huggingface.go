package sentiment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

// DefaultHuggingFaceEndpoint 与 transformers 默认 sentiment-analysis pipeline 相同的模型
const DefaultHuggingFaceEndpoint = "https://api-inference.huggingface.co/models/distilbert/distilbert-base-uncased-finetuned-sst-2-english"

// HuggingFaceConfig Hugging Face Inference API 配置
type HuggingFaceConfig struct {
	Endpoint string        `koanf:"endpoint"`
	Token    string        `koanf:"token"`
	Timeout  time.Duration `koanf:"timeout"`
	Breaker  BreakerConfig `koanf:"breaker"`
}

// HuggingFaceClassifier 调用远程 text-classification 模型
type HuggingFaceClassifier struct {
	endpoint   string
	token      string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[prediction]
}

// NewHuggingFaceClassifier 创建客户端
func NewHuggingFaceClassifier(cfg HuggingFaceConfig) (*HuggingFaceClassifier, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = DefaultHuggingFaceEndpoint
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return nil, fmt.Errorf("huggingface: invalid endpoint %q", endpoint)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HuggingFaceClassifier{
		endpoint:   endpoint,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		cb:         newBreaker("huggingface", cfg.Breaker),
	}, nil
}

type hfRequest struct {
	Inputs string `json:"inputs"`
}

type hfError struct {
	Error string `json:"error"`
}

func (c *HuggingFaceClassifier) Classify(ctx context.Context, text string) (string, float64, error) {
	p, err := c.cb.Execute(func() (prediction, error) {
		return c.post(ctx, text)
	})
	if err != nil {
		if isBreakerRejection(err) {
			return "", 0, fmt.Errorf("huggingface: %w", err)
		}
		return "", 0, err
	}
	return p.Label, p.Score, nil
}

func (c *HuggingFaceClassifier) post(ctx context.Context, text string) (prediction, error) {
	body, err := json.Marshal(hfRequest{Inputs: text})
	if err != nil {
		return prediction{}, fmt.Errorf("huggingface: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return prediction{}, fmt.Errorf("huggingface: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return prediction{}, fmt.Errorf("huggingface: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return prediction{}, fmt.Errorf("huggingface: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr hfError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return prediction{}, fmt.Errorf("huggingface: status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return prediction{}, fmt.Errorf("huggingface: unexpected status %d", resp.StatusCode)
	}

	return parseHFResponse(raw)
}

// parseHFResponse 兼容 [[{label,score}...]] 和 [{label,score}...] 两种返回格式，取分数最高的标签
func parseHFResponse(raw []byte) (prediction, error) {
	var nested [][]prediction
	var flat []prediction
	var candidates []prediction

	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 {
		candidates = nested[0]
	} else if err := json.Unmarshal(raw, &flat); err == nil {
		candidates = flat
	} else {
		return prediction{}, fmt.Errorf("huggingface: decode response: %w", err)
	}

	if len(candidates) == 0 {
		return prediction{}, errors.New("huggingface: empty response")
	}

	best := candidates[0]
	for _, p := range candidates[1:] {
		if p.Score > best.Score {
			best = p
		}
	}
	if best.Label == "" {
		return prediction{}, errors.New("huggingface: missing label")
	}
	return best, nil
}
