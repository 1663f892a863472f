package llm

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
)

// maxResponseBytes 响应体读取上限
const maxResponseBytes = 1 << 20

// ErrEmptyCompletion 模型没有返回可用内容
var ErrEmptyCompletion = errors.New("llm: empty completion")

// Client 对话补全接口，情感分类只依赖这一个方法
type Client interface {
	Chat(ctx context.Context, messages []Message, options ...Option) (string, error)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// APIError 服务端返回的非 200 响应
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("llm: api error %d (%s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("llm: api error %d: %s", e.StatusCode, e.Message)
}

// Temporary 限流和服务端错误可以重试
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Option 只作用于单次请求
type Option func(*completionRequest)

func WithModel(model string) Option {
	return func(r *completionRequest) { r.Model = model }
}

func WithTemperature(t float64) Option {
	return func(r *completionRequest) { r.Temperature = &t }
}

// WithMaxTokens 限制补全长度，分类只需要很短的回答
func WithMaxTokens(n int) Option {
	return func(r *completionRequest) { r.MaxTokens = n }
}

// WithJSONResponse 要求模型只输出 JSON 对象
func WithJSONResponse() Option {
	return func(r *completionRequest) { r.ResponseFormat = &responseFormat{Type: "json_object"} }
}

// ChatClient 访问 OpenAI 兼容的 /chat/completions 接口
type ChatClient struct {
	endpoint string
	apiKey   string
	model    string
	http     *http.Client
}

// NewChatClient timeout 为 0 时使用 30s
func NewChatClient(endpoint, apiKey, model string, timeout time.Duration) *ChatClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChatClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		http:     &http.Client{Timeout: timeout},
	}
}

type responseFormat struct {
	Type string `json:"type"`
}

type completionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type completionChoice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type completionResponse struct {
	Choices []completionChoice `json:"choices"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Chat 返回第一个候选的文本内容
func (c *ChatClient) Chat(ctx context.Context, messages []Message, options ...Option) (string, error) {
	payload := completionRequest{Model: c.model, Messages: messages}
	for _, opt := range options {
		opt(&payload)
	}

	body, err := c.post(ctx, payload)
	if err != nil {
		return "", err
	}

	var out completionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("llm: decode completion: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrEmptyCompletion)
	}

	choice := out.Choices[0]
	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: finish_reason=%q", ErrEmptyCompletion, choice.FinishReason)
	}
	// 被长度截断的 JSON 基本无法解析，直接报错
	if choice.FinishReason == "length" && payload.ResponseFormat != nil {
		return "", fmt.Errorf("llm: completion truncated at max_tokens")
	}
	return content, nil
}

func (c *ChatClient) post(ctx context.Context, payload completionRequest) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("llm: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("llm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("llm: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, parseAPIError(resp.StatusCode, body)
	}
	return body, nil
}

// parseAPIError 兼容 {"error":{...}} 和纯文本两种错误体
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil && env.Error.Message != "" {
		apiErr.Message = env.Error.Message
		apiErr.Type = env.Error.Type
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
