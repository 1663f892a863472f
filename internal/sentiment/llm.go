package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"moodmusic/pkg/llm"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

const llmSystemPrompt = `You are a sentiment classifier. Classify the sentiment of the user's text.
Respond with ONLY a JSON object of the form {"label": "POSITIVE" | "NEGATIVE" | "NEUTRAL", "score": <confidence between 0 and 1>}.
Do not include explanations, Markdown or any extra text.`

// LLMConfig OpenAI 兼容接口配置
type LLMConfig struct {
	ChatEndpoint string        `koanf:"chat_endpoint"`
	APIKey       string        `koanf:"api_key"`
	Model        string        `koanf:"model"`
	Breaker      BreakerConfig `koanf:"breaker"`
}

// LLMClassifier 让大模型做情感分类
type LLMClassifier struct {
	client llm.Client
	cb     *gobreaker.CircuitBreaker[prediction]
}

// NewLLMClassifier 使用给定的 llm.Client
func NewLLMClassifier(client llm.Client, breaker BreakerConfig) (*LLMClassifier, error) {
	if client == nil {
		return nil, errors.New("llm: client is required")
	}
	return &LLMClassifier{
		client: client,
		cb:     newBreaker("llm", breaker),
	}, nil
}

// NewLLMClassifierFromConfig 根据配置构造 OpenAI 兼容客户端
func NewLLMClassifierFromConfig(cfg LLMConfig) (*LLMClassifier, error) {
	if cfg.ChatEndpoint == "" || cfg.Model == "" {
		return nil, errors.New("llm: chat_endpoint and model are required")
	}
	return NewLLMClassifier(llm.NewChatClient(cfg.ChatEndpoint, cfg.APIKey, cfg.Model, 0), cfg.Breaker)
}

func (c *LLMClassifier) Classify(ctx context.Context, text string) (string, float64, error) {
	p, err := c.cb.Execute(func() (prediction, error) {
		return c.ask(ctx, text)
	})
	if err != nil {
		if isBreakerRejection(err) {
			return "", 0, fmt.Errorf("llm: %w", err)
		}
		return "", 0, err
	}
	return p.Label, p.Score, nil
}

func (c *LLMClassifier) ask(ctx context.Context, text string) (prediction, error) {
	messages := []llm.Message{
		{Role: "system", Content: llmSystemPrompt},
		{Role: "user", Content: text},
	}

	respContent, err := c.client.Chat(ctx, messages, llm.WithTemperature(0), llm.WithMaxTokens(64))
	if err != nil {
		return prediction{}, fmt.Errorf("llm chat failed: %w", err)
	}

	var p prediction
	if err := json.Unmarshal([]byte(cleanJSON(respContent)), &p); err != nil {
		return prediction{}, fmt.Errorf("failed to parse llm response: %w", err)
	}
	p.Label = strings.ToUpper(strings.TrimSpace(p.Label))
	if p.Label == "" {
		return prediction{}, errors.New("llm response has no label")
	}
	if p.Score < 0 || p.Score > 1 {
		p.Score = 0
	}
	return p, nil
}

// cleanJSON 从模型输出中提取 JSON 对象
func cleanJSON(content string) string {
	content = strings.TrimSpace(content)

	// 移除 Markdown 代码块标记
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start != -1 && end != -1 && end > start {
		content = content[start : end+1]
	}

	return content
}
