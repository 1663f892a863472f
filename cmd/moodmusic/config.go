package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"moodmusic/internal/sentiment"
	"moodmusic/internal/validation"
	"moodmusic/internal/workflow"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "MOODMUSIC_"
	configPathEnv = "MOODMUSIC_CONFIG"
)

// Config 进程配置，优先级：命令行参数 > 环境变量 > 配置文件 > 默认值
type Config struct {
	Server    ServerConfig     `koanf:"server"`
	Log       LogConfig        `koanf:"log"`
	Catalog   CatalogConfig    `koanf:"catalog"`
	Recommend RecommendConfig  `koanf:"recommend"`
	Sentiment sentiment.Config `koanf:"sentiment"`
}

type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Debug           bool          `koanf:"debug"`
	RateLimit       float64       `koanf:"rate_limit" validate:"min=0"`
	Burst           int           `koanf:"burst" validate:"min=0"`
	RequestTimeout  time.Duration `koanf:"request_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=0"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

type CatalogConfig struct {
	// Path 为空时使用内置曲库
	Path string `koanf:"path"`
}

type RecommendConfig struct {
	FallbackSize int `koanf:"fallback_size" validate:"min=1"`
	// Pipeline 为空时使用默认的四阶段流程
	Pipeline []workflow.NodeConfig `koanf:"pipeline"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            5000,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Recommend: RecommendConfig{
			FallbackSize: 10,
		},
		Sentiment: sentiment.Config{
			Backend: sentiment.BackendLexicon,
			Timeout: 10 * time.Second,
		},
	}
}

// envMappings 环境变量 (去掉前缀后小写) 到配置路径
var envMappings = map[string]string{
	"port":              "server.port",
	"debug":             "server.debug",
	"rate_limit":        "server.rate_limit",
	"rate_burst":        "server.burst",
	"request_timeout":   "server.request_timeout",
	"shutdown_timeout":  "server.shutdown_timeout",
	"log_level":         "log.level",
	"log_format":        "log.format",
	"catalog_path":      "catalog.path",
	"fallback_size":     "recommend.fallback_size",
	"sentiment_backend": "sentiment.backend",
	"sentiment_timeout": "sentiment.timeout",
	"hf_endpoint":       "sentiment.huggingface.endpoint",
	"hf_token":          "sentiment.huggingface.token",
	"llm_endpoint":      "sentiment.llm.chat_endpoint",
	"llm_api_key":       "sentiment.llm.api_key",
	"llm_model":         "sentiment.llm.model",
	"onnx_library":      "sentiment.onnx.shared_library",
	"onnx_model":        "sentiment.onnx.model_path",
	"onnx_tokenizer":    "sentiment.onnx.tokenizer_path",
	"onnx_max_seq_len":  "sentiment.onnx.max_seq_len",
}

// envTransform MOODMUSIC_LOG_LEVEL -> log.level，未登记的变量忽略
func envTransform(key string) string {
	return envMappings[strings.ToLower(strings.TrimPrefix(key, envPrefix))]
}

// LoadConfig 按层加载配置
func LoadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("moodmusic", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv(configPathEnv), "Path to config file (YAML)")
	fs.Int("port", 0, "Server port")
	fs.Bool("debug", false, "Enable debug logging")
	fs.String("catalog", "", "Path to catalog YAML file")
	fs.String("sentiment", "", "Sentiment backend: lexicon, huggingface, llm, onnx")
	fs.String("log-level", "", "Log level")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	// 1. 默认值
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. 配置文件，显式指定但不存在时报错
	if *configPath != "" {
		if err := k.Load(file.Provider(*configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", *configPath, err)
		}
	}

	// 3. 环境变量
	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// 4. 命令行参数，只应用显式设置过的
	flagKeys := map[string]string{
		"port":      "server.port",
		"debug":     "server.debug",
		"catalog":   "catalog.path",
		"sentiment": "sentiment.backend",
		"log-level": "log.level",
	}
	var setErr error
	fs.Visit(func(f *flag.Flag) {
		if path, ok := flagKeys[f.Name]; ok && setErr == nil {
			setErr = k.Set(path, f.Value.String())
		}
	})
	if setErr != nil {
		return nil, fmt.Errorf("failed to apply flags: %w", setErr)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Sentiment.Backend = strings.ToLower(strings.TrimSpace(c.Sentiment.Backend))
	if c.Server.Debug {
		c.Log.Level = "debug"
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	switch c.Sentiment.Backend {
	case sentiment.BackendLexicon, sentiment.BackendHuggingFace, sentiment.BackendLLM, sentiment.BackendONNX:
	default:
		return fmt.Errorf("unknown sentiment backend %q", c.Sentiment.Backend)
	}
	for i, node := range c.Recommend.Pipeline {
		if node.Type == "" {
			return fmt.Errorf("recommend.pipeline[%d]: type is required", i)
		}
	}
	return nil
}

// Addr 监听地址
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
