package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"moodmusic/internal/nodes"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("expected port 5000, got %d", cfg.Server.Port)
	}
	if cfg.Sentiment.Backend != "lexicon" {
		t.Errorf("expected lexicon backend, got %q", cfg.Sentiment.Backend)
	}
	if cfg.Recommend.FallbackSize != 10 {
		t.Errorf("expected fallback size 10, got %d", cfg.Recommend.FallbackSize)
	}
	if cfg.Sentiment.Timeout != 10*time.Second {
		t.Errorf("unexpected sentiment timeout %v", cfg.Sentiment.Timeout)
	}
	if cfg.Addr() != ":5000" {
		t.Errorf("unexpected addr %q", cfg.Addr())
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 7000
  rate_limit: 5
log:
  level: warn
sentiment:
  backend: huggingface
  timeout: 3s
  huggingface:
    token: from-file
recommend:
  fallback_size: 4
`)
	t.Setenv("MOODMUSIC_PORT", "7100")
	t.Setenv("MOODMUSIC_HF_TOKEN", "from-env")
	t.Setenv("MOODMUSIC_UNRELATED", "ignored")

	cfg, err := LoadConfig([]string{"-config", path, "-port", "7200", "-debug"})
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != 7200 {
		t.Errorf("flag should win, got port %d", cfg.Server.Port)
	}
	if cfg.Sentiment.HuggingFace.Token != "from-env" {
		t.Errorf("env should override file, got %q", cfg.Sentiment.HuggingFace.Token)
	}
	if cfg.Sentiment.Backend != "huggingface" || cfg.Sentiment.Timeout != 3*time.Second {
		t.Errorf("unexpected sentiment config %+v", cfg.Sentiment)
	}
	if cfg.Server.RateLimit != 5 || cfg.Recommend.FallbackSize != 4 {
		t.Errorf("file values not applied: %+v %+v", cfg.Server, cfg.Recommend)
	}
	if !cfg.Server.Debug || cfg.Log.Level != "debug" {
		t.Errorf("debug flag should force debug level, got %+v", cfg.Log)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	t.Setenv(configPathEnv, "")
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"missing file", []string{"-config", filepath.Join(t.TempDir(), "nope.yaml")}, nil},
		{"bad backend", []string{"-sentiment", "telepathy"}, nil},
		{"bad port", nil, map[string]string{"MOODMUSIC_PORT": "70000"}},
		{"bad fallback", nil, map[string]string{"MOODMUSIC_FALLBACK_SIZE": "0"}},
		{"bad log level", []string{"-log-level", "loud"}, nil},
		{"unknown flag", []string{"-nope"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBuildPipelineDefault(t *testing.T) {
	engine, err := BuildPipeline(RecommendConfig{FallbackSize: 3})
	if err != nil {
		t.Fatalf("BuildPipeline failed: %v", err)
	}
	got := engine.Nodes()
	if len(got) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(got))
	}
	wantTypes := []string{"score_strict", "relax_attribute", "relax_preference", "fallback_random"}
	for i, n := range got {
		if n.Type() != wantTypes[i] {
			t.Errorf("node %d: expected %s, got %s", i, wantTypes[i], n.Type())
		}
	}
	fb, ok := got[3].(*nodes.FallbackRandomNode)
	if !ok {
		t.Fatalf("unexpected fallback node type %T", got[3])
	}
	if fb.Size() != 3 {
		t.Errorf("expected fallback size 3, got %d", fb.Size())
	}
}

func TestBuildPipelineFromFile(t *testing.T) {
	path := writeConfig(t, `
recommend:
  pipeline:
    - name: strict
      type: score_strict
      config:
        genre_weight: 5
    - name: random
      type: fallback_random
      config:
        size: 2
`)
	cfg, err := LoadConfig([]string{"-config", path})
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	engine, err := BuildPipeline(cfg.Recommend)
	if err != nil {
		t.Fatalf("BuildPipeline failed: %v", err)
	}
	got := engine.Nodes()
	if len(got) != 2 || got[0].Name() != "strict" || got[1].Name() != "random" {
		t.Fatalf("unexpected nodes %v", got)
	}
	if fb := got[1].(*nodes.FallbackRandomNode); fb.Size() != 2 {
		t.Errorf("explicit size should be kept, got %d", fb.Size())
	}
}

func TestBuildPipelineUnknownType(t *testing.T) {
	path := writeConfig(t, `
recommend:
  pipeline:
    - type: recall_magic
`)
	cfg, err := LoadConfig([]string{"-config", path})
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if _, err := BuildPipeline(cfg.Recommend); err == nil {
		t.Error("expected error for unknown node type")
	}
}
