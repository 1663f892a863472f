package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestJSONOutputAndLevels(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})
	defer Init(Config{Level: "info", Format: "console"})

	Debug("hidden %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("debug log should be filtered at info level, got %q", buf.String())
	}

	Info("hello %s", "world")
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json log line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "hello world" || entry["level"] != "info" {
		t.Errorf("unexpected entry: %v", entry)
	}

	buf.Reset()
	SetDebug(true)
	Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("debug log missing after SetDebug(true): %q", buf.String())
	}
}

func TestCtxAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})
	defer Init(Config{Level: "info", Format: "console"})

	id := NewRequestID()
	ctx := ContextWithRequestID(context.Background(), id)
	if got := RequestIDFromContext(ctx); got != id {
		t.Fatalf("RequestIDFromContext() = %q, want %q", got, id)
	}

	l := Ctx(ctx)
	l.Info().Msg("with id")
	if !strings.Contains(buf.String(), id) {
		t.Errorf("request id missing from log line: %q", buf.String())
	}

	if RequestIDFromContext(context.Background()) != "" {
		t.Error("expected empty request id")
	}
}
