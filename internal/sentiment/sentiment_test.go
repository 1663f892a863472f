package sentiment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"moodmusic/internal/model"
	"moodmusic/pkg/llm"

	gobreaker "github.com/sony/gobreaker/v2"
)

func TestMoodForLabel(t *testing.T) {
	tests := []struct {
		label string
		want  model.Mood
	}{
		{"POSITIVE", model.MoodHappy},
		{"NEGATIVE", model.MoodSad},
		{"NEUTRAL", model.MoodNeutral},
		{"positive", model.MoodHappy},
		{" negative ", model.MoodSad},
		{"LABEL_1", model.MoodNeutral},
		{"", model.MoodNeutral},
	}
	for _, tt := range tests {
		if got := MoodForLabel(tt.label); got != tt.want {
			t.Errorf("MoodForLabel(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestAdapterClassifyLovesThis(t *testing.T) {
	a := NewAdapter(NewLexiconClassifier(), WithBackend(BackendLexicon))
	res, err := a.Classify(context.Background(), "I love this")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if res.Mood != model.MoodHappy {
		t.Errorf("expected happy, got %q", res.Mood)
	}
	if res.Label != LabelPositive {
		t.Errorf("expected POSITIVE, got %q", res.Label)
	}
	if res.Score <= 0.5 || res.Score > 1 {
		t.Errorf("unexpected score %v", res.Score)
	}
}

func TestAdapterValidation(t *testing.T) {
	var calls int32
	a := NewAdapter(ClassifierFunc(func(ctx context.Context, text string) (string, float64, error) {
		atomic.AddInt32(&calls, 1)
		return LabelPositive, 1, nil
	}))

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := a.Classify(context.Background(), text); !errors.Is(err, ErrValidation) {
			t.Errorf("Classify(%q): expected ErrValidation, got %v", text, err)
		}
	}
	if calls != 0 {
		t.Errorf("classifier should not be called for empty text, called %d times", calls)
	}
}

func TestAdapterUnavailable(t *testing.T) {
	a := NewUnavailableAdapter(errors.New("weights missing"), WithBackend(BackendONNX))
	if a.Ready() {
		t.Error("unavailable adapter reports ready")
	}
	_, err := a.Classify(context.Background(), "hello")
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}

	// 空文本仍优先报告校验错误
	if _, err := a.Classify(context.Background(), " "); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestAdapterClassificationErrors(t *testing.T) {
	tests := []struct {
		name string
		fn   ClassifierFunc
	}{
		{"error", func(ctx context.Context, text string) (string, float64, error) {
			return "", 0, errors.New("boom")
		}},
		{"panic", func(ctx context.Context, text string) (string, float64, error) {
			panic("tensor shape mismatch")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAdapter(tt.fn)
			res, err := a.Classify(context.Background(), "some text")
			if !errors.Is(err, ErrClassification) {
				t.Fatalf("expected ErrClassification, got %v", err)
			}
			if res != (model.SentimentResult{}) {
				t.Errorf("expected no partial result, got %+v", res)
			}
		})
	}
}

func TestAdapterTimeout(t *testing.T) {
	a := NewAdapter(ClassifierFunc(func(ctx context.Context, text string) (string, float64, error) {
		<-ctx.Done()
		return "", 0, ctx.Err()
	}), WithTimeout(10*time.Millisecond))

	if _, err := a.Classify(context.Background(), "slow"); !errors.Is(err, ErrClassification) {
		t.Fatalf("expected ErrClassification on deadline, got %v", err)
	}
}

func TestAdapterUnknownLabel(t *testing.T) {
	a := NewAdapter(ClassifierFunc(func(ctx context.Context, text string) (string, float64, error) {
		return "MIXED", 0.7, nil
	}))
	res, err := a.Classify(context.Background(), "meh")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if res.Mood != model.MoodNeutral || res.Label != "MIXED" || res.Score != 0.7 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestLexiconClassifier(t *testing.T) {
	c := NewLexiconClassifier()
	tests := []struct {
		text  string
		label string
	}{
		{"I love this", LabelPositive},
		{"What a wonderful sunny day", LabelPositive},
		{"I hate rainy mondays", LabelNegative},
		{"I am not happy", LabelNegative},
		{"this is not bad", LabelPositive},
		{"The train leaves at noon", LabelNeutral},
		{"good and bad", LabelNeutral},
		{"No doubt, I love this song", LabelPositive},
		{"I don't know why but I love this", LabelPositive},
		{"I am not very happy", LabelNegative},
		{"I’m not sad at all", LabelPositive},
		{"Not that I care. What a beautiful day", LabelPositive},
		{"never ever have I been this happy", LabelPositive},
	}
	for _, tt := range tests {
		label, score, err := c.Classify(context.Background(), tt.text)
		if err != nil {
			t.Fatalf("Classify(%q) failed: %v", tt.text, err)
		}
		if label != tt.label {
			t.Errorf("Classify(%q) = %s, want %s", tt.text, label, tt.label)
		}
		if score < 0.5 || score > 1 {
			t.Errorf("Classify(%q) score %v out of range", tt.text, score)
		}
	}
}

func TestTokenizeClauseBreaks(t *testing.T) {
	got := tokenize("No doubt, I DON’T mind!")
	want := []string{"no", "doubt", clauseBreak, "i", "don't", "mind", clauseBreak}
	if len(got) != len(want) {
		t.Fatalf("tokenize = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestHuggingFaceClassifier(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		label string
		score float64
	}{
		{"nested", `[[{"label":"NEGATIVE","score":0.1},{"label":"POSITIVE","score":0.9}]]`, "POSITIVE", 0.9},
		{"flat", `[{"label":"NEGATIVE","score":0.8},{"label":"POSITIVE","score":0.2}]`, "NEGATIVE", 0.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var auth string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				auth = r.Header.Get("Authorization")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewHuggingFaceClassifier(HuggingFaceConfig{Endpoint: srv.URL, Token: "hf_x"})
			if err != nil {
				t.Fatalf("NewHuggingFaceClassifier failed: %v", err)
			}
			label, score, err := c.Classify(context.Background(), "text")
			if err != nil {
				t.Fatalf("Classify failed: %v", err)
			}
			if label != tt.label || score != tt.score {
				t.Errorf("got (%s, %v), want (%s, %v)", label, score, tt.label, tt.score)
			}
			if auth != "Bearer hf_x" {
				t.Errorf("unexpected auth header %q", auth)
			}
		})
	}
}

func TestHuggingFaceClassifierErrorAndBreaker(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Model is currently loading"}`))
	}))
	defer srv.Close()

	c, err := NewHuggingFaceClassifier(HuggingFaceConfig{
		Endpoint: srv.URL,
		Breaker:  BreakerConfig{MaxFailures: 2, OpenTimeout: time.Minute},
	})
	if err != nil {
		t.Fatalf("NewHuggingFaceClassifier failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, _, err := c.Classify(context.Background(), "text"); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}
	_, _, err = c.Classify(context.Background(), "text")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Errorf("expected 2 upstream calls, got %d", got)
	}
}

func TestNewHuggingFaceClassifierInvalidEndpoint(t *testing.T) {
	if _, err := NewHuggingFaceClassifier(HuggingFaceConfig{Endpoint: "ftp://x"}); err == nil {
		t.Error("expected error for non-http endpoint")
	}
}

func TestParseHFResponseErrors(t *testing.T) {
	for _, body := range []string{`[]`, `[[]]`, `{"x":1}`, `[{"score":0.9}]`} {
		if _, err := parseHFResponse([]byte(body)); err == nil {
			t.Errorf("parseHFResponse(%s): expected error", body)
		}
	}
}

type fakeLLM struct {
	reply string
	err   error
}

func (f fakeLLM) Chat(ctx context.Context, messages []llm.Message, options ...llm.Option) (string, error) {
	return f.reply, f.err
}

func TestLLMClassifier(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		label   string
		score   float64
		wantErr bool
	}{
		{"plain", `{"label":"NEGATIVE","score":0.93}`, "NEGATIVE", 0.93, false},
		{"markdown", "```json\n{\"label\": \"positive\", \"score\": 0.8}\n```", "POSITIVE", 0.8, false},
		{"chatter", `Sure! {"label":"NEUTRAL","score":3}`, "NEUTRAL", 0, false},
		{"garbage", `I think it is positive`, "", 0, true},
		{"no label", `{"score":0.5}`, "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewLLMClassifier(fakeLLM{reply: tt.reply}, BreakerConfig{})
			if err != nil {
				t.Fatalf("NewLLMClassifier failed: %v", err)
			}
			label, score, err := c.Classify(context.Background(), "text")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Classify failed: %v", err)
			}
			if label != tt.label || score != tt.score {
				t.Errorf("got (%s, %v), want (%s, %v)", label, score, tt.label, tt.score)
			}
		})
	}
}

func TestNewClassifier(t *testing.T) {
	if c, err := NewClassifier(Config{}); err != nil {
		t.Fatalf("default backend failed: %v", err)
	} else if _, ok := c.(*LexiconClassifier); !ok {
		t.Errorf("expected lexicon classifier, got %T", c)
	}

	if _, err := NewClassifier(Config{Backend: "telepathy"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := NewClassifier(Config{Backend: BackendLLM}); err == nil {
		t.Error("expected error for llm backend without endpoint")
	}
	if _, err := NewClassifier(Config{Backend: BackendONNX}); err == nil {
		t.Error("expected error for onnx backend without model path")
	}
}

func TestNewDegradesOnError(t *testing.T) {
	a := New(Config{Backend: BackendONNX})
	if a.Ready() {
		t.Fatal("expected degraded adapter")
	}
	if a.Backend() != BackendONNX {
		t.Errorf("unexpected backend %q", a.Backend())
	}
	if _, err := a.Classify(context.Background(), "hello"); !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}

	ok := New(Config{})
	if !ok.Ready() || ok.Backend() != BackendLexicon {
		t.Errorf("expected ready lexicon adapter, got ready=%v backend=%q", ok.Ready(), ok.Backend())
	}
}

func TestSoftmax(t *testing.T) {
	probs := softmax([]float32{-2.5, 2.5})
	if len(probs) != 2 {
		t.Fatalf("expected 2 probabilities, got %d", len(probs))
	}
	if sum := probs[0] + probs[1]; sum < 0.999999 || sum > 1.000001 {
		t.Errorf("probabilities should sum to 1, got %v", sum)
	}
	if probs[1] <= probs[0] || probs[1] < 0.99 {
		t.Errorf("unexpected probabilities %v", probs)
	}

	// 大数值不能溢出
	probs = softmax([]float32{1000, 1000})
	if probs[0] != 0.5 || probs[1] != 0.5 {
		t.Errorf("expected equal probabilities, got %v", probs)
	}
}

func TestModelInputsKeepsFinalSpecialToken(t *testing.T) {
	ids := []int{101, 7, 8, 9, 10, 102}
	mask := []int{1, 1, 1, 1, 1, 1}

	tests := []struct {
		name    string
		maxLen  int
		wantIDs []int64
	}{
		{"fits", 8, []int64{101, 7, 8, 9, 10, 102}},
		{"exact", 6, []int64{101, 7, 8, 9, 10, 102}},
		{"truncated", 4, []int64{101, 7, 8, 102}},
		{"single", 1, []int64{101}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotIDs, gotMask := modelInputs(ids, mask, tt.maxLen)
			if len(gotIDs) != len(tt.wantIDs) || len(gotMask) != len(tt.wantIDs) {
				t.Fatalf("modelInputs lengths = %d/%d, want %d", len(gotIDs), len(gotMask), len(tt.wantIDs))
			}
			for i := range tt.wantIDs {
				if gotIDs[i] != tt.wantIDs[i] {
					t.Errorf("ids = %v, want %v", gotIDs, tt.wantIDs)
					break
				}
			}
		})
	}

	// 缺少 attention mask 时默认全 1
	_, gotMask := modelInputs([]int{101, 102}, nil, 4)
	if gotMask[0] != 1 || gotMask[1] != 1 {
		t.Errorf("expected default mask of ones, got %v", gotMask)
	}
}
