package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/runnerr0/docrag/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	replies []string
	err     error
	prompts []string
	opts    []Options
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string, opts Options) ([]string, error) {
	f.prompts = append(f.prompts, prompt)
	f.opts = append(f.opts, opts)
	return f.replies, f.err
}

func TestSplitKeywords_Untrimmed(t *testing.T) {
	got := SplitKeywords("Physik, Quanten,,Optik", false)
	assert.Equal(t, []string{"Physik", " Quanten", "", "Optik"}, got)
}

func TestSplitKeywords_Trimmed(t *testing.T) {
	got := SplitKeywords(" Physik, Quanten ,,\nOptik ,", true)
	assert.Equal(t, []string{"Physik", "Quanten", "Optik"}, got)
}

func TestSplitKeywords_NoCommas(t *testing.T) {
	got := SplitKeywords("Hier sind die Schlagwörter: Physik Optik", true)
	assert.Equal(t, []string{"Hier sind die Schlagwörter: Physik Optik"}, got)
}

func TestKeywordExtractor_Extract(t *testing.T) {
	fc := &fakeCompleter{replies: []string{"Reisekosten, Abrechnung", "ignored"}}
	k := NewKeywordExtractor(fc)

	got, err := k.Extract(context.Background(), "Wie rechne ich Reisekosten ab?")
	require.NoError(t, err)
	assert.Equal(t, "Reisekosten, Abrechnung", got)

	require.Len(t, fc.prompts, 1)
	assert.Contains(t, fc.prompts[0], "mindestens 30 Schlagwörtern")
	assert.Contains(t, fc.prompts[0], "kommagetrennte Liste")
	assert.True(t, strings.HasSuffix(fc.prompts[0], "\n\nWie rechne ich Reisekosten ab?"))
	assert.Equal(t, Options{Temperature: 0}, fc.opts[0])
}

func TestKeywordExtractor_NoReplies(t *testing.T) {
	k := NewKeywordExtractor(&fakeCompleter{})

	_, err := k.Extract(context.Background(), "text")
	assert.ErrorIs(t, err, ErrNoReply)
}

func TestKeywordExtractor_PropagatesError(t *testing.T) {
	boom := errors.New("connection reset")
	k := NewKeywordExtractor(&fakeCompleter{err: boom})

	_, err := k.Extract(context.Background(), "text")
	assert.ErrorIs(t, err, boom)
}

func TestWithMetrics(t *testing.T) {
	m := metrics.New()
	c := WithMetrics(&fakeCompleter{replies: []string{"ok"}}, m, "keywords")

	_, err := c.Complete(context.Background(), "p", Options{})
	require.NoError(t, err)

	failing := WithMetrics(&fakeCompleter{err: errors.New("x")}, m, "answer")
	_, err = failing.Complete(context.Background(), "p", Options{})
	require.Error(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.LLMRequests.WithLabelValues("keywords", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LLMRequests.WithLabelValues("answer", "error")))
}

func TestWithMetrics_NilMetrics(t *testing.T) {
	fc := &fakeCompleter{}
	assert.Same(t, fc, WithMetrics(fc, nil, "keywords"))
}

type chatRequest struct {
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature"`
	MaxTokens   int      `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

const chatResponse = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [
    {"index": 0, "message": {"role": "assistant", "content": "Physik, Optik"}, "finish_reason": "stop"},
    {"index": 1, "message": {"role": "assistant", "content": "Chemie"}, "finish_reason": "stop"}
  ],
  "usage": {"prompt_tokens": 10, "completion_tokens": 4, "total_tokens": 14}
}`

func TestOpenAIClient_Complete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatResponse))
	}))
	defer srv.Close()

	c, err := NewOpenAIClient(ClientConfig{
		Provider: "openai",
		BaseURL:  srv.URL + "/v1",
		Model:    "gpt-4o-mini",
		APIKey:   "sk-test",
	})
	require.NoError(t, err)

	replies, err := c.Complete(context.Background(), "Frage", Options{Temperature: 0.5, MaxTokens: 1000})
	require.NoError(t, err)
	assert.Equal(t, []string{"Physik, Optik", "Chemie"}, replies)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "Frage", got.Messages[0].Content)
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0.5, *got.Temperature, 1e-6)
	assert.Equal(t, 1000, got.MaxTokens)
}

func TestOpenAIClient_ZeroTemperatureIsSent(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatResponse))
	}))
	defer srv.Close()

	c, err := NewOpenAIClient(ClientConfig{Provider: "openai", BaseURL: srv.URL + "/v1", Model: "m", APIKey: "k"})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "p", Options{Temperature: 0})
	require.NoError(t, err)
	require.NotNil(t, got.Temperature, "temperature must not be omitted")
	assert.InDelta(t, 0, *got.Temperature, 1e-6)
}

func TestOpenAIClient_Azure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/gpt-4o-mini/chat/completions", r.URL.Path)
		assert.Equal(t, "2024-06-01", r.URL.Query().Get("api-version"))
		assert.Equal(t, "azure-key", r.Header.Get("api-key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatResponse))
	}))
	defer srv.Close()

	c, err := NewOpenAIClient(ClientConfig{
		Provider:   "azure",
		BaseURL:    srv.URL,
		Model:      "gpt-4o-mini",
		APIVersion: "2024-06-01",
		APIKey:     "azure-key",
	})
	require.NoError(t, err)

	reply, err := FirstReply(context.Background(), c, "p", Options{})
	require.NoError(t, err)
	assert.Equal(t, "Physik, Optik", reply)
}

func TestOpenAIClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	}))
	defer srv.Close()

	c, err := NewOpenAIClient(ClientConfig{Provider: "openai", BaseURL: srv.URL + "/v1", Model: "m", APIKey: "k"})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "p", Options{})
	assert.Error(t, err)
}

func TestNewOpenAIClient_Validation(t *testing.T) {
	_, err := NewOpenAIClient(ClientConfig{Provider: "azure"})
	assert.Error(t, err)

	_, err = NewOpenAIClient(ClientConfig{Provider: "ollama"})
	assert.Error(t, err)
}
