// Package llm talks to the language model: completions and keyword
// extraction.
package llm

import (
	"context"
	"errors"
	"time"

	"github.com/runnerr0/docrag/internal/metrics"
)

// ErrNoReply is returned when the model answers with no candidates.
var ErrNoReply = errors.New("language model returned no replies")

// Options configures a single completion request.
type Options struct {
	Temperature float64 // 0..1
	MaxTokens   int     // 0 leaves the limit to the backend
}

// Completer sends a prompt to a language model and returns the candidate
// replies.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts Options) ([]string, error)
}

// FirstReply runs one completion and returns its first reply.
func FirstReply(ctx context.Context, c Completer, prompt string, opts Options) (string, error) {
	replies, err := c.Complete(ctx, prompt, opts)
	if err != nil {
		return "", err
	}
	if len(replies) == 0 {
		return "", ErrNoReply
	}
	return replies[0], nil
}

type instrumented struct {
	next    Completer
	metrics *metrics.Metrics
	purpose string
}

// WithMetrics records request counts and durations of c under purpose
// ("keywords", "answer").
func WithMetrics(c Completer, m *metrics.Metrics, purpose string) Completer {
	if m == nil {
		return c
	}
	return &instrumented{next: c, metrics: m, purpose: purpose}
}

func (i *instrumented) Complete(ctx context.Context, prompt string, opts Options) ([]string, error) {
	start := time.Now()
	replies, err := i.next.Complete(ctx, prompt, opts)
	i.metrics.LLMDuration.WithLabelValues(i.purpose).Observe(time.Since(start).Seconds())

	status := "ok"
	if err != nil {
		status = "error"
	}
	i.metrics.LLMRequests.WithLabelValues(i.purpose, status).Inc()
	return replies, err
}
