// Package answer assembles retrieval-augmented prompts and asks the model.
package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/runnerr0/docrag/internal/llm"
	"github.com/runnerr0/docrag/internal/retrieval"
	"go.uber.org/zap"
)

// ErrEmptyPrompt is returned for blank questions.
var ErrEmptyPrompt = errors.New("prompt is empty")

const ragInstruction = `Beantworte die Frage am Ende mit Bezug auf den folgenden Kontext.
Erkläre deine Antwort ausführlich und nenne Dokumente, auf die du dich beziehst, mit Titel und Verabschiedungsdatum.
Erstelle eine passende Überschrift für deine Antwort.

Kontext:

`

// Context is a document placed in the prompt.
type Context struct {
	Title   string
	Content string
}

// BuildPrompt concatenates the instruction, every document in the given
// order and the question.
func BuildPrompt(question string, docs []Context) string {
	var b strings.Builder
	b.WriteString(ragInstruction)
	for _, d := range docs {
		b.WriteString("Title:")
		b.WriteString(d.Title)
		b.WriteString("\n\nText:")
		b.WriteString(d.Content)
		b.WriteString("\n\n")
	}
	b.WriteString("\n\nFrage:")
	b.WriteString(question)
	return b.String()
}

// Ranker selects documents for a question.
type Ranker interface {
	Rank(ctx context.Context, query string, n int) ([]retrieval.Hit, error)
}

// Request is a single question.
type Request struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
	UseRAG      bool
	NumDocs     int
}

// Result holds the documents used, most relevant first, and the model reply.
type Result struct {
	Documents []retrieval.Hit
	Answer    string
}

// Answerer answers questions, optionally grounded in stored documents.
type Answerer struct {
	ranker    Ranker
	completer llm.Completer
	logger    *zap.Logger
}

// NewAnswerer creates an Answerer.
func NewAnswerer(r Ranker, c llm.Completer, logger *zap.Logger) *Answerer {
	return &Answerer{ranker: r, completer: c, logger: logger}
}

// Answer runs req. Without RAG the prompt goes to the model unchanged and no
// documents are returned.
func (a *Answerer) Answer(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	opts := llm.Options{Temperature: req.Temperature, MaxTokens: req.MaxTokens}
	res := &Result{Documents: []retrieval.Hit{}}

	prompt := req.Prompt
	if req.UseRAG {
		hits, err := a.ranker.Rank(ctx, req.Prompt, req.NumDocs)
		if err != nil {
			return nil, fmt.Errorf("rank documents: %w", err)
		}
		res.Documents = hits

		docs := make([]Context, 0, len(hits))
		for _, h := range hits {
			docs = append(docs, Context{Title: h.Title, Content: h.Content})
		}
		prompt = BuildPrompt(req.Prompt, docs)
		a.logger.Debug("rag prompt built", zap.Int("documents", len(docs)), zap.Int("prompt_bytes", len(prompt)))
	}

	reply, err := llm.FirstReply(ctx, a.completer, prompt, opts)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	res.Answer = reply
	return res, nil
}
