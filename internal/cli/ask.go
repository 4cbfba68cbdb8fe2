package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/runnerr0/docrag/internal/answer"
	"github.com/runnerr0/docrag/internal/config"
)

// Execute implements the go-flags Commander interface for AskCommand.
func (c *AskCommand) Execute(args []string) error {
	env, err := loadEnvironment(c.globals)
	if err != nil {
		return err
	}
	defer env.close()

	ctx, cancel := signalContext()
	defer cancel()

	store, db, err := env.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	r, err := env.ranker(store)
	if err != nil {
		return err
	}
	gen, err := env.completer("answer")
	if err != nil {
		return err
	}

	req, err := c.request(env.cfg, args)
	if err != nil {
		return err
	}
	return c.executeWithAnswerer(ctx, answer.NewAnswerer(r, gen, env.logger), req)
}

// request merges the flags over the configured generation defaults.
func (c *AskCommand) request(cfg *config.Config, args []string) (answer.Request, error) {
	req := answer.Request{
		Prompt:      strings.TrimSpace(strings.Join(args, " ")),
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
		UseRAG:      !c.NoRAG,
		NumDocs:     cfg.Retrieval.DefaultDocs,
	}
	if c.Temperature != nil {
		req.Temperature = *c.Temperature
	}
	if c.MaxTokens != nil {
		req.MaxTokens = *c.MaxTokens
	}
	if c.Docs != nil {
		req.NumDocs = *c.Docs
	}

	switch {
	case req.Prompt == "":
		return req, fmt.Errorf("ask needs a question")
	case req.Temperature < 0 || req.Temperature > 1:
		return req, fmt.Errorf("--temperature must be between 0 and 1")
	case req.MaxTokens <= 0:
		return req, fmt.Errorf("--max-tokens must be positive")
	case req.NumDocs < 0:
		return req, fmt.Errorf("--docs must not be negative")
	}
	return req, nil
}

// answerer is satisfied by *answer.Answerer.
type answerer interface {
	Answer(ctx context.Context, req answer.Request) (*answer.Result, error)
}

// executeWithAnswerer runs req against a provided answerer (for testing).
func (c *AskCommand) executeWithAnswerer(ctx context.Context, a answerer, req answer.Request) error {
	res, err := a.Answer(ctx, req)
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		return writeJSON(map[string]any{
			"question":  req.Prompt,
			"rag":       req.UseRAG,
			"documents": toJSONHits(res.Documents),
			"answer":    res.Answer,
		})
	}

	if req.UseRAG {
		fmt.Println("Relevant documents (most relevant first):")
		fmt.Println()
		if len(res.Documents) == 0 {
			fmt.Println("  none")
		} else {
			printHitTable(res.Documents)
		}
		fmt.Println()
	}
	fmt.Println(res.Answer)
	return nil
}
