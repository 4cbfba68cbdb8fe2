package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/runnerr0/docrag/internal/retrieval"
)

// Execute implements the go-flags Commander interface for SearchCommand.
func (c *SearchCommand) Execute(args []string) error {
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

	n := env.cfg.Retrieval.DefaultDocs
	if c.Docs != nil {
		n = *c.Docs
	}
	return c.executeWithRanker(ctx, r, args, n)
}

// docRanker is satisfied by *retrieval.Ranker.
type docRanker interface {
	Rank(ctx context.Context, query string, n int) ([]retrieval.Hit, error)
}

// executeWithRanker runs the search against a provided ranker (for testing).
func (c *SearchCommand) executeWithRanker(ctx context.Context, r docRanker, args []string, n int) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("search needs a query")
	}
	if n < 0 {
		return fmt.Errorf("--docs must not be negative")
	}

	hits, err := r.Rank(ctx, query, n)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return writeJSON(jsonSearchOutput{Count: len(hits), Query: query, Results: toJSONHits(hits)})
	}
	return c.printHuman(query, hits)
}

func (c *SearchCommand) printHuman(query string, hits []retrieval.Hit) error {
	if len(hits) == 0 {
		fmt.Printf("No documents found for %q\n", query)
		return nil
	}

	resultWord := "documents"
	if len(hits) == 1 {
		resultWord = "document"
	}
	fmt.Printf("Found %d %s for %q\n\n", len(hits), resultWord, query)
	printHitTable(hits)
	return nil
}

func printHitTable(hits []retrieval.Hit) {
	t := &table{header: []string{"#", "ID", "HITS", "DATE", "TITLE", "URL"}, maxWidth: []int{0, 0, 0, 0, 50, 0}}
	for i, h := range hits {
		t.add(strconv.Itoa(i+1), strconv.FormatInt(h.ID, 10), strconv.Itoa(h.Hits), h.Date, h.Title, h.URL)
	}
	t.write(os.Stdout)
}

type jsonHit struct {
	ID    int64  `json:"id"`
	Hits  int    `json:"hits"`
	Title string `json:"title"`
	Date  string `json:"date"`
	URL   string `json:"url"`
}

type jsonSearchOutput struct {
	Count   int       `json:"count"`
	Query   string    `json:"query"`
	Results []jsonHit `json:"results"`
}

func toJSONHits(hits []retrieval.Hit) []jsonHit {
	out := make([]jsonHit, len(hits))
	for i, h := range hits {
		out[i] = jsonHit{ID: h.ID, Hits: h.Hits, Title: h.Title, Date: h.Date, URL: h.URL}
	}
	return out
}
