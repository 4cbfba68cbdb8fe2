package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/runnerr0/docrag/internal/crawler"
)

// Execute implements the go-flags Commander interface for CrawlCommand.
func (c *CrawlCommand) Execute(args []string) error {
	env, err := loadEnvironment(c.globals)
	if err != nil {
		return err
	}
	defer env.close()

	l, err := env.lister(c.Source)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	return c.executeWithLister(ctx, l)
}

type jsonEntry struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Date  string `json:"date"`
}

// executeWithLister prints the entries of l (for testing).
func (c *CrawlCommand) executeWithLister(ctx context.Context, l crawler.Lister) error {
	entries, err := l.List(ctx)
	if err != nil {
		return fmt.Errorf("list %s: %w", l.Name(), err)
	}

	listed := make([]*crawler.LinkEntry, 0, len(entries))
	for _, e := range entries {
		if e != nil {
			listed = append(listed, e)
		}
	}

	if c.globals != nil && c.globals.JSON {
		out := make([]jsonEntry, len(listed))
		for i, e := range listed {
			out[i] = jsonEntry{Title: e.Title, URL: l.BaseURL() + e.Href, Date: e.Date}
		}
		return writeJSON(map[string]any{"source": l.Name(), "count": len(out), "entries": out})
	}

	if len(listed) == 0 {
		fmt.Printf("No documents listed by %s\n", l.Name())
		return nil
	}

	fmt.Printf("%d documents listed by %s\n\n", len(listed), l.Name())
	t := &table{header: []string{"DATE", "TITLE", "URL"}, maxWidth: []int{0, 60, 0}}
	for _, e := range listed {
		t.add(e.Date, e.Title, l.BaseURL()+e.Href)
	}
	t.write(os.Stdout)
	return nil
}
