package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/runnerr0/docrag/internal/crawler"
	"github.com/runnerr0/docrag/internal/ingest"
)

// Execute implements the go-flags Commander interface for AddCommand.
func (c *AddCommand) Execute(args []string) error {
	if c.File == "" {
		return fmt.Errorf("--file is required for add command")
	}
	if c.Title == "" {
		return fmt.Errorf("--title is required for add command")
	}

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

	p, err := env.pipeline(store)
	if err != nil {
		return err
	}
	return c.executeWithPipeline(ctx, p)
}

// normalizeDate accepts YYYY-MM-DD as is and converts the German DD.MM.YYYY
// form used by the listings.
func normalizeDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if iso, err := crawler.ConvertDate(value, "2006-01-02"); err == nil {
		return iso, nil
	}
	return crawler.ConvertDate(value, crawler.LayoutDay)
}

// executeWithPipeline stores the file through p (used by tests).
func (c *AddCommand) executeWithPipeline(ctx context.Context, p *ingest.Pipeline) error {
	date, err := normalizeDate(c.Date)
	if err != nil {
		return fmt.Errorf("invalid --date %q: %w", c.Date, err)
	}

	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	url := c.URL
	if url == "" {
		abs, err := filepath.Abs(c.File)
		if err != nil {
			return fmt.Errorf("resolve file path: %w", err)
		}
		url = "file://" + filepath.ToSlash(abs)
	}

	doc, err := p.AddBytes(ctx, "local", &crawler.LinkEntry{Title: c.Title, Href: c.File, Date: date}, url, data)
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		return writeJSON(map[string]any{
			"id":       doc.ID,
			"title":    doc.Title,
			"url":      doc.URL,
			"date":     doc.Date,
			"keywords": doc.Keywords,
		})
	}

	fmt.Printf("Added document %d\n", doc.ID)
	fmt.Printf("  Title: %s\n", doc.Title)
	fmt.Printf("  URL: %s\n", doc.URL)
	if doc.Date != "" {
		fmt.Printf("  Date: %s\n", doc.Date)
	}
	fmt.Printf("  Content: %s\n", formatBytes(int64(len(doc.Content))))
	return nil
}
