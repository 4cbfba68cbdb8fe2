package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/runnerr0/docrag/internal/storage"
)

// Execute implements the go-flags Commander interface for OpenCommand.
func (c *OpenCommand) Execute(args []string) error {
	if c.ID <= 0 {
		return fmt.Errorf("--id is required for open command")
	}

	env, err := loadEnvironment(c.globals)
	if err != nil {
		return err
	}
	defer env.close()

	ctx := context.Background()
	store, db, err := env.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	return c.executeWithStore(ctx, store)
}

// executeWithStore prints the document from a provided store (for testing).
func (c *OpenCommand) executeWithStore(ctx context.Context, store storage.Store) error {
	doc, err := store.GetDocument(ctx, c.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("document not found: %d", c.ID)
		}
		return err
	}

	if c.globals != nil && c.globals.JSON {
		return writeJSON(map[string]any{
			"id":       doc.ID,
			"title":    doc.Title,
			"url":      doc.URL,
			"date":     doc.Date,
			"keywords": doc.Keywords,
			"content":  doc.Content,
		})
	}

	switch c.Format {
	case "raw":
		fmt.Print(doc.Content)
	case "keywords":
		fmt.Println(doc.Keywords)
	case "md":
		c.outputMarkdown(doc)
	default:
		c.outputFull(doc)
	}
	return nil
}

func (c *OpenCommand) outputFull(doc *storage.Document) {
	fmt.Printf("Document %d\n", doc.ID)
	fmt.Printf("Title:     %s\n", doc.Title)
	fmt.Printf("URL:       %s\n", doc.URL)
	fmt.Printf("Date:      %s\n", orNone(doc.Date))
	fmt.Printf("Keywords:  %s\n", doc.Keywords)
	fmt.Println()
	fmt.Println("--- Content ---")
	if doc.Content == "" {
		fmt.Println("No text extracted")
	} else {
		fmt.Print(doc.Content)
	}
}

func (c *OpenCommand) outputMarkdown(doc *storage.Document) {
	fmt.Println("---")
	fmt.Printf("id: %d\n", doc.ID)
	fmt.Printf("title: %s\n", doc.Title)
	fmt.Printf("url: %s\n", doc.URL)
	fmt.Printf("date: %s\n", doc.Date)
	fmt.Printf("keywords: %s\n", doc.Keywords)
	fmt.Println("---")
	fmt.Println()
	fmt.Print(doc.Content)
}
