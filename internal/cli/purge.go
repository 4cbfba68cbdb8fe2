package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/runnerr0/docrag/internal/storage"
)

// Execute implements the go-flags Commander interface for PurgeCommand.
func (c *PurgeCommand) Execute(args []string) error {
	if !c.All {
		return fmt.Errorf("purge requires --all flag for safety")
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

// executeWithStore purges a provided store (for testing).
func (c *PurgeCommand) executeWithStore(ctx context.Context, store storage.Store) error {
	if !c.All {
		return fmt.Errorf("purge requires --all flag for safety")
	}

	if !c.Force {
		fmt.Println("⚠ WARNING: This will permanently delete ALL stored documents,")
		fmt.Println("including their extracted text and keywords.")
		fmt.Println()
		fmt.Println("This action cannot be undone.")
		fmt.Println()
		fmt.Print(`Type "PURGE" to confirm: `)

		in := c.stdin
		if in == nil {
			in = os.Stdin
		}
		scanner := bufio.NewScanner(in)
		if !scanner.Scan() {
			return fmt.Errorf("aborted: no input received")
		}
		if strings.TrimSpace(scanner.Text()) != "PURGE" {
			return fmt.Errorf("aborted: confirmation text did not match")
		}
	}

	n, err := store.DeleteAll(ctx)
	if err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return writeJSON(map[string]any{"purged": true, "documents": n})
	}
	fmt.Printf("Purged %s documents. The database is empty.\n", formatNumber(n))
	return nil
}
