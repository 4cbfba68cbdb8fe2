package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/docrag/internal/storage"
)

// Execute implements the go-flags Commander interface for PruneCommand.
func (c *PruneCommand) Execute(args []string) error {
	if c.Before == "" {
		return fmt.Errorf("--before is required for prune command")
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

// executeWithStore prunes a provided store (for testing).
func (c *PruneCommand) executeWithStore(ctx context.Context, store storage.Store) error {
	cutoff, err := normalizeDate(c.Before)
	if err != nil || cutoff == "" {
		return fmt.Errorf("invalid --before %q: use YYYY-MM-DD", c.Before)
	}

	var n int64
	if c.DryRun {
		n, err = store.CountBefore(ctx, cutoff)
	} else {
		n, err = store.DeleteBefore(ctx, cutoff)
	}
	if err != nil {
		return fmt.Errorf("prune failed: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return writeJSON(map[string]any{"before": cutoff, "dry_run": c.DryRun, "documents": n})
	}
	if c.DryRun {
		fmt.Printf("Would remove %s documents dated before %s\n", formatNumber(n), cutoff)
	} else {
		fmt.Printf("Removed %s documents dated before %s\n", formatNumber(n), cutoff)
	}
	return nil
}
