package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/docrag/internal/storage"
)

// Execute implements the go-flags Commander interface for InitCommand.
func (c *InitCommand) Execute(args []string) error {
	env, err := loadEnvironment(c.globals)
	if err != nil {
		return err
	}
	defer env.close()

	return c.executeAt(context.Background(), env.dbPath)
}

// executeAt creates or migrates the database at dbPath.
func (c *InitCommand) executeAt(ctx context.Context, dbPath string) error {
	db, err := storage.OpenDB(ctx, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := storage.NewSQLiteStore(db)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer store.Close()

	stats, err := store.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return writeJSON(map[string]any{
			"database_path": dbPath,
			"documents":     stats.TotalDocuments,
		})
	}
	fmt.Printf("Database ready at %s (%s documents)\n", dbPath, formatNumber(stats.TotalDocuments))
	return nil
}
