package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/docrag/internal/crawler"
	"github.com/runnerr0/docrag/internal/ingest"
)

// Execute implements the go-flags Commander interface for IngestCommand.
func (c *IngestCommand) Execute(args []string) error {
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
	return c.executeWithPipeline(ctx, p, l)
}

// executeWithPipeline ingests l through p (for testing). The report is
// printed even when the run stops early, since stored documents remain.
func (c *IngestCommand) executeWithPipeline(ctx context.Context, p *ingest.Pipeline, l crawler.Lister) error {
	report, runErr := p.RunLister(ctx, l)

	if c.globals != nil && c.globals.JSON {
		out := map[string]any{
			"source":   l.Name(),
			"ingested": report.Ingested,
			"skipped":  report.Skipped,
			"ids":      report.IDs,
		}
		if runErr != nil {
			out["error"] = runErr.Error()
		}
		if err := writeJSON(out); err != nil {
			return err
		}
	} else {
		fmt.Printf("Ingested %d documents from %s (%d rows skipped)\n", report.Ingested, l.Name(), report.Skipped)
		if runErr != nil && isCancelled(runErr) {
			fmt.Println("Interrupted; documents stored so far are kept.")
		}
	}

	return runErr
}
