package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/runnerr0/docrag/internal/config"
	"github.com/runnerr0/docrag/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string `json:"version"`
	DatabasePath      string `json:"database_path"`
	DatabaseSizeBytes int64  `json:"database_size_bytes"`
	TotalDocuments    int64  `json:"total_documents"`
	TotalContentBytes int64  `json:"total_content_bytes"`
	OldestDocument    string `json:"oldest_document,omitempty"`
	NewestDocument    string `json:"newest_document,omitempty"`
	LLMProvider       string `json:"llm_provider"`
	LLMModel          string `json:"llm_model"`
	APIKeyConfigured  bool   `json:"api_key_configured"`
	JDPGCredentials   bool   `json:"jdpg_credentials"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
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

	return c.executeWithStore(ctx, store, env.cfg, env.dbPath)
}

// executeWithStore runs status against a provided store (for testing).
func (c *StatusCommand) executeWithStore(ctx context.Context, store storage.Store, cfg *config.Config, dbPath string) error {
	stats, err := store.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	// Prefer the file size on disk, which includes the WAL checkpoint state.
	dbSize := stats.DatabaseSizeBytes
	if info, err := os.Stat(dbPath); err == nil {
		dbSize = info.Size()
	}

	out := statusJSON{
		Version:           c.version,
		DatabasePath:      dbPath,
		DatabaseSizeBytes: dbSize,
		TotalDocuments:    stats.TotalDocuments,
		TotalContentBytes: stats.TotalContentBytes,
		OldestDocument:    stats.OldestDate,
		NewestDocument:    stats.NewestDate,
		LLMProvider:       cfg.LLM.Provider,
		LLMModel:          cfg.LLM.Model,
		APIKeyConfigured:  cfg.LLM.APIKey != "",
		JDPGCredentials:   cfg.Sources.JDPG.Username != "" && cfg.Sources.JDPG.Password != "",
	}

	if c.globals != nil && c.globals.JSON {
		return writeJSON(out)
	}
	c.printStatusHuman(out)
	return nil
}

func (c *StatusCommand) printStatusHuman(s statusJSON) {
	fmt.Println("docrag Status")
	fmt.Println("=============")
	fmt.Printf("Version:       %s\n", s.Version)
	fmt.Printf("Database:      %s (%s)\n", s.DatabasePath, formatBytes(s.DatabaseSizeBytes))
	fmt.Printf("Documents:     %s\n", formatNumber(s.TotalDocuments))
	fmt.Printf("Content:       %s\n", formatBytes(s.TotalContentBytes))

	if s.TotalDocuments > 0 {
		fmt.Printf("Oldest:        %s\n", orNone(s.OldestDocument))
		fmt.Printf("Newest:        %s\n", orNone(s.NewestDocument))
	}

	fmt.Println()
	fmt.Printf("Model:         %s (%s)\n", s.LLMModel, s.LLMProvider)
	fmt.Printf("API key:       %s\n", yesNo(s.APIKeyConfigured, "configured", "missing"))
	fmt.Printf("jDPG login:    %s\n", yesNo(s.JDPGCredentials, "configured", "missing"))
}

func orNone(s string) string {
	if s == "" {
		return "(undated)"
	}
	return s
}

func yesNo(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
