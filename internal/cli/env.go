package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/runnerr0/docrag/internal/config"
	"github.com/runnerr0/docrag/internal/crawler"
	"github.com/runnerr0/docrag/internal/ingest"
	"github.com/runnerr0/docrag/internal/llm"
	"github.com/runnerr0/docrag/internal/logger"
	"github.com/runnerr0/docrag/internal/metrics"
	"github.com/runnerr0/docrag/internal/pdftext"
	"github.com/runnerr0/docrag/internal/retrieval"
	"github.com/runnerr0/docrag/internal/storage"
	"go.uber.org/zap"
)

// errNoAPIKey is returned by commands that need the language model when no
// key is configured.
var errNoAPIKey = fmt.Errorf("no language model API key: set %s", config.EnvAPIKey)

// environment is everything a command needs besides its own flags.
type environment struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	dbPath  string
}

// loadEnvironment reads .env and the config file, builds the logger and
// resolves the database path. Precedence: --db flag > config file > defaults.
func loadEnvironment(g *GlobalFlags) (*environment, error) {
	if err := config.LoadEnvFile(".env"); err != nil {
		return nil, err
	}

	var (
		cfg *config.Config
		err error
	)
	if g != nil && g.Config != "" {
		cfg, err = config.LoadOrCreateAt(g.Config)
	} else {
		cfg, err = config.LoadOrCreate()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	level := cfg.Logging.Level
	if g != nil && g.Verbose {
		level = "debug"
	}
	log, err := logger.New(cfg.Logging.Environment, level)
	if err != nil {
		return nil, err
	}

	dbPath := ""
	if g != nil {
		dbPath = g.DB
	}
	if dbPath == "" {
		if dbPath, err = cfg.DatabasePath(); err != nil {
			return nil, err
		}
	}

	return &environment{cfg: cfg, logger: log, metrics: metrics.New(), dbPath: dbPath}, nil
}

func (e *environment) close() {
	_ = e.logger.Sync()
}

// openStore opens the configured database with migrations applied.
func (e *environment) openStore(ctx context.Context) (*storage.SQLiteStore, *sql.DB, error) {
	db, err := storage.OpenDB(ctx, e.dbPath)
	if err != nil {
		return nil, nil, err
	}

	store, err := storage.NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("init store: %w", err)
	}
	e.logger.Debug("database opened", zap.String("path", e.dbPath))
	return store, db, nil
}

// completer builds the model client, instrumented under purpose.
func (e *environment) completer(purpose string) (llm.Completer, error) {
	if e.cfg.LLM.APIKey == "" {
		return nil, errNoAPIKey
	}
	c, err := llm.NewOpenAIClient(llm.ClientConfig{
		Provider:   e.cfg.LLM.Provider,
		BaseURL:    e.cfg.LLM.BaseURL,
		Model:      e.cfg.LLM.Model,
		APIVersion: e.cfg.LLM.APIVersion,
		APIKey:     e.cfg.LLM.APIKey,
	})
	if err != nil {
		return nil, err
	}
	return llm.WithMetrics(c, e.metrics, purpose), nil
}

func (e *environment) fetcher() *crawler.Fetcher {
	return crawler.NewFetcher(time.Duration(e.cfg.HTTP.TimeoutSec)*time.Second, e.cfg.HTTP.UserAgent)
}

// lister returns the crawler for a named source.
func (e *environment) lister(source string) (crawler.Lister, error) {
	switch source {
	case "zapf":
		src := e.cfg.Sources.ZaPF
		return crawler.NewPublicLister(e.fetcher(), src.ListURL, src.BaseURL, e.logger), nil
	case "jdpg":
		src := e.cfg.Sources.JDPG
		if src.Username == "" || src.Password == "" {
			return nil, fmt.Errorf("jdpg needs credentials: set %s and %s", config.EnvJDPGUsername, config.EnvJDPGPassword)
		}
		auth := &crawler.BasicAuth{Username: src.Username, Password: src.Password}
		return crawler.NewAuthLister(e.fetcher(), src.ListURL, src.BaseURL, auth, e.logger), nil
	default:
		return nil, fmt.Errorf("unknown source %q", source)
	}
}

// pipeline wires the ingestion stages against store.
func (e *environment) pipeline(store ingest.DocumentWriter) (*ingest.Pipeline, error) {
	c, err := e.completer("keywords")
	if err != nil {
		return nil, err
	}
	return ingest.NewPipeline(
		e.fetcher(),
		pdftext.NewExtractor(e.logger),
		llm.NewKeywordExtractor(c),
		store,
		e.logger,
		e.metrics,
	), nil
}

// ranker wires keyword extraction and the store into a retrieval.Ranker.
func (e *environment) ranker(store retrieval.DocumentReader) (*retrieval.Ranker, error) {
	c, err := e.completer("keywords")
	if err != nil {
		return nil, err
	}
	opts := retrieval.Options{
		PerKeywordLimit: e.cfg.Retrieval.PerKeywordLimit,
		TrimKeywords:    e.cfg.Retrieval.TrimKeywords,
	}
	return retrieval.NewRanker(llm.NewKeywordExtractor(c), store, opts, e.logger, e.metrics), nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// isCancelled reports whether err came from an interrupt.
func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
