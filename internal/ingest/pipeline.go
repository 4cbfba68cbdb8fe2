// Package ingest downloads listed documents and stores them with their
// text and keywords.
package ingest

import (
	"context"
	"fmt"

	"github.com/runnerr0/docrag/internal/crawler"
	"github.com/runnerr0/docrag/internal/metrics"
	"github.com/runnerr0/docrag/internal/storage"
	"go.uber.org/zap"
)

// Downloader fetches a document body.
type Downloader interface {
	Get(ctx context.Context, url string, auth *crawler.BasicAuth) ([]byte, error)
}

// TextExtractor turns document bytes into plain text.
type TextExtractor interface {
	Extract(data []byte) (string, error)
}

// KeywordSource produces the keyword string stored with a document.
type KeywordSource interface {
	Extract(ctx context.Context, text string) (string, error)
}

// DocumentWriter persists one document.
type DocumentWriter interface {
	AddDocument(ctx context.Context, doc *storage.Document) error
}

// Report summarises a run. After a failed run it reflects the progress made
// before the failure.
type Report struct {
	Ingested int
	Skipped  int
	IDs      []int64
}

// Pipeline ingests link entries one at a time.
type Pipeline struct {
	downloader Downloader
	extractor  TextExtractor
	keywords   KeywordSource
	store      DocumentWriter
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewPipeline creates a pipeline. m may be nil.
func NewPipeline(d Downloader, e TextExtractor, k KeywordSource, s DocumentWriter, logger *zap.Logger, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		downloader: d,
		extractor:  e,
		keywords:   k,
		store:      s,
		logger:     logger,
		metrics:    m,
	}
}

// RunLister lists l's entries and ingests them.
func (p *Pipeline) RunLister(ctx context.Context, l crawler.Lister) (Report, error) {
	entries, err := l.List(ctx)
	if err != nil {
		p.countFailure(l.Name(), "list")
		return Report{}, fmt.Errorf("list %s: %w", l.Name(), err)
	}
	p.logger.Info("listing fetched", zap.String("source", l.Name()), zap.Int("entries", len(entries)))
	return p.Run(ctx, l.Name(), entries, l.BaseURL(), l.Auth())
}

// Run ingests entries in order. Nil entries are skipped. Each document is
// committed as soon as it is stored; the first failure stops the run, so
// earlier documents stay and later ones are never attempted.
func (p *Pipeline) Run(ctx context.Context, source string, entries []*crawler.LinkEntry, baseURL string, auth *crawler.BasicAuth) (Report, error) {
	var report Report

	for i, entry := range entries {
		if entry == nil {
			report.Skipped++
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		log := p.logger.With(zap.String("source", source), zap.Int("index", i), zap.String("title", entry.Title))
		doc, stage, err := p.ingestOne(ctx, entry, baseURL, auth)
		if err != nil {
			p.countFailure(source, stage)
			log.Error("ingestion aborted", zap.String("stage", stage), zap.Error(err))
			return report, fmt.Errorf("ingest %q (%s): %w", entry.Title, stage, err)
		}

		report.Ingested++
		report.IDs = append(report.IDs, doc.ID)
		if p.metrics != nil {
			p.metrics.DocumentsIngested.WithLabelValues(source).Inc()
		}
		log.Info("document ingested", zap.Int64("id", doc.ID), zap.Int("content_bytes", len(doc.Content)))
	}

	return report, nil
}

func (p *Pipeline) ingestOne(ctx context.Context, entry *crawler.LinkEntry, baseURL string, auth *crawler.BasicAuth) (*storage.Document, string, error) {
	url := baseURL + entry.Href

	data, err := p.downloader.Get(ctx, url, auth)
	if err != nil {
		return nil, "fetch", err
	}
	return p.process(ctx, entry, url, data)
}

// AddBytes ingests a document whose bytes are already at hand, such as a
// local file. The pipeline's downloader is not used.
func (p *Pipeline) AddBytes(ctx context.Context, source string, entry *crawler.LinkEntry, url string, data []byte) (*storage.Document, error) {
	doc, stage, err := p.process(ctx, entry, url, data)
	if err != nil {
		p.countFailure(source, stage)
		return nil, fmt.Errorf("ingest %q (%s): %w", entry.Title, stage, err)
	}
	if p.metrics != nil {
		p.metrics.DocumentsIngested.WithLabelValues(source).Inc()
	}
	p.logger.Info("document ingested",
		zap.String("source", source), zap.Int64("id", doc.ID), zap.Int("content_bytes", len(doc.Content)))
	return doc, nil
}

func (p *Pipeline) process(ctx context.Context, entry *crawler.LinkEntry, url string, data []byte) (*storage.Document, string, error) {
	text, err := p.extractor.Extract(data)
	if err != nil {
		return nil, "extract", err
	}

	keywords, err := p.keywords.Extract(ctx, text)
	if err != nil {
		return nil, "keywords", err
	}

	doc := &storage.Document{
		Title:    entry.Title,
		Content:  text,
		URL:      url,
		Keywords: keywords,
		Date:     entry.Date,
	}
	if err := p.store.AddDocument(ctx, doc); err != nil {
		return nil, "store", err
	}
	return doc, "", nil
}

func (p *Pipeline) countFailure(source, stage string) {
	if p.metrics != nil {
		p.metrics.IngestFailures.WithLabelValues(source, stage).Inc()
	}
}
