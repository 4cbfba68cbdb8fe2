// Package retrieval selects the stored documents most relevant to a query
// by counting keyword overlaps.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/runnerr0/docrag/internal/llm"
	"github.com/runnerr0/docrag/internal/metrics"
	"github.com/runnerr0/docrag/internal/storage"
	"go.uber.org/zap"
)

// DefaultPerKeywordLimit caps the documents matched by a single keyword.
const DefaultPerKeywordLimit = 5

// KeywordSource produces a comma-separated keyword reply for a text.
type KeywordSource interface {
	Extract(ctx context.Context, text string) (string, error)
}

// DocumentReader is the read side of the document store used for ranking.
type DocumentReader interface {
	FindByKeyword(ctx context.Context, token string, limit int) ([]int64, error)
	IDsUpTo(ctx context.Context, maxID int64) ([]int64, error)
	GetDocument(ctx context.Context, id int64) (*storage.Document, error)
}

// Options tunes the ranker.
type Options struct {
	PerKeywordLimit int
	// TrimKeywords trims whitespace around keyword tokens and drops empty
	// ones before searching.
	TrimKeywords bool
}

// Scored is a document ID with its hit count.
type Scored struct {
	ID   int64
	Hits int
}

// Hit is a ranked document.
type Hit struct {
	storage.Document
	Hits int
}

// Ranker ranks stored documents against a query.
type Ranker struct {
	keywords KeywordSource
	store    DocumentReader
	opts     Options
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewRanker creates a ranker. m may be nil.
func NewRanker(k KeywordSource, store DocumentReader, opts Options, logger *zap.Logger, m *metrics.Metrics) *Ranker {
	if opts.PerKeywordLimit <= 0 {
		opts.PerKeywordLimit = DefaultPerKeywordLimit
	}
	return &Ranker{
		keywords: k,
		store:    store,
		opts:     opts,
		logger:   logger,
		metrics:  m,
	}
}

// Rank returns up to n documents, most relevant first. Documents without
// hits fill the remaining slots when fewer than n documents matched; see
// SelectTop. A query that matches nothing yields an empty result.
func (r *Ranker) Rank(ctx context.Context, query string, n int) ([]Hit, error) {
	if n <= 0 {
		return []Hit{}, nil
	}
	start := time.Now()

	raw, err := r.keywords.Extract(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("extract query keywords: %w", err)
	}
	tokens := llm.SplitKeywords(raw, r.opts.TrimKeywords)

	scored, err := r.RankTokens(ctx, tokens, n)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(scored))
	for _, s := range scored {
		doc, err := r.store.GetDocument(ctx, s.ID)
		if err != nil {
			return nil, fmt.Errorf("load ranked document: %w", err)
		}
		hits = append(hits, Hit{Document: *doc, Hits: s.Hits})
	}

	if r.metrics != nil {
		r.metrics.RankDuration.Observe(time.Since(start).Seconds())
		r.metrics.RankedDocuments.Observe(float64(len(hits)))
	}
	r.logger.Debug("documents ranked",
		zap.Int("tokens", len(tokens)), zap.Int("returned", len(hits)), zap.Duration("took", time.Since(start)))
	return hits, nil
}

// RankTokens searches the store for every token and selects the top n IDs.
func (r *Ranker) RankTokens(ctx context.Context, tokens []string, n int) ([]Scored, error) {
	var matched []int64
	for _, tok := range tokens {
		ids, err := r.store.FindByKeyword(ctx, tok, r.opts.PerKeywordLimit)
		if err != nil {
			return nil, fmt.Errorf("search keyword %q: %w", tok, err)
		}
		matched = append(matched, ids...)
	}
	if len(matched) == 0 {
		return []Scored{}, nil
	}

	counts := CountHits(matched)
	var maxID int64
	for id := range counts {
		if id > maxID {
			maxID = id
		}
	}

	filler, err := r.store.IDsUpTo(ctx, maxID)
	if err != nil {
		return nil, fmt.Errorf("load filler ids: %w", err)
	}
	return SelectTop(counts, filler, n), nil
}

// CountHits counts how often each ID occurs.
func CountHits(ids []int64) map[int64]int {
	counts := make(map[int64]int, len(ids))
	for _, id := range ids {
		counts[id]++
	}
	return counts
}

// SelectTop orders the counted IDs plus the zero-hit candidates by hit count,
// highest first, breaking ties by lower ID, and returns the first n.
func SelectTop(counts map[int64]int, candidates []int64, n int) []Scored {
	if n <= 0 {
		return []Scored{}
	}

	all := make([]Scored, 0, len(counts)+len(candidates))
	for id, c := range counts {
		all = append(all, Scored{ID: id, Hits: c})
	}
	for _, id := range candidates {
		if _, ok := counts[id]; !ok {
			all = append(all, Scored{ID: id})
		}
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Hits != all[j].Hits {
			return all[i].Hits > all[j].Hits
		}
		return all[i].ID < all[j].ID
	})

	if len(all) > n {
		all = all[:n]
	}
	return all
}
