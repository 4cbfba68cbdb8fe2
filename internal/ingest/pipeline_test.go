package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/runnerr0/docrag/internal/crawler"
	"github.com/runnerr0/docrag/internal/metrics"
	"github.com/runnerr0/docrag/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDownloader struct {
	bodies map[string]string
	auths  []*crawler.BasicAuth
	urls   []string
}

func (f *fakeDownloader) Get(_ context.Context, url string, auth *crawler.BasicAuth) ([]byte, error) {
	f.urls = append(f.urls, url)
	f.auths = append(f.auths, auth)
	body, ok := f.bodies[url]
	if !ok {
		return nil, fmt.Errorf("get %s: %w: %d", url, crawler.ErrUnexpectedStatus, 404)
	}
	return []byte(body), nil
}

// textExtractor treats the bytes as already-extracted text.
type textExtractor struct{}

func (textExtractor) Extract(data []byte) (string, error) {
	if strings.HasPrefix(string(data), "<html") {
		return "", errors.New("not a pdf")
	}
	return string(data) + "\n\n", nil
}

type fakeKeywords struct {
	calls int
	err   error
}

func (f *fakeKeywords) Extract(_ context.Context, text string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "kw:" + strings.Fields(text)[0], nil
}

type fakeLister struct {
	entries []*crawler.LinkEntry
	err     error
}

func (f *fakeLister) Name() string             { return "fake" }
func (f *fakeLister) BaseURL() string          { return "https://docs.example" }
func (f *fakeLister) Auth() *crawler.BasicAuth { return &crawler.BasicAuth{Username: "u", Password: "p"} }
func (f *fakeLister) List(context.Context) ([]*crawler.LinkEntry, error) {
	return f.entries, f.err
}

func openTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	db, err := storage.OpenDB(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := storage.NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRun_IngestsEntriesInOrder(t *testing.T) {
	store := openTestStore(t)
	dl := &fakeDownloader{bodies: map[string]string{
		"https://docs.example/a.pdf": "Alpha text",
		"https://docs.example/b.pdf": "Beta text",
	}}
	kw := &fakeKeywords{}
	m := metrics.New()
	p := NewPipeline(dl, textExtractor{}, kw, store, zap.NewNop(), m)

	entries := []*crawler.LinkEntry{
		{Title: "A", Href: "/a.pdf", Date: "2024-01-01"},
		nil,
		{Title: "B", Href: "/b.pdf", Date: "2024-02-01"},
	}
	report, err := p.Run(context.Background(), "zapf", entries, "https://docs.example", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Ingested)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, []int64{1, 2}, report.IDs)
	assert.Equal(t, 2, kw.calls)

	doc, err := store.GetDocument(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, storage.Document{
		ID:       1,
		Title:    "A",
		Content:  "Alpha text\n\n",
		URL:      "https://docs.example/a.pdf",
		Keywords: "kw:Alpha",
		Date:     "2024-01-01",
	}, *doc)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.DocumentsIngested.WithLabelValues("zapf")))
}

func TestRun_FailureKeepsEarlierRowsAndStops(t *testing.T) {
	store := openTestStore(t)
	dl := &fakeDownloader{bodies: map[string]string{
		"/one.pdf":   "Eins",
		"/three.pdf": "Drei",
	}}
	m := metrics.New()
	p := NewPipeline(dl, textExtractor{}, &fakeKeywords{}, store, zap.NewNop(), m)

	entries := []*crawler.LinkEntry{
		{Title: "one", Href: "/one.pdf", Date: "2024-01-01"},
		{Title: "two", Href: "/two.pdf", Date: "2024-01-02"},
		{Title: "three", Href: "/three.pdf", Date: "2024-01-03"},
	}
	report, err := p.Run(context.Background(), "zapf", entries, "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, crawler.ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), `"two"`)

	assert.Equal(t, 1, report.Ingested)
	assert.Equal(t, []string{"/one.pdf", "/two.pdf"}, dl.urls, "item three must never be attempted")

	stats, err := store.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalDocuments)

	doc, err := store.GetDocument(context.Background(), report.IDs[0])
	require.NoError(t, err)
	assert.Equal(t, "one", doc.Title)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.IngestFailures.WithLabelValues("zapf", "fetch")))
}

func TestRun_ExtractFailureAborts(t *testing.T) {
	store := openTestStore(t)
	dl := &fakeDownloader{bodies: map[string]string{"/login.pdf": "<html>Bitte anmelden</html>"}}
	kw := &fakeKeywords{}
	p := NewPipeline(dl, textExtractor{}, kw, store, zap.NewNop(), nil)

	_, err := p.Run(context.Background(), "jdpg", []*crawler.LinkEntry{{Title: "x", Href: "/login.pdf"}}, "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract")
	assert.Equal(t, 0, kw.calls)
}

func TestRun_KeywordFailureAborts(t *testing.T) {
	store := openTestStore(t)
	dl := &fakeDownloader{bodies: map[string]string{"/a.pdf": "Alpha"}}
	boom := errors.New("llm unavailable")
	p := NewPipeline(dl, textExtractor{}, &fakeKeywords{err: boom}, store, zap.NewNop(), nil)

	report, err := p.Run(context.Background(), "zapf", []*crawler.LinkEntry{{Title: "a", Href: "/a.pdf"}}, "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, report.Ingested)

	stats, err := store.GetStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalDocuments)
}

func TestRun_CancelledContext(t *testing.T) {
	store := openTestStore(t)
	dl := &fakeDownloader{bodies: map[string]string{"/a.pdf": "Alpha"}}
	p := NewPipeline(dl, textExtractor{}, &fakeKeywords{}, store, zap.NewNop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, "zapf", []*crawler.LinkEntry{{Title: "a", Href: "/a.pdf"}}, "", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, dl.urls)
}

func TestRunLister_PassesBaseURLAndAuth(t *testing.T) {
	store := openTestStore(t)
	dl := &fakeDownloader{bodies: map[string]string{"https://docs.example/leitfaden.pdf": "Leitfaden Text"}}
	p := NewPipeline(dl, textExtractor{}, &fakeKeywords{}, store, zap.NewNop(), nil)

	l := &fakeLister{entries: []*crawler.LinkEntry{{Title: "Leitfaden", Href: "/leitfaden.pdf", Date: "2024-03-01"}}}
	report, err := p.RunLister(context.Background(), l)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Ingested)
	require.Len(t, dl.auths, 1)
	assert.Equal(t, "u", dl.auths[0].Username)
}

func TestRunLister_ListError(t *testing.T) {
	store := openTestStore(t)
	m := metrics.New()
	p := NewPipeline(&fakeDownloader{}, textExtractor{}, &fakeKeywords{}, store, zap.NewNop(), m)

	_, err := p.RunLister(context.Background(), &fakeLister{err: crawler.ErrUnexpectedStatus})
	assert.ErrorIs(t, err, crawler.ErrUnexpectedStatus)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.IngestFailures.WithLabelValues("fake", "list")))
}

func TestAddBytes(t *testing.T) {
	store := openTestStore(t)
	m := metrics.New()
	p := NewPipeline(nil, textExtractor{}, &fakeKeywords{}, store, zap.NewNop(), m)

	doc, err := p.AddBytes(context.Background(), "local",
		&crawler.LinkEntry{Title: "Satzung", Date: "2023-11-05"}, "file:///tmp/satzung.pdf", []byte("Satzung der ZaPF"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.ID)
	assert.Equal(t, "kw:Satzung", doc.Keywords)
	assert.Equal(t, "file:///tmp/satzung.pdf", doc.URL)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DocumentsIngested.WithLabelValues("local")))

	_, err = p.AddBytes(context.Background(), "local", &crawler.LinkEntry{Title: "kaputt"}, "x", []byte("<html>"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `ingest "kaputt" (extract)`)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.IngestFailures.WithLabelValues("local", "extract")))
}
