package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	goflags "github.com/jessevdk/go-flags"
	"github.com/runnerr0/docrag/internal/crawler"
	"github.com/runnerr0/docrag/internal/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// parseOnly parses args without executing the selected command.
func parseOnly(t *testing.T, args ...string) (*GlobalFlags, *commands, goflags.Commander) {
	t.Helper()
	parser, globals, cmds := buildParser("test")
	var selected goflags.Commander
	parser.CommandHandler = func(cmd goflags.Commander, _ []string) error {
		selected = cmd
		return nil
	}
	_, err := parser.ParseArgs(args)
	require.NoError(t, err)
	return globals, cmds, selected
}

// openTestStore creates a migrated in-memory store.
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

func seedDoc(t *testing.T, store *storage.SQLiteStore, title, keywords, date string) int64 {
	t.Helper()
	doc := &storage.Document{
		Title:    title,
		Content:  "Text von " + title + "\n\n",
		URL:      "https://example.org/" + strings.ReplaceAll(title, " ", "-") + ".pdf",
		Keywords: keywords,
		Date:     date,
	}
	require.NoError(t, store.AddDocument(context.Background(), doc))
	return doc.ID
}

type staticLister struct {
	name    string
	base    string
	entries []*crawler.LinkEntry
	err     error
}

func (l *staticLister) Name() string             { return l.name }
func (l *staticLister) BaseURL() string          { return l.base }
func (l *staticLister) Auth() *crawler.BasicAuth { return nil }
func (l *staticLister) List(context.Context) ([]*crawler.LinkEntry, error) {
	return l.entries, l.err
}

// mapDownloader serves bodies by URL.
type mapDownloader map[string]string

func (m mapDownloader) Get(_ context.Context, url string, _ *crawler.BasicAuth) ([]byte, error) {
	body, ok := m[url]
	if !ok {
		return nil, crawler.ErrUnexpectedStatus
	}
	return []byte(body), nil
}

// plainText treats document bytes as extracted text.
type plainText struct{}

func (plainText) Extract(data []byte) (string, error) { return string(data) + "\n\n", nil }

// firstWordKeywords uses the first word of the text as its keywords.
type firstWordKeywords struct{}

func (firstWordKeywords) Extract(_ context.Context, text string) (string, error) {
	return strings.Fields(text)[0] + ", Dokument", nil
}

// staticKeywords answers every keyword request with the same reply.
type staticKeywords string

func (s staticKeywords) Extract(context.Context, string) (string, error) { return string(s), nil }

func nopLogger() *zap.Logger { return zap.NewNop() }

func indexOf(s, sub string) int { return strings.Index(s, sub) }
