package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/runnerr0/docrag/internal/crawler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrawl_Human(t *testing.T) {
	l := &staticLister{name: "jdpg", base: "https://www.dpg-physik.de", entries: []*crawler.LinkEntry{
		{Title: "Leitfaden Reisekosten", Href: "/r.pdf", Date: "2024-03-01"},
		nil,
		{Title: "Leitfaden Öffentlichkeitsarbeit", Href: "/o.pdf", Date: "2023-01-15"},
	}}
	cmd := &CrawlCommand{globals: &GlobalFlags{}}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithLister(context.Background(), l))
	})

	assert.Contains(t, output, "2 documents listed by jdpg")
	assert.Contains(t, output, "https://www.dpg-physik.de/r.pdf")
	assert.Contains(t, output, "Leitfaden Öffentlichkeitsarbeit")
}

func TestCrawl_JSON(t *testing.T) {
	l := &staticLister{name: "zapf", entries: []*crawler.LinkEntry{
		{Title: "Resolution", Href: "https://zapfev.de/res.pdf", Date: "2022-05-29"},
	}}
	cmd := &CrawlCommand{globals: &GlobalFlags{JSON: true}}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithLister(context.Background(), l))
	})

	var out struct {
		Source  string      `json:"source"`
		Count   int         `json:"count"`
		Entries []jsonEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	assert.Equal(t, "zapf", out.Source)
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, jsonEntry{Title: "Resolution", URL: "https://zapfev.de/res.pdf", Date: "2022-05-29"}, out.Entries[0])
}

func TestCrawl_ListError(t *testing.T) {
	cmd := &CrawlCommand{globals: &GlobalFlags{}}
	err := cmd.executeWithLister(context.Background(), &staticLister{name: "zapf", err: crawler.ErrUnexpectedStatus})
	assert.ErrorIs(t, err, crawler.ErrUnexpectedStatus)
}
