package crawler

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// PublicLister reads the public ZaPF resolution table.
type PublicLister struct {
	fetcher *Fetcher
	listURL string
	baseURL string
	logger  *zap.Logger
}

// NewPublicLister creates a lister for the public listing at listURL.
func NewPublicLister(fetcher *Fetcher, listURL, baseURL string, logger *zap.Logger) *PublicLister {
	return &PublicLister{
		fetcher: fetcher,
		listURL: listURL,
		baseURL: baseURL,
		logger:  logger,
	}
}

func (l *PublicLister) Name() string     { return "zapf" }
func (l *PublicLister) BaseURL() string  { return l.baseURL }
func (l *PublicLister) Auth() *BasicAuth { return nil }

// List fetches the listing and returns one entry per table row that has a
// link and at least two cells.
func (l *PublicLister) List(ctx context.Context) ([]*LinkEntry, error) {
	body, err := l.fetcher.Get(ctx, l.listURL, nil)
	if err != nil {
		return nil, err
	}
	return ParsePublicListing(body, l.logger)
}

// ParsePublicListing extracts entries from a ZaPF listing page. The entry
// date is the second cell, written DD.MM.YYYY.
func ParsePublicListing(html []byte, logger *zap.Logger) ([]*LinkEntry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	entries := []*LinkEntry{}
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a").First()
		cells := row.Find("td")
		if link.Length() == 0 || cells.Length() < 2 {
			return
		}

		href, _ := link.Attr("href")
		rawDate := cells.Eq(1).Text()
		date, err := ConvertDate(strings.TrimSpace(rawDate), LayoutDay)
		if err != nil {
			logger.Warn("skipping listing row with unparseable date",
				zap.String("title", link.Text()), zap.String("date", rawDate))
			return
		}

		entries = append(entries, &LinkEntry{
			Title: link.Text(),
			Href:  href,
			Date:  date,
		})
	})
	return entries, nil
}
