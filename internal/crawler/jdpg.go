package crawler

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// guideMarker selects the rows of the jDPG overview that are guidelines.
const guideMarker = "Leitfaden"

// AuthLister reads the members-only jDPG document overview.
type AuthLister struct {
	fetcher *Fetcher
	listURL string
	baseURL string
	auth    *BasicAuth
	logger  *zap.Logger
}

// NewAuthLister creates a lister for the protected listing at listURL.
func NewAuthLister(fetcher *Fetcher, listURL, baseURL string, auth *BasicAuth, logger *zap.Logger) *AuthLister {
	return &AuthLister{
		fetcher: fetcher,
		listURL: listURL,
		baseURL: baseURL,
		auth:    auth,
		logger:  logger,
	}
}

func (l *AuthLister) Name() string     { return "jdpg" }
func (l *AuthLister) BaseURL() string  { return l.baseURL }
func (l *AuthLister) Auth() *BasicAuth { return l.auth }

// List fetches the overview with basic auth and returns the guideline rows.
func (l *AuthLister) List(ctx context.Context) ([]*LinkEntry, error) {
	body, err := l.fetcher.Get(ctx, l.listURL, l.auth)
	if err != nil {
		return nil, err
	}
	return ParseAuthListing(body, l.logger)
}

// ParseAuthListing extracts guideline entries from a jDPG overview page. A
// row qualifies when its second link's text contains "Leitfaden"; the href
// loses its "/view" suffix and the third cell holds DD.MM.YYYY HH:MM.
func ParseAuthListing(html []byte, logger *zap.Logger) ([]*LinkEntry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	entries := []*LinkEntry{}
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		links := row.Find("a")
		if links.Length() < 2 {
			return
		}
		link := links.Eq(1)
		title := link.Text()
		if !strings.Contains(title, guideMarker) {
			return
		}

		cells := row.Find("td")
		if cells.Length() < 3 {
			logger.Warn("skipping listing row without date cell", zap.String("title", title))
			return
		}
		rawDate := strings.TrimSpace(cells.Eq(2).Text())
		date, err := ConvertDate(rawDate, LayoutDayMinute)
		if err != nil {
			logger.Warn("skipping listing row with unparseable date",
				zap.String("title", title), zap.String("date", rawDate))
			return
		}

		href, _ := link.Attr("href")
		entries = append(entries, &LinkEntry{
			Title: title,
			Href:  strings.ReplaceAll(href, "/view", ""),
			Date:  date,
		})
	})
	return entries, nil
}
