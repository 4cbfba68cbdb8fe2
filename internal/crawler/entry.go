// Package crawler lists source documents on the ZaPF and jDPG web pages.
package crawler

import (
	"context"
	"fmt"
	"time"
)

// Date layouts used by the two listings.
const (
	LayoutDay       = "02.01.2006"
	LayoutDayMinute = "02.01.2006 15:04"
	isoDate         = "2006-01-02"
)

// LinkEntry describes one crawlable document in a listing.
type LinkEntry struct {
	Title string
	Href  string // relative to the lister's BaseURL, or absolute
	Date  string // YYYY-MM-DD
}

// Lister produces the link entries of one document source.
type Lister interface {
	// Name identifies the source in logs, metrics and the CLI.
	Name() string
	List(ctx context.Context) ([]*LinkEntry, error)
	// BaseURL is prepended to each entry's Href to download it.
	BaseURL() string
	// Auth returns the credentials needed for the documents, or nil.
	Auth() *BasicAuth
}

// ConvertDate reformats a date written in layout as YYYY-MM-DD.
func ConvertDate(value, layout string) (string, error) {
	t, err := time.Parse(layout, value)
	if err != nil {
		return "", fmt.Errorf("convert date %q: %w", value, err)
	}
	return t.Format(isoDate), nil
}
