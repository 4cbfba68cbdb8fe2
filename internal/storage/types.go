package storage

// Document is one ingested source document.
type Document struct {
	ID       int64
	Title    string
	Content  string
	URL      string
	Keywords string // comma-separated, as returned by the keyword model
	Date     string // YYYY-MM-DD
}

// Summary is the subset of a Document shown in result listings.
type Summary struct {
	ID    int64
	Title string
	Date  string
	URL   string
}

// Stats holds aggregate statistics about the document store.
type Stats struct {
	TotalDocuments    int64
	TotalContentBytes int64
	OldestDate        string
	NewestDate        string
	DatabaseSizeBytes int64
}
