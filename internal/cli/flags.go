package cli

import "io"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file (default ~/.config/docrag/config.yaml)" default:""`
	DB      string `long:"db" description:"Override the SQLite database path"`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable debug logging"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// InitCommand creates the database and its schema.
type InitCommand struct {
	globals *GlobalFlags
	version string
}

// CrawlCommand lists the documents a source offers without ingesting them.
type CrawlCommand struct {
	Source string `long:"source" description:"Document source" choice:"zapf" choice:"jdpg" required:"true"`

	globals *GlobalFlags
	version string
}

// IngestCommand crawls a source and stores every listed document.
type IngestCommand struct {
	Source string `long:"source" description:"Document source" choice:"zapf" choice:"jdpg" required:"true"`

	globals *GlobalFlags
	version string
}

// AddCommand ingests a local PDF file.
type AddCommand struct {
	File  string `long:"file" description:"Path to the PDF file (required)"`
	Title string `long:"title" description:"Document title (required)"`
	URL   string `long:"url" description:"Link stored with the document (default file:// URL of --file)"`
	Date  string `long:"date" description:"Publication date, YYYY-MM-DD or DD.MM.YYYY"`

	globals *GlobalFlags
	version string
}

// SearchCommand ranks stored documents against a query.
type SearchCommand struct {
	Docs *int `long:"docs" description:"Number of documents (default from config)"`

	globals *GlobalFlags
	version string
}

// AskCommand answers a question, optionally grounded in stored documents.
type AskCommand struct {
	Docs        *int     `long:"docs" description:"Number of context documents (default from config)"`
	Temperature *float64 `long:"temperature" description:"Sampling temperature between 0 and 1"`
	MaxTokens   *int     `long:"max-tokens" description:"Maximum answer tokens"`
	NoRAG       bool     `long:"no-rag" description:"Send the question to the model without document context"`

	globals *GlobalFlags
	version string
}

// ServeCommand runs the web UI.
type ServeCommand struct {
	Host string `long:"host" description:"Listen host (default from config)"`
	Port int    `long:"port" description:"Listen port (default from config)"`

	globals *GlobalFlags
	version string
}

// StatusCommand shows database statistics and configuration.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// OpenCommand prints a stored document.
type OpenCommand struct {
	ID     int64  `long:"id" description:"Document ID (required)"`
	Format string `long:"format" description:"Output format" choice:"full" choice:"md" choice:"raw" choice:"keywords" default:"full"`

	globals *GlobalFlags
	version string
}

// PruneCommand removes documents published before a date.
type PruneCommand struct {
	Before string `long:"before" description:"Remove documents dated before YYYY-MM-DD (required)"`
	DryRun bool   `long:"dry-run" description:"Show what would be removed without deleting"`

	globals *GlobalFlags
	version string
}

// PurgeCommand deletes every stored document with a safety confirmation.
type PurgeCommand struct {
	All   bool `long:"all" description:"Required flag to confirm purge intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
	stdin   io.Reader // nil reads os.Stdin
}
