// Package cli implements the docrag command line.
package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Init   *InitCommand
	Crawl  *CrawlCommand
	Ingest *IngestCommand
	Add    *AddCommand
	Search *SearchCommand
	Ask    *AskCommand
	Serve  *ServeCommand
	Status *StatusCommand
	Open   *OpenCommand
	Prune  *PruneCommand
	Purge  *PurgeCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "docrag"
	parser.LongDescription = "Crawl PDF documents, tag them with model-generated keywords and answer questions about them."

	cmds := &commands{
		Init:   &InitCommand{globals: &globals, version: version},
		Crawl:  &CrawlCommand{globals: &globals, version: version},
		Ingest: &IngestCommand{globals: &globals, version: version},
		Add:    &AddCommand{globals: &globals, version: version},
		Search: &SearchCommand{globals: &globals, version: version},
		Ask:    &AskCommand{globals: &globals, version: version},
		Serve:  &ServeCommand{globals: &globals, version: version},
		Status: &StatusCommand{globals: &globals, version: version},
		Open:   &OpenCommand{globals: &globals, version: version},
		Prune:  &PruneCommand{globals: &globals, version: version},
		Purge:  &PurgeCommand{globals: &globals, version: version},
	}

	parser.AddCommand("init", "Create the document database", "Create the SQLite database and apply the schema.", cmds.Init)
	parser.AddCommand("crawl", "List the documents of a source", "Fetch a source listing and print its link entries without ingesting them.", cmds.Crawl)
	parser.AddCommand("ingest", "Crawl and store a source", "Download every listed PDF, extract its text, generate keywords and store it.", cmds.Ingest)
	parser.AddCommand("add", "Store a local PDF", "Extract text and keywords from a local PDF file and store it.", cmds.Add)
	parser.AddCommand("search", "Rank documents for a query", "Rank stored documents by keyword overlap with the query.", cmds.Search)
	parser.AddCommand("ask", "Answer a question", "Answer a question with the language model, using stored documents as context.", cmds.Ask)
	parser.AddCommand("serve", "Run the web UI", "Serve the interactive question form over HTTP.", cmds.Serve)
	parser.AddCommand("status", "Show database statistics", "Show document count, date range, database size and configuration.", cmds.Status)
	parser.AddCommand("open", "Print a stored document", "Print the full stored content of a document.", cmds.Open)
	parser.AddCommand("prune", "Remove old documents", "Remove documents published before a date.", cmds.Prune)
	parser.AddCommand("purge", "Delete ALL documents", "Delete all stored documents. Destructive operation with safety prompt.", cmds.Purge)

	return parser, &globals, cmds
}

// Run is the main entry point for the docrag CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("docrag %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
