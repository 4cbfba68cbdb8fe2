package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
)

// writeJSON prints v as indented JSON on stdout.
func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table prints rows in aligned columns. Widths are measured in terminal cells
// so umlauts and wide runes line up.
type table struct {
	header []string
	rows   [][]string
	// maxWidth caps each column; 0 means unlimited.
	maxWidth []int
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) write(w io.Writer) {
	widths := make([]int, len(t.header))
	cell := func(col int, s string) string {
		if col < len(t.maxWidth) && t.maxWidth[col] > 0 {
			return runewidth.Truncate(s, t.maxWidth[col], "…")
		}
		return s
	}
	for _, row := range append([][]string{t.header}, t.rows...) {
		for i := range widths {
			if i < len(row) {
				if n := runewidth.StringWidth(cell(i, row[i])); n > widths[i] {
					widths[i] = n
				}
			}
		}
	}

	line := func(row []string) {
		parts := make([]string, len(widths))
		for i := range widths {
			s := ""
			if i < len(row) {
				s = cell(i, row[i])
			}
			if i == len(widths)-1 {
				parts[i] = s
			} else {
				parts[i] = runewidth.FillRight(s, widths[i])
			}
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	line(t.header)
	for _, row := range t.rows {
		line(row)
	}
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if i > 0 {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
