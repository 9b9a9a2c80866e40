// Package format renders statement results as plain text for chat
// delivery.
package format

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/c360/graphgate/graph"
)

// maxCellWidth caps how wide a single cell may render before it is
// truncated with an ellipsis.
const maxCellWidth = 50

// Table renders a result as an aligned plain-text table with a header
// row, separator, and row-count caption. An empty result renders a
// short notice instead.
func Table(result graph.Result) string {
	if result.Empty() {
		return "No results found."
	}

	columns := result.Columns
	if len(columns) == 0 {
		columns = genericColumns(len(result.Rows[0]))
	}

	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = utf8.RuneCountInString(truncate(col))
	}

	rows := make([][]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		cells := make([]string, len(columns))
		for i := range columns {
			cell := ""
			if i < len(row) {
				cell = truncate(row[i])
			}
			if cell == "" {
				cell = "NULL"
			}
			cells[i] = cell
			if w := utf8.RuneCountInString(cell); w > widths[i] {
				widths[i] = w
			}
		}
		rows = append(rows, cells)
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell)))
		}
		b.WriteByte('\n')
	}

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = truncate(col)
	}
	writeRow(header)

	for i, w := range widths {
		if i > 0 {
			b.WriteString("-+-")
		}
		b.WriteString(strings.Repeat("-", w))
	}
	b.WriteByte('\n')

	for _, row := range rows {
		writeRow(row)
	}

	if len(rows) == 1 {
		b.WriteString("\n1 row")
	} else {
		fmt.Fprintf(&b, "\n%d rows", len(rows))
	}

	return b.String()
}

// truncate caps a cell at maxCellWidth runes, never splitting a
// multi-byte sequence.
func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxCellWidth {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxCellWidth-3]) + "..."
}

func genericColumns(n int) []string {
	cols := make([]string, n)
	for i := range cols {
		cols[i] = fmt.Sprintf("col%d", i+1)
	}
	return cols
}
