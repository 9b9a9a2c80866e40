package format

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/graphgate/graph"
)

func TestTableRendersHeaderAndRows(t *testing.T) {
	result := graph.Result{
		Columns: []string{"p.name", "p.role"},
		Rows: [][]string{
			{"Sarah Chen", "Engineer"},
			{"Marcus Webb", "Manager"},
		},
	}

	out := Table(result)
	lines := strings.Split(out, "\n")

	require.GreaterOrEqual(t, len(lines), 4)
	assert.Contains(t, lines[0], "p.name")
	assert.Contains(t, lines[0], "p.role")
	assert.Contains(t, lines[1], "---")
	assert.Contains(t, out, "Sarah Chen")
	assert.Contains(t, out, "2 rows")
}

func TestTableSingleRowCaption(t *testing.T) {
	result := graph.Result{
		Columns: []string{"count(p)"},
		Rows:    [][]string{{"42"}},
	}

	out := Table(result)
	assert.Contains(t, out, "1 row")
	assert.NotContains(t, out, "1 rows")
}

func TestTableEmptyResult(t *testing.T) {
	assert.Equal(t, "No results found.", Table(graph.Result{Columns: []string{"p.name"}}))
}

func TestTableTruncatesLongCells(t *testing.T) {
	long := strings.Repeat("x", 80)
	result := graph.Result{
		Columns: []string{"description"},
		Rows:    [][]string{{long}},
	}

	out := Table(result)
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, long)
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(line), maxCellWidth+10)
	}
}

func TestTableAlignsMultiByteCells(t *testing.T) {
	result := graph.Result{
		Columns: []string{"p.name", "p.role"},
		Rows: [][]string{
			{"Žofia Müller", "Engineer"},
			{"Sarah Chen", "Manager"},
		},
	}

	out := Table(result)
	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 4)

	runeIndex := func(line string, target rune) int {
		for i, r := range []rune(line) {
			if r == target {
				return i
			}
		}
		return -1
	}

	// Column separators line up on rune positions regardless of byte
	// width.
	want := runeIndex(lines[0], '|')
	require.Positive(t, want)
	assert.Equal(t, want, runeIndex(lines[1], '+'))
	assert.Equal(t, want, runeIndex(lines[2], '|'))
	assert.Equal(t, want, runeIndex(lines[3], '|'))
}

func TestTableTruncatesMultiByteCellsCleanly(t *testing.T) {
	long := strings.Repeat("é", 80)
	result := graph.Result{
		Columns: []string{"description"},
		Rows:    [][]string{{long}},
	}

	out := Table(result)
	assert.True(t, utf8.ValidString(out))
	assert.Contains(t, out, strings.Repeat("é", maxCellWidth-3)+"...")
}

func TestTableFillsMissingCells(t *testing.T) {
	result := graph.Result{
		Columns: []string{"a", "b"},
		Rows:    [][]string{{"only-a"}},
	}

	out := Table(result)
	assert.Contains(t, out, "only-a")
	assert.Contains(t, out, "NULL")
}

func TestTableGeneratesColumnNames(t *testing.T) {
	result := graph.Result{
		Rows: [][]string{{"x", "y"}},
	}

	out := Table(result)
	assert.Contains(t, out, "col1")
	assert.Contains(t, out, "col2")
}
