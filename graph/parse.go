package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/c360/graphgate/errors"
)

// parseReply converts a raw GRAPH.QUERY reply into a Result. The reply
// is an array of [header, rows, stats] for reads and [stats] alone for
// writes. Header entries arrive either as plain column names or as
// (type, name) pairs depending on the server's protocol mode.
func parseReply(raw any) (Result, error) {
	reply, ok := raw.([]any)
	if !ok {
		return Result{}, errors.New(errors.KindInternal, "graph", "parseReply",
			fmt.Sprintf("unexpected reply type %T", raw))
	}

	// Write-only statements return just the stats block.
	if len(reply) < 2 {
		return Result{}, nil
	}

	header, ok := reply[0].([]any)
	if !ok {
		return Result{}, errors.New(errors.KindInternal, "graph", "parseReply",
			fmt.Sprintf("unexpected header type %T", reply[0]))
	}

	result := Result{Columns: make([]string, 0, len(header))}
	for _, col := range header {
		result.Columns = append(result.Columns, columnName(col))
	}

	rawRows, ok := reply[1].([]any)
	if !ok {
		return Result{}, errors.New(errors.KindInternal, "graph", "parseReply",
			fmt.Sprintf("unexpected row block type %T", reply[1]))
	}

	result.Rows = make([][]string, 0, len(rawRows))
	for _, rawRow := range rawRows {
		cells, ok := rawRow.([]any)
		if !ok {
			// Single-column rows may arrive unwrapped.
			result.Rows = append(result.Rows, []string{stringifyValue(rawRow)})
			continue
		}
		row := make([]string, 0, len(cells))
		for _, cell := range cells {
			row = append(row, stringifyValue(cell))
		}
		result.Rows = append(result.Rows, row)
	}

	return result, nil
}

func columnName(col any) string {
	switch v := col.(type) {
	case string:
		return v
	case []any:
		// (type, name) pair.
		if len(v) == 2 {
			if name, ok := v[1].(string); ok {
				return name
			}
		}
	}
	return fmt.Sprintf("%v", col)
}

// stringifyValue renders one result cell. Scalars print directly;
// nodes and relationships arrive as nested arrays and are rendered as
// bracketed lists.
func stringifyValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, stringifyValue(item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}
