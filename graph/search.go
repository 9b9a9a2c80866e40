package graph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// searchClauses are the per-label statements backing free-text search.
// Each returns (name, detail) pairs for case-insensitive substring
// matches on the label's text properties.
var searchClauses = []struct {
	label     string
	statement string
}{
	{"person", "MATCH (p:Person) WHERE toLower(p.name) CONTAINS %s OR toLower(p.role) CONTAINS %s OR toLower(p.department) CONTAINS %s RETURN p.name, p.role LIMIT %d"},
	{"team", "MATCH (t:Team) WHERE toLower(t.name) CONTAINS %s OR toLower(t.department) CONTAINS %s OR toLower(t.focus) CONTAINS %s RETURN t.name, t.department LIMIT %d"},
	{"group", "MATCH (g:Group) WHERE toLower(g.name) CONTAINS %s OR toLower(g.description) CONTAINS %s OR toLower(g.type) CONTAINS %s RETURN g.name, g.type LIMIT %d"},
	{"policy", "MATCH (pol:Policy) WHERE toLower(pol.name) CONTAINS %s OR toLower(pol.description) CONTAINS %s OR toLower(pol.category) CONTAINS %s RETURN pol.name, pol.category LIMIT %d"},
	{"message", "MATCH (m:Message) WHERE toLower(m.original) CONTAINS %s OR toLower(m.echoed) CONTAINS %s OR toLower(m.original) CONTAINS %s RETURN m.original, m.echoed LIMIT %d"},
}

// Searcher runs free-text lookups across all labels.
type Searcher struct {
	exec   Executor
	limit  int
	logger *slog.Logger
}

// NewSearcher creates a searcher returning at most limit hits per
// label.
func NewSearcher(exec Executor, limit int, logger *slog.Logger) *Searcher {
	if limit <= 0 {
		limit = 5
	}
	return &Searcher{
		exec:   exec,
		limit:  limit,
		logger: logger.With("component", "search"),
	}
}

// Search matches the term against every label's text properties and
// merges the hits into one table. Labels whose statement fails are
// skipped; an error is returned only when every label failed.
func (s *Searcher) Search(ctx context.Context, term string) (Result, error) {
	quoted := Quote(strings.ToLower(strings.TrimSpace(term)))

	merged := Result{Columns: []string{"kind", "name", "detail"}}
	var lastErr error
	failures := 0

	for _, clause := range searchClauses {
		statement := fmt.Sprintf(clause.statement, quoted, quoted, quoted, s.limit)

		result, err := s.exec.Execute(ctx, statement)
		if err != nil {
			failures++
			lastErr = err
			s.logger.Warn("search clause failed", "label", clause.label, "error", err)
			continue
		}
		merged.Elapsed += result.Elapsed

		for _, row := range result.Rows {
			hit := []string{clause.label, "", ""}
			if len(row) > 0 {
				hit[1] = row[0]
			}
			if len(row) > 1 {
				hit[2] = row[1]
			}
			merged.Rows = append(merged.Rows, hit)
		}
	}

	if failures == len(searchClauses) && lastErr != nil {
		return Result{}, lastErr
	}
	return merged, nil
}
