// Package query repairs and validates generated Cypher statements before
// execution. The sanitizer applies ordered, total, idempotent rewrite
// rules for known dialect incompatibilities; the validator is a shallow
// static analyzer: lexical and clause-level inspection only, no AST.
package query

// Origin records where a candidate statement came from.
type Origin string

const (
	// OriginPattern marks statements produced by the pattern matcher.
	OriginPattern Origin = "pattern"
	// OriginLLMPrimary marks the first LLM-generated statement of a turn.
	OriginLLMPrimary Origin = "llm-primary"
	// OriginLLMFallback marks the broader statement generated after an
	// empty result.
	OriginLLMFallback Origin = "llm-fallback"
)

// RawQuery is a candidate statement as produced by the LLM or the
// pattern matcher.
type RawQuery struct {
	Text   string
	Origin Origin
}

// ProcessedQuery is a RawQuery after sanitizer rewrites, ready for
// validation.
type ProcessedQuery struct {
	Text   string
	Fixes  []string
	Source RawQuery
}

// Report is the validator's verdict. A valid report carries no errors;
// warnings never block execution.
type Report struct {
	Errors   []string
	Warnings []string
}

// Valid reports whether the statement may be executed.
func (r Report) Valid() bool {
	return len(r.Errors) == 0
}
