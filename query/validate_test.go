package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsCleanQueries(t *testing.T) {
	queries := []string{
		"MATCH (p:Person) RETURN p.name LIMIT 10",
		"MATCH (p:Person)-[:MEMBER_OF]->(t:Team) WHERE t.name CONTAINS 'Core' RETURN p.name, t.name",
		"MATCH (p:Person) WITH p.department AS dept, count(p) AS n WHERE n > 1 RETURN dept, n",
		"CREATE (m:Message {original: 'hi', echoed: 'i-hay'})",
		"MATCH (p:Person) WHERE toLower(p.name) CONTAINS 'chen' RETURN p.id, p.name",
		"MATCH (p:Person) RETURN count(p) AS count",
		"MATCH (p:Person) RETURN p.name;",
	}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			report := Validate(q)
			assert.True(t, report.Valid(), "errors: %v", report.Errors)
		})
	}
}

func TestValidateRejectsMidQueryTerminator(t *testing.T) {
	report := Validate("MATCH (p:Person); MATCH (t:Team) RETURN p,t")
	require.False(t, report.Valid())
	assert.Contains(t, strings.Join(report.Errors, " "), "Multiple semicolons detected")
}

func TestValidateIgnoresTerminatorInString(t *testing.T) {
	report := Validate("MATCH (m:Message) WHERE m.original = 'a; b; c' RETURN m.original")
	assert.True(t, report.Valid(), "errors: %v", report.Errors)
}

func TestValidateRejectsAggregateInWhere(t *testing.T) {
	report := Validate("MATCH (p:Person) WHERE count(p) > 1 RETURN p")
	require.False(t, report.Valid())
	assert.Contains(t, strings.Join(report.Errors, " "), "Aggregation functions cannot be used directly in WHERE clauses")
}

func TestValidateAllowsAggregateAfterWith(t *testing.T) {
	report := Validate("MATCH (p:Person) WITH count(p) AS n WHERE n > 5 RETURN n")
	assert.True(t, report.Valid(), "errors: %v", report.Errors)
}

func TestValidateRejectsUnbalancedDelimiters(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"unclosed paren", "MATCH (p:Person RETURN p", "Unclosed '('"},
		{"unmatched close", "MATCH p:Person) RETURN p", "Unmatched closing ')'"},
		{"mismatched pair", "MATCH (p:Person] RETURN p", "Mismatched brackets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Validate(tt.in)
			require.False(t, report.Valid())
			assert.Contains(t, strings.Join(report.Errors, " "), tt.want)
		})
	}
}

func TestValidateBracketsInsideStringsAreData(t *testing.T) {
	report := Validate("MATCH (m:Message) WHERE m.original = '(unbalanced ]' RETURN m.original")
	assert.True(t, report.Valid(), "errors: %v", report.Errors)
}

func TestValidateRejectsUnclosedString(t *testing.T) {
	report := Validate("MATCH (p:Person) WHERE p.name = 'Sarah RETURN p")
	require.False(t, report.Valid())
	assert.Contains(t, strings.Join(report.Errors, " "), "Unclosed single quote")
}

func TestValidateRejectsDeniedFunctions(t *testing.T) {
	report := Validate("MATCH (p:Person) WHERE lower(p.name) = 'x' RETURN p")
	require.False(t, report.Valid())
	assert.Contains(t, strings.Join(report.Errors, " "), "toLower()")
}

func TestValidateWarnsOnUnknownFunction(t *testing.T) {
	report := Validate("MATCH (p:Person) RETURN frobnicate(p.name)")
	assert.True(t, report.Valid(), "unknown functions warn, not reject")
	assert.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[0], "frobnicate")
}

func TestValidateRejectsUndefinedVariable(t *testing.T) {
	report := Validate("MATCH (p:Person) RETURN q.name")
	require.False(t, report.Valid())
	assert.Contains(t, strings.Join(report.Errors, " "), "Undefined variables: q")
}

func TestValidateScalarBuiltinsExempt(t *testing.T) {
	report := Validate("MATCH (p:Person) WHERE p.hired > date.year RETURN p.name")
	assert.True(t, report.Valid(), "errors: %v", report.Errors)
}

func TestValidateDefinitionMustPrecedeUse(t *testing.T) {
	report := Validate("MATCH (p:Person) WHERE t.name = 'Core' MATCH (t:Team) RETURN p.name")
	require.False(t, report.Valid())
	assert.Contains(t, strings.Join(report.Errors, " "), "Undefined variables: t")
}

func TestValidateAliasDefinesVariable(t *testing.T) {
	report := Validate("MATCH (p:Person) WITH p AS person RETURN person.name")
	assert.True(t, report.Valid(), "errors: %v", report.Errors)
}

func TestValidateRejectsMissingVerb(t *testing.T) {
	report := Validate("RETURN 42")
	require.False(t, report.Valid())
}

func TestValidateRejectsMissingReturn(t *testing.T) {
	report := Validate("MATCH (p:Person)")
	require.False(t, report.Valid())
	assert.Contains(t, strings.Join(report.Errors, " "), "RETURN")
}

func TestValidateWriteOnlyNeedsNoReturn(t *testing.T) {
	report := Validate("CREATE (m:Message {original: 'hello'})")
	assert.True(t, report.Valid(), "errors: %v", report.Errors)
}

func TestValidateShortestPathInMatchRejected(t *testing.T) {
	report := Validate("MATCH path = shortestPath((a:Person)-[*]-(b:Person)) RETURN path")
	require.False(t, report.Valid())
	assert.Contains(t, strings.Join(report.Errors, " "), "shortestPath")
}

func TestValidateEmptyQuery(t *testing.T) {
	report := Validate("   ")
	require.False(t, report.Valid())
}
