package query

import (
	"regexp"
	"strings"
)

// Fix tags recorded by the sanitizer. Stable strings: they are logged,
// counted in metrics, and asserted in tests.
const (
	FixTrimmedProse      = "trimmed_prose"
	FixTrailingSemicolon = "removed_trailing_semicolon"
	FixMultiStatement    = "removed_multiple_statements"
	FixQuoteStyle        = "normalized_quotes"
)

// functionRenames maps alias spellings to the dialect-canonical names.
// Patterns are anchored on word boundaries so canonical names
// (toLower, toUpper) never re-match.
var functionRenames = []struct {
	pattern     *regexp.Regexp
	replacement string
	tag         string
}{
	{regexp.MustCompile(`(?i)\blower\s*\(`), "toLower(", "function_name:lower->toLower"},
	{regexp.MustCompile(`(?i)\bupper\s*\(`), "toUpper(", "function_name:upper->toUpper"},
	{regexp.MustCompile(`\bTRIM\s*\(`), "trim(", "function_name:TRIM->trim"},
	{regexp.MustCompile(`\bROUND\s*\(`), "round(", "function_name:ROUND->round"},
	{regexp.MustCompile(`\bABS\s*\(`), "abs(", "function_name:ABS->abs"},
	{regexp.MustCompile(`\bCEIL\s*\(`), "ceil(", "function_name:CEIL->ceil"},
	{regexp.MustCompile(`\bFLOOR\s*\(`), "floor(", "function_name:FLOOR->floor"},
	{regexp.MustCompile(`\bSQRT\s*\(`), "sqrt(", "function_name:SQRT->sqrt"},
}

// dateRewrites covers the date-part extraction calls that have a
// mechanical equivalent. day()/hour()/... have none and are left for the
// validator to reject.
var dateRewrites = []struct {
	pattern     *regexp.Regexp
	replacement string
	tag         string
}{
	{regexp.MustCompile(`\bdatetime\.truncate\s*\(`), "date(", "date_fn:datetime.truncate->date"},
	{regexp.MustCompile(`\byear\s*\(`), "date(", "date_fn:year->date"},
	{regexp.MustCompile(`\bmonth\s*\(`), "date(", "date_fn:month->date"},
}

// statementVerbs are the tokens a statement may open with. Used to cut
// leading explanatory prose off a model reply.
var leadingVerb = regexp.MustCompile(`(?im)^.*?\b(MATCH|OPTIONAL\s+MATCH|CREATE|MERGE|UNWIND|CALL)\b`)

// Sanitize applies the ordered rewrite rules to a candidate statement.
// Every rule is total and idempotent; rules record a fix tag only when
// they change their input. Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(raw RawQuery) ProcessedQuery {
	text := raw.Text
	var fixes []string

	text, fixes = trimProse(text, fixes)
	text, fixes = stripTrailingTerminator(text, fixes)
	text, fixes = renameFunctions(text, fixes)
	text, fixes = rewriteDateParts(text, fixes)
	text, fixes = collapseStatements(text, fixes)
	text, fixes = normalizeQuotes(text, fixes)

	return ProcessedQuery{Text: text, Fixes: fixes, Source: raw}
}

// trimProse trims whitespace and cuts leading prose before the first
// statement verb ("Sure, here is the query you asked for: MATCH …").
func trimProse(text string, fixes []string) (string, []string) {
	trimmed := strings.TrimSpace(text)

	loc := leadingVerb.FindStringSubmatchIndex(trimmed)
	if loc != nil && loc[2] > 0 {
		lead := trimmed[:loc[2]]
		// Only cut when the lead is prose, not part of the statement.
		if strings.ContainsAny(lead, " \t") && !strings.ContainsAny(lead, "(){}[]") {
			trimmed = trimmed[loc[2]:]
			fixes = append(fixes, FixTrimmedProse)
		}
	}

	return trimmed, fixes
}

func stripTrailingTerminator(text string, fixes []string) (string, []string) {
	trimmed := strings.TrimSpace(text)
	changed := false
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
		changed = true
	}
	if changed {
		fixes = append(fixes, FixTrailingSemicolon)
	}
	return trimmed, fixes
}

func renameFunctions(text string, fixes []string) (string, []string) {
	for _, rename := range functionRenames {
		if rename.pattern.MatchString(text) {
			text = rename.pattern.ReplaceAllString(text, rename.replacement)
			fixes = append(fixes, rename.tag)
		}
	}
	return text, fixes
}

func rewriteDateParts(text string, fixes []string) (string, []string) {
	for _, rewrite := range dateRewrites {
		if rewrite.pattern.MatchString(text) {
			text = rewrite.pattern.ReplaceAllString(text, rewrite.replacement)
			fixes = append(fixes, rewrite.tag)
		}
	}
	return text, fixes
}

func collapseStatements(text string, fixes []string) (string, []string) {
	first, dropped := splitFirstStatement(text)
	if dropped {
		fixes = append(fixes, FixMultiStatement)
		return strings.TrimSpace(first), fixes
	}
	return text, fixes
}

// normalizeQuotes rewrites double-quoted string literals to the
// dialect-preferred single-quote form, escaping embedded single quotes.
func normalizeQuotes(text string, fixes []string) (string, []string) {
	var out strings.Builder
	out.Grow(len(text))

	changed := false
	var state scanState
	for i := 0; i < len(text); i++ {
		ch := text[i]

		openedDouble := !state.inString && ch == '"' && !state.escaped
		closingDouble := state.inString && state.stringChar == '"' && ch == '"' && !state.escaped

		inDouble := state.inString && state.stringChar == '"'
		state.step(ch)

		switch {
		case openedDouble || closingDouble:
			out.WriteByte('\'')
			changed = true
		case inDouble && ch == '\'':
			out.WriteString(`\'`)
			changed = true
		case inDouble && ch == '\\' && i+1 < len(text) && text[i+1] == '"':
			// \" inside a double-quoted literal becomes a bare " once the
			// literal is single-quoted.
			out.WriteByte('"')
			i++
			state.escaped = false
			changed = true
		default:
			out.WriteByte(ch)
		}
	}

	if changed {
		fixes = append(fixes, FixQuoteStyle)
		return out.String(), fixes
	}
	return text, fixes
}

