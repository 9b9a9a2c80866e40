package query

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// validFunctions are the function names the target dialect accepts.
var validFunctions = map[string]bool{
	// String functions
	"toLower": true, "toUpper": true, "trim": true, "left": true,
	"right": true, "substring": true, "replace": true, "split": true,
	"size": true, "reverse": true, "toString": true,
	// Math functions
	"abs": true, "ceil": true, "floor": true, "round": true, "sqrt": true,
	"sign": true, "rand": true, "sin": true, "cos": true, "tan": true,
	"asin": true, "acos": true, "atan": true, "log": true, "exp": true,
	// Aggregation functions
	"count": true, "sum": true, "avg": true, "min": true, "max": true,
	"collect": true, "stDev": true,
	// Date/time functions
	"date": true, "datetime": true, "duration": true, "timestamp": true,
	// Graph functions
	"id": true, "labels": true, "type": true, "properties": true,
	"keys": true, "nodes": true, "relationships": true,
	"shortestPath": true, "allShortestPaths": true,
	// List functions
	"range": true, "head": true, "tail": true, "last": true,
	"all": true, "any": true, "none": true, "single": true,
}

// deniedFunctions maps known dialect mismatches to their remediation
// hint. These reject outright; the sanitizer fixes most of them before
// validation ever sees them.
var deniedFunctions = map[string]string{
	"lower": "Use 'toLower()' instead.",
	"LOWER": "Use 'toLower()' instead.",
	"upper": "Use 'toUpper()' instead.",
	"UPPER": "Use 'toUpper()' instead.",
	"TRIM":  "Use 'trim()' instead.",
	"year":  "Date extraction is not supported this way.",
	"month": "Date extraction is not supported this way.",
	"day":   "Date extraction is not supported this way.",
	"hour":  "Date extraction is not supported this way.",
	"minute": "Date extraction is not supported this way.",
	"second": "Date extraction is not supported this way.",
}

// reservedKeywords never count as function calls even when followed by a
// parenthesis.
var reservedKeywords = map[string]bool{
	"MATCH": true, "OPTIONAL": true, "WHERE": true, "RETURN": true,
	"WITH": true, "CREATE": true, "DELETE": true, "SET": true,
	"REMOVE": true, "MERGE": true, "UNION": true, "CALL": true,
	"YIELD": true, "UNWIND": true, "AND": true, "OR": true, "NOT": true,
	"EXISTS": true, "IN": true, "AS": true, "ORDER": true, "BY": true,
	"LIMIT": true, "SKIP": true, "DISTINCT": true,
}

// scalarBuiltins may appear with a property-style lookup without a prior
// binding (date().year and friends).
var scalarBuiltins = map[string]bool{
	"date": true, "datetime": true, "duration": true, "timestamp": true,
}

var (
	functionCallRe = regexp.MustCompile(`\b([a-zA-Z_]\w*)\s*\(`)
	whereClauseRe  = regexp.MustCompile(`(?is)\bWHERE\b(.*?)(?:\bRETURN\b|\bWITH\b|\bORDER\b|\bLIMIT\b|\bSKIP\b|$)`)
	aggInFilterRe  = regexp.MustCompile(`(?i)\b(count|sum|avg|min|max|collect|stDev)\s*\(`)
	spInMatchRe    = regexp.MustCompile(`(?is)\bMATCH\b[^=]*=\s*shortestPath\s*\(`)
	spShapeRe      = regexp.MustCompile(`(?s)shortestPath\s*\(\s*\(.*?\)-\[\*.*?\]-\(.*?\)\s*\)`)

	nodeBindingRe = regexp.MustCompile(`\(\s*([a-zA-Z_]\w*)\s*[:)\s{]`)
	relBindingRe  = regexp.MustCompile(`\[\s*([a-zA-Z_]\w*)\s*[:\]]`)
	aliasRe       = regexp.MustCompile(`(?i)\bAS\s+([a-zA-Z_]\w*)`)
	unwindRe      = regexp.MustCompile(`(?i)\bUNWIND\b.*?\bAS\s+([a-zA-Z_]\w*)`)
	propertyUseRe = regexp.MustCompile(`\b([a-zA-Z_]\w*)\.[a-zA-Z_]`)
)

// openingVerbs are the tokens a statement may begin with.
var openingVerbs = map[string]bool{
	"MATCH": true, "OPTIONAL": true, "CREATE": true, "MERGE": true,
	"UNWIND": true, "CALL": true,
}

// Validate runs the shallow-syntactic checks on processed statement
// text. The verdict is reject if any error check fires; warnings are
// advisory and never block execution.
func Validate(text string) Report {
	var r Report

	checkStructure(text, &r)
	checkTerminators(text, &r)
	checkDelimiters(text, &r)
	checkStringClosure(text, &r)
	checkFunctionNames(text, &r)
	checkAggregateInFilter(text, &r)
	checkShortestPath(text, &r)
	checkVariableDefinitions(text, &r)

	return r
}

func checkStructure(text string, r *Report) {
	upper := strings.ToUpper(text)

	fields := strings.Fields(upper)
	if len(fields) == 0 {
		r.Errors = append(r.Errors, "Query is empty")
		return
	}
	if !openingVerbs[fields[0]] {
		r.Errors = append(r.Errors, fmt.Sprintf("Query must begin with MATCH, CREATE, MERGE, UNWIND, or CALL; got %q", fields[0]))
	}

	hasRead := strings.Contains(upper, "MATCH")
	hasWrite := strings.Contains(upper, "CREATE") || strings.Contains(upper, "MERGE") ||
		strings.Contains(upper, "SET") || strings.Contains(upper, "DELETE")

	if !hasRead && !hasWrite {
		r.Errors = append(r.Errors, "Query must contain MATCH, CREATE, or MERGE")
	}
	if !strings.Contains(upper, "RETURN") && !hasWrite {
		r.Errors = append(r.Errors, "Query must have a RETURN clause")
	}
}

// checkTerminators rejects extra statement terminators. A single
// trailing semicolon is tolerated (the sanitizer strips it); anything
// else means multiple statements.
func checkTerminators(text string, r *Report) {
	idxs := structuralIndexes(text, ';')
	if len(idxs) == 0 {
		return
	}

	trimmed := strings.TrimSpace(text)
	if len(idxs) == 1 && strings.HasSuffix(trimmed, ";") {
		return
	}
	r.Errors = append(r.Errors, "Multiple semicolons detected. Only single statements allowed.")
}

func checkDelimiters(text string, r *Report) {
	type open struct {
		ch  byte
		pos int
	}
	var stack []open
	pairs := map[byte]byte{')': '(', ']': '[', '}': '{'}

	var state scanState
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if !state.step(ch) {
			continue
		}
		switch ch {
		case '(', '[', '{':
			stack = append(stack, open{ch, i})
		case ')', ']', '}':
			if len(stack) == 0 {
				r.Errors = append(r.Errors, fmt.Sprintf("Unmatched closing '%c' at position %d", ch, i))
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.ch != pairs[ch] {
				r.Errors = append(r.Errors, fmt.Sprintf("Mismatched brackets: '%c' and '%c'", top.ch, ch))
			}
		}
	}

	for _, o := range stack {
		r.Errors = append(r.Errors, fmt.Sprintf("Unclosed '%c' at position %d", o.ch, o.pos))
	}
}

func checkStringClosure(text string, r *Report) {
	var state scanState
	for i := 0; i < len(text); i++ {
		state.step(text[i])
	}
	if state.inString {
		if state.stringChar == '\'' {
			r.Errors = append(r.Errors, "Unclosed single quote detected")
		} else {
			r.Errors = append(r.Errors, "Unclosed double quote detected")
		}
	}
}

func checkFunctionNames(text string, r *Report) {
	seen := map[string]bool{}
	for _, match := range functionCallRe.FindAllStringSubmatch(text, -1) {
		name := match[1]
		if seen[name] {
			continue
		}
		seen[name] = true

		if hint, denied := deniedFunctions[name]; denied {
			r.Errors = append(r.Errors, fmt.Sprintf("Invalid function '%s()'. %s", name, hint))
			continue
		}
		if !validFunctions[name] && !reservedKeywords[strings.ToUpper(name)] {
			r.Warnings = append(r.Warnings, fmt.Sprintf("Unknown function '%s()'. Ensure it is available in the target store.", name))
		}
	}
}

func checkAggregateInFilter(text string, r *Report) {
	for _, match := range whereClauseRe.FindAllStringSubmatch(text, -1) {
		if aggInFilterRe.MatchString(match[1]) {
			r.Errors = append(r.Errors, "Aggregation functions cannot be used directly in WHERE clauses. Use WITH clause first.")
			return
		}
	}
}

func checkShortestPath(text string, r *Report) {
	if spInMatchRe.MatchString(text) {
		r.Errors = append(r.Errors, "shortestPath() must be used in WITH or RETURN clause, not in MATCH.")
	}
	if strings.Contains(text, "shortestPath") && !spShapeRe.MatchString(text) {
		r.Warnings = append(r.Warnings, "shortestPath() syntax might be incorrect. Use: shortestPath((a)-[*]-(b))")
	}
}

// checkVariableDefinitions enforces definition-before-use for every
// identifier that appears with a property lookup. Bindings come from
// node and relationship patterns, AS aliases, and UNWIND targets;
// scalar builtins are exempt.
func checkVariableDefinitions(text string, r *Report) {
	type definition struct{ pos int }
	defined := map[string]definition{}

	record := func(re *regexp.Regexp) {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			name := text[loc[2]:loc[3]]
			if prev, ok := defined[name]; !ok || loc[2] < prev.pos {
				defined[name] = definition{pos: loc[2]}
			}
		}
	}
	record(nodeBindingRe)
	record(relBindingRe)
	record(aliasRe)
	record(unwindRe)

	undefined := map[string]bool{}
	for _, loc := range propertyUseRe.FindAllStringSubmatchIndex(text, -1) {
		name := text[loc[2]:loc[3]]
		if scalarBuiltins[name] {
			continue
		}
		def, ok := defined[name]
		if !ok || def.pos > loc[2] {
			undefined[name] = true
		}
	}

	if len(undefined) > 0 {
		names := make([]string, 0, len(undefined))
		for name := range undefined {
			names = append(names, name)
		}
		sort.Strings(names)
		r.Errors = append(r.Errors, "Undefined variables: "+strings.Join(names, ", "))
	}
}
