package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/c360/graphgate/errors"
)

// Lead-in phrases models prepend to otherwise clean payloads.
var leadIns = []string{
	"Here's the JSON response:",
	"Here is the JSON:",
	"Here's the query:",
	"Here is the query:",
	"Response:",
	"JSON:",
	"Query:",
}

// Permissive recovery for analyze replies whose JSON is mangled by
// surrounding prose. Applied once, after strict extraction fails.
var analyzeJSONPattern = regexp.MustCompile(`(?s)\{[^{}]*"reasoning"[^{}]*"tools"[^{}]*"response_type"[^{}]*\}`)

func stripLeadIns(text string) string {
	text = strings.TrimSpace(text)
	for _, prefix := range leadIns {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimSpace(strings.TrimPrefix(text, prefix))
		}
	}
	return text
}

// ExtractCode recovers a statement from model output: the first fenced
// code block if present, otherwise the trimmed text verbatim. Language
// tags on the fence are ignored.
func ExtractCode(text string) string {
	text = stripLeadIns(text)

	start := strings.Index(text, "```")
	if start < 0 {
		return strings.TrimSpace(text)
	}

	// Skip the fence and an optional language tag up to end of line.
	rest := text[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		firstLine := strings.TrimSpace(rest[:nl])
		if firstLine != "" && !strings.ContainsAny(firstLine, " \t") && len(firstLine) <= 16 {
			rest = rest[nl+1:]
		}
	}

	if end := strings.Index(rest, "```"); end >= 0 {
		return strings.TrimSpace(rest[:end])
	}
	return strings.TrimSpace(rest)
}

// ExtractJSON recovers the largest complete JSON object embedded in
// model output. Extraction order: fenced json block, brace-balanced scan
// from the first '{', then one permissive regex-guided retry. Give-up
// classifies as LLMUnparseable.
func ExtractJSON(text string) (string, error) {
	candidate := stripLeadIns(text)

	if fenced := fencedBlock(candidate, "json"); fenced != "" {
		candidate = fenced
	} else if fenced := fencedBlock(candidate, ""); fenced != "" {
		candidate = fenced
	}

	if obj := balancedObject(candidate); obj != "" && json.Valid([]byte(obj)) {
		return obj, nil
	}

	// Permissive retry against the raw reply.
	if match := analyzeJSONPattern.FindString(text); match != "" && json.Valid([]byte(match)) {
		return match, nil
	}

	return "", errors.New(errors.KindLLMUnparseable, "llm", "ExtractJSON",
		"no JSON object could be recovered from model output")
}

// fencedBlock returns the content of the first ``` block with the given
// language tag ("" matches a bare fence), or "".
func fencedBlock(text, lang string) string {
	marker := "```" + lang
	start := strings.Index(text, marker)
	if start < 0 {
		return ""
	}
	rest := text[start+len(marker):]
	if lang == "" {
		// A bare fence may still carry a tag; drop the first line if it
		// has no spaces (a tag, not content).
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			firstLine := strings.TrimSpace(rest[:nl])
			if firstLine != "" && !strings.ContainsAny(firstLine, " \t{") {
				rest = rest[nl+1:]
			}
		}
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(rest[:end])
}

// balancedObject returns the substring from the first '{' to its
// balancing '}', respecting string literals and escapes.
func balancedObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case inString && ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case !inString && ch == '{':
			depth++
		case !inString && ch == '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
