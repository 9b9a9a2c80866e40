package query

// The scanner walks statement text exactly once per check, tracking
// string-literal and escape state so that terminators, brackets, and
// quotes inside literals are never treated as structure.

// scanState tracks string-literal context during a single pass.
type scanState struct {
	inString   bool
	stringChar byte
	escaped    bool
}

// step consumes one byte and reports whether it is structural, meaning
// outside any string literal and not an escape or quote character.
func (s *scanState) step(ch byte) bool {
	if s.escaped {
		s.escaped = false
		return false
	}
	if ch == '\\' {
		s.escaped = true
		return false
	}
	if s.inString {
		if ch == s.stringChar {
			s.inString = false
			s.stringChar = 0
		}
		return false
	}
	if ch == '\'' || ch == '"' {
		s.inString = true
		s.stringChar = ch
		return false
	}
	return true
}

// structuralIndexes returns the positions of ch occurring outside string
// literals.
func structuralIndexes(text string, ch byte) []int {
	var out []int
	var state scanState
	for i := 0; i < len(text); i++ {
		if state.step(text[i]) && text[i] == ch {
			out = append(out, i)
		}
	}
	return out
}

// splitFirstStatement returns the text up to the first structural
// terminator, and whether anything beyond it was dropped.
func splitFirstStatement(text string) (string, bool) {
	idxs := structuralIndexes(text, ';')
	if len(idxs) == 0 {
		return text, false
	}
	first := text[:idxs[0]]
	rest := text[idxs[0]+1:]
	for i := 0; i < len(rest); i++ {
		if rest[i] != ' ' && rest[i] != '\t' && rest[i] != '\n' && rest[i] != '\r' {
			return first, true
		}
	}
	return first, false
}
