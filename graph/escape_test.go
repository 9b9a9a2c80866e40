package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeString(t *testing.T) {
	assert.Equal(t, `O\'Brien`, EscapeString("O'Brien"))
	assert.Equal(t, `a\\b`, EscapeString(`a\b`))
	assert.Equal(t, "plain", EscapeString("plain"))
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `'Core Platform'`, Quote("Core Platform"))
	assert.Equal(t, `'O\'Brien'`, Quote("O'Brien"))
}

func TestWithParams(t *testing.T) {
	got := WithParams("CREATE (m:Message {original: $original, echoed: $echoed})",
		map[string]string{
			"original": "hello there",
			"echoed":   "ello-hay ere-thay",
		})
	assert.Equal(t,
		"CYPHER echoed='ello-hay ere-thay' original='hello there' "+
			"CREATE (m:Message {original: $original, echoed: $echoed})",
		got)
}

func TestWithParamsEscapesValues(t *testing.T) {
	got := WithParams("MATCH (p:Person {name: $name}) RETURN p",
		map[string]string{"name": "O'Brien"})
	assert.Contains(t, got, `name='O\'Brien'`)
}

func TestWithParamsNoParams(t *testing.T) {
	assert.Equal(t, "MATCH (p) RETURN p", WithParams("MATCH (p) RETURN p", nil))
}
