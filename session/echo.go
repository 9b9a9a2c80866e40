package session

import (
	"strings"
	"unicode"
)

// pigLatin is the default local echo transform: deterministic, needs no
// model or database, and keeps case and trailing punctuation. The
// specific rewriting rule is a deployment choice; anything deterministic
// would satisfy the echo tool.
func pigLatin(text string) string {
	words := strings.Fields(text)
	out := make([]string, 0, len(words))
	for _, word := range words {
		out = append(out, pigLatinWord(word))
	}
	return strings.Join(out, " ")
}

func pigLatinWord(word string) string {
	runes := []rune(word)

	// Peel one trailing punctuation mark.
	punct := ""
	if n := len(runes); n > 0 && !unicode.IsLetter(runes[n-1]) {
		punct = string(runes[n-1])
		runes = runes[:n-1]
	}
	if len(runes) == 0 {
		return word
	}

	upperFirst := unicode.IsUpper(runes[0])
	allUpper := true
	for _, r := range runes {
		if !unicode.IsUpper(r) {
			allUpper = false
			break
		}
	}

	lower := strings.ToLower(string(runes))
	var transformed string
	if isVowel(rune(lower[0])) {
		transformed = lower + "-way"
	} else {
		split := len(lower)
		for i, r := range lower {
			if isVowel(r) {
				split = i
				break
			}
		}
		transformed = lower[split:] + "-" + lower[:split] + "ay"
	}

	switch {
	case allUpper && len(runes) > 1:
		transformed = strings.ToUpper(transformed)
	case upperFirst:
		transformed = strings.ToUpper(transformed[:1]) + transformed[1:]
	}
	return transformed + punct
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
