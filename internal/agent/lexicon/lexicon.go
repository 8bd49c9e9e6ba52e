// Package lexicon holds the text helpers shared by the NLU stages:
// Spanish lower-casing, accent folding and phrase lookup over word tokens.
package lexicon

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Lower lower-cases s with Spanish rules.
func Lower(s string) string {
	return cases.Lower(language.Spanish).String(s)
}

// Fold lower-cases s and strips combining marks, so "Lácteos" and
// "lacteos" compare equal. ñ becomes n, which is acceptable for search keys.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, Lower(s))
	if err != nil {
		return Lower(s)
	}
	return out
}

// Tokens splits s into lower-cased words of letters and digits.
func Tokens(s string) []string {
	return strings.FieldsFunc(Lower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Text is a message prepared for repeated phrase lookups.
type Text struct {
	Raw    string
	Lower  string
	tokens []string
}

func NewText(raw string) Text {
	return Text{Raw: raw, Lower: Lower(strings.TrimSpace(raw)), tokens: Tokens(raw)}
}

// Has reports whether phrase occurs as a whole-word sequence.
func (t Text) Has(phrase string) bool {
	want := Tokens(phrase)
	if len(want) == 0 || len(want) > len(t.tokens) {
		return false
	}
outer:
	for i := 0; i+len(want) <= len(t.tokens); i++ {
		for j, w := range want {
			if t.tokens[i+j] != w {
				continue outer
			}
		}
		return true
	}
	return false
}

// HasAny reports whether any phrase occurs.
func (t Text) HasAny(phrases ...string) bool {
	for _, p := range phrases {
		if t.Has(p) {
			return true
		}
	}
	return false
}

// Count returns how many distinct phrases occur.
func (t Text) Count(phrases []string) int {
	n := 0
	for _, p := range phrases {
		if t.Has(p) {
			n++
		}
	}
	return n
}

// Contains is a raw substring check on the lower-cased text.
func (t Text) Contains(sub string) bool {
	return strings.Contains(t.Lower, Lower(sub))
}

// Is reports whether the whole message, without surrounding punctuation,
// equals one of the given phrases.
func (t Text) Is(phrases ...string) bool {
	bare := strings.Join(t.tokens, " ")
	for _, p := range phrases {
		if bare == strings.Join(Tokens(p), " ") {
			return true
		}
	}
	return false
}

// Words returns the message tokens.
func (t Text) Words() []string {
	return t.tokens
}
