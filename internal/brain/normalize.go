package brain

import (
	"strings"
	"unicode"
)

// diacritics is the fixed substitution table applied during normalization.
// It covers the accented forms the speech engine actually emits; anything
// else passes through untouched so normalization stays total.
var diacritics = strings.NewReplacer(
	"ç", "c",
	"á", "a",
	"à", "a",
	"ã", "a",
	"â", "a",
	"é", "e",
	"ê", "e",
	"í", "i",
	"ó", "o",
	"ô", "o",
	"õ", "o",
	"ú", "u",
)

// Normalize lowercases, collapses whitespace and strips diacritics. Every
// decision path works on this form, including pending-state handling.
func Normalize(s string) string {
	t := strings.ToLower(strings.TrimSpace(s))
	t = strings.Join(strings.Fields(t), " ")
	return diacritics.Replace(t)
}

// tokenize splits normalized text into lowercase alphanumeric words. Used by
// the notes skill for topic matching.
func tokenize(s string) []string {
	s = strings.TrimSpace(strings.ToLower(s))
	var out []string
	var b strings.Builder
	flush := func() {
		if b.Len() == 0 {
			return
		}
		out = append(out, b.String())
		b.Reset()
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return out
}
