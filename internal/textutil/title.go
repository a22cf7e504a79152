package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeTitle lowercases a title and splits it into words on any rune that
// is not a letter or digit.
func NormalizeTitle(title string) []string {
	lowered := cases.Lower(language.Und).String(title)
	return strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// NormalizedKey joins the normalized words with single spaces. Titles that
// match produce the same key.
func NormalizedKey(title string) string {
	return strings.Join(NormalizeTitle(title), " ")
}

// TitlesMatch reports whether two titles have identical normalized word
// sequences. Titles made only of punctuation normalize to no words and match
// each other.
func TitlesMatch(a, b string) bool {
	wa := NormalizeTitle(a)
	wb := NormalizeTitle(b)
	if len(wa) != len(wb) {
		return false
	}
	for i := range wa {
		if wa[i] != wb[i] {
			return false
		}
	}
	return true
}

// FoldKey lowercases a name for case-insensitive lookups without otherwise
// altering it.
func FoldKey(name string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(name))
}
