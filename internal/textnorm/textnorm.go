// Package textnorm normalizes free text (client names, spreadsheet headers)
// into a comparable canonical form.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripAccents removes combining marks: "Operación" -> "Operacion".
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}

	return out
}

// CollapseSpaces trims s and reduces every run of whitespace to one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Name is the canonical form of a client name: accents stripped, upper case,
// collapsed whitespace and no trailing ".,;" or spaces.
func Name(s string) string {
	out := CollapseSpaces(strings.ToUpper(StripAccents(s)))

	return strings.TrimRight(out, ".,; ")
}

// Header is the canonical form of a spreadsheet column header. Punctuation
// other than letters and digits becomes a space.
func Header(s string) string {
	s = strings.ToLower(StripAccents(s))

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}

		b.WriteByte(' ')
	}

	return CollapseSpaces(b.String())
}

// Code upper-snake-cases a catalog code: " flete maritimo " -> "FLETE_MARITIMO".
func Code(s string) string {
	s = strings.ToUpper(StripAccents(strings.TrimSpace(s)))

	var b strings.Builder
	lastUnderscore := false

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)

			lastUnderscore = false

			continue
		}

		if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')

			lastUnderscore = true
		}
	}

	return strings.TrimRight(b.String(), "_")
}
