// Package normalize folds user typed names for matching and slugs.
package normalize

import "strings"

var turkish = map[rune]string{
	'ç': "c", 'Ç': "C",
	'ğ': "g", 'Ğ': "G",
	'ı': "i", 'İ': "I",
	'ö': "o", 'Ö': "O",
	'ş': "s", 'Ş': "S",
	'ü': "u", 'Ü': "U",
}

// Fold lowercases, maps Turkish letters to ASCII and collapses whitespace.
// Example: "  MERCİMEK   ÇORBASI " -> "mercimek corbasi"
func Fold(s string) string {
	var b strings.Builder
	for _, r := range s {
		if rep, ok := turkish[r]; ok {
			b.WriteString(rep)
		} else {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(strings.ToLower(b.String())), " ")
}

// Slug keeps [a-z0-9] of the folded name and joins the rest with single dashes.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range Fold(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
