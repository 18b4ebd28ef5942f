package use_cases

import (
	"strings"
	"unicode"
)

// hebrewToLatin - deterministic character-substitution table used to derive
// an English rendering when the model never supplied one. This is plain
// romanization, not translation: "חומוס אליהו" -> "Chumus Elihu".
var hebrewToLatin = map[rune]string{
	'א': "a", 'ב': "b", 'ג': "g", 'ד': "d", 'ה': "h",
	'ו': "o", 'ז': "z", 'ח': "ch", 'ט': "t", 'י': "i",
	'כ': "k", 'ך': "ch", 'ל': "l", 'מ': "m", 'ם': "m",
	'נ': "n", 'ן': "n", 'ס': "s", 'ע': "a", 'פ': "p",
	'ף': "f", 'צ': "tz", 'ץ': "tz", 'ק': "k", 'ר': "r",
	'ש': "sh", 'ת': "t",
	'׳': "'", // geresh, e.g. ג׳ in loanwords
}

// TransliterateName derives a Latin rendering of a Hebrew name: substitute
// character by character, drop vowel points, then capitalize each token.
func TransliterateName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.Is(unicode.Hebrew, r):
			if latin, ok := hebrewToLatin[r]; ok {
				b.WriteString(latin)
			}
			// niqqud and cantillation marks are dropped
		default:
			b.WriteRune(r)
		}
	}
	return capitalizeTokens(b.String())
}

func capitalizeTokens(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		runes := []rune(f)
		runes[0] = unicode.ToUpper(runes[0])
		fields[i] = string(runes)
	}
	return strings.Join(fields, " ")
}
