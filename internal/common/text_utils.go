package common

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// lowercase joiners kept as-is inside proper names
var namePrepositions = map[string]bool{
	"da": true, "das": true, "de": true, "do": true, "dos": true, "e": true,
}

// TitleName title-cases a person or lodge name the Brazilian way:
// "joão DA silva" -> "João da Silva". Roman numerals stay upper case.
func TitleName(raw string) string {
	// a Caser keeps state, so one per call
	caser := cases.Title(language.BrazilianPortuguese)
	words := strings.Fields(raw)
	for i, w := range words {
		lw := strings.ToLower(w)
		switch {
		case i > 0 && namePrepositions[lw]:
			words[i] = lw
		case isRoman(w):
			words[i] = strings.ToUpper(w)
		default:
			words[i] = caser.String(lw)
		}
	}
	return strings.Join(words, " ")
}

func isRoman(w string) bool {
	if len(w) < 2 {
		return false
	}
	for _, r := range w {
		if !strings.ContainsRune("IVXLCDMivxlcdm", unicode.ToUpper(r)) {
			return false
		}
	}
	return strings.ToUpper(w) == w
}

// OnlyDigits reports whether s is a non-empty run of ASCII digits.
func OnlyDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
