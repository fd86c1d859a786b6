package geo

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// foldTable lists the alternate-script letters folded onto their canonical
// Persian form. Targets never appear as sources, which keeps folding idempotent.
var foldTable = map[rune]rune{
	'ي':      'ی', // ARABIC LETTER YEH -> FARSI YEH
	'ك':      'ک', // ARABIC LETTER KAF -> KEHEH
	'آ':      'ا', // ALEF WITH MADDA ABOVE -> ALEF
	'\u00a0': ' ', // NO-BREAK SPACE
}

const nbspEntity = "&nbsp;"

// asciiSpace is the set trimmed from both ends. Other Unicode spaces are part
// of the name.
const asciiSpace = " \t\n\r\x00\x0b"

var folder = runes.Map(foldRune)

func foldRune(r rune) rune {
	if mapped, ok := foldTable[r]; ok {
		return mapped
	}
	return r
}

// Normalize derives the join key used to match province names across data
// sources. It is pure and total: the input is lowercased, non-breaking spaces
// (rune or HTML entity) become plain spaces, alternate letters are folded and
// surrounding ASCII whitespace and NUL are trimmed. Nothing else is rewritten.
func Normalize(name string) string {
	if name == "" {
		return ""
	}
	name = strings.ReplaceAll(strings.ToLower(name), nbspEntity, " ")
	folded, _, err := transform.String(folder, name)
	if err != nil {
		folded = strings.Map(foldRune, name)
	}
	return strings.Trim(folded, asciiSpace)
}
