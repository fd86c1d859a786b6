package checkout

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

var digitFolder = runes.Map(foldDigit)

func foldDigit(r rune) rune {
	switch {
	case r >= '۰' && r <= '۹':
		return '0' + (r - '۰')
	case r >= '٠' && r <= '٩':
		return '0' + (r - '٠')
	}
	return r
}

// NormalizeDigits rewrites Persian and Arabic-Indic digits as ASCII digits and
// trims surrounding whitespace. Other characters are kept.
func NormalizeDigits(value string) string {
	out, _, err := transform.String(digitFolder, value)
	if err != nil {
		out = strings.Map(foldDigit, value)
	}
	return strings.TrimSpace(out)
}

func isDigits(value string, n int) bool {
	if len(value) != n {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}
