package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slug folds accents and replaces anything outside [A-Za-z0-9_-] with '_',
// so a device id can be used in object keys and topic levels.
func Slug(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, folded)

	if slug == "" {
		return "default"
	}
	return slug
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
