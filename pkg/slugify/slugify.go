// Package slugify derives URL-safe tenant slugs from school display names.
// Slugs double as subdomain labels, so the output is restricted to lowercase
// ASCII letters, digits and hyphens.
package slugify

import (
	"strings"
	"unicode"
)

// Option configures slug generation.
type Option func(*config)

type config struct {
	maxLength int
}

// MaxLength truncates the generated slug to at most n runes.
// DNS labels cap at 63 characters, which is the default.
func MaxLength(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxLength = n
		}
	}
}

// Make creates a URL and DNS safe slug from the input string. Diacritics
// common in Brazilian Portuguese are transliterated, everything else
// non-alphanumeric collapses into single hyphens.
//
//	Make("Escola São João") == "escola-sao-joao"
func Make(s string, opts ...Option) string {
	cfg := &config{maxLength: 63}
	for _, opt := range opts {
		opt(cfg)
	}

	var b strings.Builder
	b.Grow(len(s))

	lastWasHyphen := true // true avoids a leading hyphen
	count := 0

	for _, r := range s {
		if count >= cfg.maxLength {
			break
		}

		r = unicode.ToLower(r)
		if t, ok := translit[r]; ok {
			r = t
		}

		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastWasHyphen = false
			count++
			continue
		}

		if !lastWasHyphen {
			b.WriteByte('-')
			lastWasHyphen = true
			count++
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}

// translit maps Latin diacritics to ASCII. Focused on Portuguese with the
// common western European extras.
var translit = map[rune]rune{
	'á': 'a', 'à': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a',
	'ç': 'c',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i',
	'ñ': 'n',
	'ó': 'o', 'ò': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o',
	'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u',
	'ý': 'y', 'ÿ': 'y',
}
