// Package emailaddr implements the address-shape check used by every public
// form and the identity normalization used for subscriber deduplication.
package emailaddr

import (
	"regexp"
	"strings"
	"unicode/utf16"

	"golang.org/x/net/idna"
)

const (
	minLength = 5
	maxLength = 254
)

// whitespace mirrors the ECMAScript \s class so the check accepts exactly the
// same inputs the site's browser-side validation does.
const whitespace = `\t\n\v\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}`

var shape = regexp.MustCompile(`^[^` + whitespace + `@]+@[^` + whitespace + `@]+\.[^` + whitespace + `@]+$`)

// Valid reports whether raw, once trimmed, is 5..254 UTF-16 code units long
// and has the local@domain.tld shape.
func Valid(raw string) bool {
	value := strings.TrimSpace(raw)
	n := utf16Len(value)
	if n < minLength || n > maxLength {
		return false
	}
	return shape.MatchString(value)
}

// Normalize returns the identity form of an address: trimmed, lowercased and
// with an internationalized domain converted to its ASCII form.
func Normalize(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	at := strings.LastIndexByte(value, '@')
	if at < 0 {
		return value
	}
	domain, err := idna.Lookup.ToASCII(value[at+1:])
	if err != nil {
		return value
	}
	return value[:at+1] + strings.ToLower(domain)
}

// Equal compares two addresses by identity.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
