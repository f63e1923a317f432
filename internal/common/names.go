package common

import (
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"
)

// UnknownStr is returned by String methods for out-of-range enum values.
const UnknownStr = "unknown"

// Capitalize upper-cases the first rune of s ("name" -> "Name").
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}

	return string(unicode.ToUpper(r)) + s[size:]
}

// Decapitalize lower-cases the leading upper-case run of s, keeping acronyms
// readable: "Name" -> "name", "URL" -> "url", "HTTPServer" -> "httpServer".
func Decapitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
		return s
	}

	i := 0
	for i < len(runes) && unicode.IsUpper(runes[i]) {
		i++
	}

	// "HTTPServer": keep the 'S' of "Server" upper-case.
	if i > 1 && i < len(runes) && unicode.IsLower(runes[i]) {
		i--
	}

	for j := range i {
		runes[j] = unicode.ToLower(runes[j])
	}

	return string(runes)
}

// AllCaps converts a camelCase identifier to UPPER_SNAKE ("firstName" -> "FIRST_NAME").
func AllCaps(s string) string {
	var sb strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				sb.WriteByte('_')
			}
		}

		sb.WriteRune(unicode.ToUpper(r))
	}

	return sb.String()
}

// SafeIdent returns name, suffixed with an underscore when it collides with a
// Go keyword or predeclared identifier that generated code relies on.
func SafeIdent(name string) string {
	if token.IsKeyword(name) {
		return name + "_"
	}

	switch name {
	case "b", "v", "p", "fn", "other", "result", "string", "error", "len", "append", "make", "new", "copy":
		return name + "_"
	}

	return name
}

// HasUpperBoundary reports whether s starts with prefix followed by an
// upper-case rune ("GetName" has a boundary after "Get", "Getaway" does not).
func HasUpperBoundary(s, prefix string) bool {
	if !strings.HasPrefix(s, prefix) || len(s) == len(prefix) {
		return false
	}

	r, _ := utf8.DecodeRuneInString(s[len(prefix):])

	return unicode.IsUpper(r)
}
