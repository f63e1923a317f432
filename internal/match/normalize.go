package match

import (
	"strings"
	"unicode"
)

// accessorPrefixes are dropped by NormalizeProperty so that "GetName",
// "IsName" and "name" compare equal.
var accessorPrefixes = []string{"get", "is", "set"}

// NormalizeIdent lower-cases s and drops separators and camel-case
// boundaries: "order_ID", "OrderID" and "orderId" all become "orderid".
func NormalizeIdent(s string) string {
	return strings.Join(TokenizeIdent(s), "")
}

// NormalizeProperty is NormalizeIdent with a leading accessor verb removed.
func NormalizeProperty(s string) string {
	tokens := TokenizeIdent(s)
	if len(tokens) > 1 {
		for _, p := range accessorPrefixes {
			if tokens[0] == p {
				tokens = tokens[1:]

				break
			}
		}
	}

	return strings.Join(tokens, "")
}

// TokenizeIdent splits an identifier into lower-case tokens:
//   - "OrderID" -> ["order", "id"]
//   - "XMLParser" -> ["xml", "parser"]
//   - "get_http_response" -> ["get", "http", "response"]
func TokenizeIdent(s string) []string {
	var (
		tokens  []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()

			continue
		}

		if i > 0 && startsToken(runes, i) {
			flush()
		}

		current.WriteRune(r)
	}

	flush()

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}

// startsToken reports a lower-to-upper transition ("orderID" before 'I') or
// the end of an acronym ("XMLParser" before 'P').
func startsToken(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if !unicode.IsUpper(r) {
		return false
	}

	if !unicode.IsUpper(prev) && !isSeparator(prev) {
		return true
	}

	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
