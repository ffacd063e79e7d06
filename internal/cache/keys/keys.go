// Package keys derives cache keys for AWIC service queries.
package keys

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// only WKT delimiters; spaces next to digits or dots separate coordinates
var punctRE = regexp.MustCompile(`\s*([,\(\)])\s*`)

// Key builds a stable key for a procedure and its query parameters.
// Whitespace differences inside values (e.g. WKT spacing) do not change it.
func Key(proc string, params url.Values) string {
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)

	var canon strings.Builder
	for _, k := range names {
		for _, v := range params[k] {
			canon.WriteString(k)
			canon.WriteByte('=')
			canon.WriteString(normalizeValue(v))
			canon.WriteByte('&')
		}
	}
	text := canon.String()

	procSafe := sanitizeForKey(strings.TrimSpace(proc))
	sum := xxhash.Sum64String(text)
	return fmt.Sprintf("awic:%s:f=%016x", procSafe, sum)
}

func normalizeValue(s string) string {
	if s == "" {
		return ""
	}
	s = collapseASCIIWhitespace(strings.TrimSpace(s))
	// Remove spaces around WKT delimiters.
	return punctRE.ReplaceAllString(s, "$1")
}

func sanitizeForKey(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))

	var prev rune
	for _, r := range s {
		out := rune(0)
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f':
			out = '_'
		case isAlphaNum(r) || r == '_' || r == '-':
			out = r
		default:
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

// converts any run of ASCII whitespace to a single space.
func collapseASCIIWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	wasWS := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f' {
			if !wasWS {
				b.WriteByte(' ')
				wasWS = true
			}
			continue
		}
		b.WriteRune(r)
		wasWS = false
	}
	return strings.TrimSpace(b.String())
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		unicode.IsDigit(r)
}
