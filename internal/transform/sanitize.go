// Package transform turns accepted raw records into normalized Facility
// values: string sanitization, phone and URL formatting, facet extraction,
// identity derivation, and quality scoring. Everything here is a pure
// function of its inputs.
package transform

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// maxFieldLength caps sanitized string fields.
const maxFieldLength = 255

// Sanitize normalizes a free-text field: unicode NFKC, control characters
// stripped (0x00-0x1F, 0x7F-0x9F), internal whitespace collapsed, trimmed,
// capped at 255 characters.
func Sanitize(s string) string {
	s = norm.NFKC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
			}
			lastSpace = true
			continue
		}
		if r <= 0x1F || (r >= 0x7F && r <= 0x9F) {
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}

	out := strings.TrimSpace(b.String())
	if len(out) > maxFieldLength {
		// Back up to a rune boundary so the cut never leaves an invalid
		// UTF-8 tail.
		cut := maxFieldLength
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = out[:cut]
	}
	return out
}

// FormatPhone normalizes US phone numbers to (NNN) NNN-NNNN. Ten digits are
// formatted directly; eleven digits with a leading 1 drop the country code;
// anything else is returned sanitized but unformatted.
func FormatPhone(s string) string {
	s = Sanitize(s)
	if s == "" {
		return ""
	}

	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	if len(d) == 11 && d[0] == '1' {
		d = d[1:]
	}
	if len(d) != 10 {
		return s
	}

	return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
}

// SanitizeURL normalizes a website value: trims, strips trailing
// punctuation, prepends https:// when the scheme is missing, and validates
// the result. Unfixable values normalize to empty rather than being kept
// malformed.
func SanitizeURL(s string) string {
	s = Sanitize(s)
	s = strings.TrimRight(s, ".,;:!?)")
	if s == "" {
		return ""
	}

	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	if u.Host == "" || !strings.Contains(u.Host, ".") || strings.ContainsAny(u.Host, " \t") {
		return ""
	}

	return u.String()
}
