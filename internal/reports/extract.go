package reports

import "strings"

// ExtractJSON returns the first balanced {...} span in raw. Braces inside
// string literals, including escaped quotes, are ignored. It reports false
// when raw has no opening brace or the first object never closes.
func ExtractJSON(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}
	return balancedAt(raw, start)
}

// balancedAt returns the object opening at raw[start] if it closes.
func balancedAt(raw string, start int) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}

// Sanitize repairs control characters that models commonly emit inside JSON.
// Within string literals raw newline, carriage return and tab become their
// escape sequences; every other control character (below 0x20, and 0x7F) is
// removed. Whitespace outside strings is kept as is.
func Sanitize(span string) string {
	var b strings.Builder
	b.Grow(len(span) + 16)

	inString := false
	escaped := false
	for i := 0; i < len(span); i++ {
		c := span[i]

		if !inString {
			switch {
			case c == '"':
				inString = true
				b.WriteByte(c)
			case c == '\n' || c == '\r' || c == '\t':
				b.WriteByte(c)
			case c < 0x20 || c == 0x7F:
			default:
				b.WriteByte(c)
			}
			continue
		}

		if replacement, ok := stringEscapes[c]; ok {
			if escaped {
				// The backslash is already written.
				b.WriteByte(replacement)
				escaped = false
			} else {
				b.WriteByte('\\')
				b.WriteByte(replacement)
			}
			continue
		}
		if c < 0x20 || c == 0x7F {
			continue
		}

		b.WriteByte(c)
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = false
		}
	}
	return b.String()
}

var stringEscapes = map[byte]byte{
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
}
