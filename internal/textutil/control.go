package textutil

import (
	"unicode/utf16"
	"unicode/utf8"
)

const hexDigits = "0123456789abcdef"

// EscapeControlChars rewrites raw control characters (below 0x20) that appear
// inside JSON string literals as \u00XX escapes. Bytes outside string literals
// are copied unchanged, so structural damage is still reported by the decoder.
// The returned count is the number of characters escaped.
func EscapeControlChars(data []byte) ([]byte, int) {
	var (
		out      []byte
		inString bool
		escaped  bool
		count    int
	)
	for i, b := range data {
		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			case b < 0x20:
				if out == nil {
					out = make([]byte, 0, len(data)+16)
					out = append(out, data[:i]...)
				}
				out = append(out, '\\', 'u', '0', '0', hexDigits[b>>4], hexDigits[b&0x0f])
				count++
				continue
			}
		} else if b == '"' {
			inString = true
		}
		if out != nil {
			out = append(out, b)
		}
	}
	if out == nil {
		return data, 0
	}
	return out, count
}

// EscapeNonASCII rewrites every non-ASCII rune in an encoded JSON document
// as a \uXXXX escape, using surrogate pairs above the BMP. Non-ASCII runes can
// only occur inside string literals of valid JSON, so the result stays valid.
func EscapeNonASCII(data []byte) []byte {
	var out []byte
	for i := 0; i < len(data); {
		if data[i] < utf8.RuneSelf {
			if out != nil {
				out = append(out, data[i])
			}
			i++
			continue
		}
		if out == nil {
			out = make([]byte, 0, len(data)+32)
			out = append(out, data[:i]...)
		}
		r, size := utf8.DecodeRune(data[i:])
		if r1, r2 := utf16.EncodeRune(r); r1 != utf8.RuneError {
			out = appendUnicodeEscape(out, r1)
			out = appendUnicodeEscape(out, r2)
		} else {
			out = appendUnicodeEscape(out, r)
		}
		i += size
	}
	if out == nil {
		return data
	}
	return out
}

func appendUnicodeEscape(dst []byte, r rune) []byte {
	return append(dst, '\\', 'u',
		hexDigits[(r>>12)&0x0f], hexDigits[(r>>8)&0x0f],
		hexDigits[(r>>4)&0x0f], hexDigits[r&0x0f])
}
