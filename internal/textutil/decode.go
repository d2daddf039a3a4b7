package textutil

import (
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeBestEffort converts raw bytes into UTF-8 text. A leading byte order mark
// is dropped and every invalid byte sequence becomes U+FFFD, so decoding
// never fails.
func DecodeBestEffort(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	decoded, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), data)
	if err != nil {
		// The UTF-8 decoder only replaces; an error here means a transformer bug.
		return string(data)
	}
	return string(decoded)
}
