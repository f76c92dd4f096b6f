// Package encoding converts text stored in fixed-size fields of legacy
// binary mesh formats.
package encoding

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// latin1Rune maps r into ISO-8859-1. Accented letters outside the range
// fall back to their base letter; anything else becomes '?'.
func latin1Rune(r rune) rune {
	if r <= 0xFF && r != utf8.RuneError {
		return r
	}
	if r != utf8.RuneError {
		if base, _ := utf8.DecodeRuneInString(norm.NFD.String(string(r))); base <= 0xFF {
			return base
		}
	}
	return '?'
}

// Latin1ToUTF8 converts ISO-8859-1 encoded bytes to a UTF-8 string.
// Returns the original string if conversion fails.
func Latin1ToUTF8(data []byte) string {
	result, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// UTF8ToLatin1 converts a UTF-8 string to ISO-8859-1 encoded bytes.
// Characters with no Latin-1 form are approximated or replaced by '?'.
func UTF8ToLatin1(s string) []byte {
	t := transform.Chain(norm.NFC, runes.Map(latin1Rune), charmap.ISO8859_1.NewEncoder())
	result, _, err := transform.Bytes(t, []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}

// FixedStringToUTF8 converts a fixed-size Latin-1 field to a UTF-8 string.
// The field ends at the first null byte; trailing space padding is dropped.
func FixedStringToUTF8(data []byte) string {
	if nullIdx := bytes.IndexByte(data, 0); nullIdx >= 0 {
		data = data[:nullIdx]
	}
	return Latin1ToUTF8(bytes.TrimRight(data, " "))
}

// UTF8ToFixedString converts s to a fixed-size Latin-1 field, truncated or
// padded with null bytes to size.
func UTF8ToFixedString(s string, size int) []byte {
	result := make([]byte, size)
	copy(result, UTF8ToLatin1(s))
	return result
}
