package encoding

import (
	"bytes"
	"strings"
	"unicode"
)

const crockfordBase32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ" // Crockford's Base32 alphabet

// EncodeCrockfordB32LC encodes a byte slice using Crockford's Base32 alphabet and returns
// the result in lowercase. This encoding is similar to standard Base32 but uses a modified
// alphabet that eliminates easily confused characters.
//
//nolint:gosec
func EncodeCrockfordB32LC(input []byte) string {
	var (
		result bytes.Buffer
		bits   = 0
		accum  = 0
	)

	for _, b := range input {
		accum = accum<<8 | int(b)
		bits += 8

		for bits >= 5 {
			bits -= 5
			result.WriteByte(crockfordBase32Alphabet[(accum>>(bits))&0x1F])
		}
	}

	if bits > 0 {
		result.WriteByte(crockfordBase32Alphabet[(accum<<uint(5-bits))&0x1F])
	}

	return strings.ToLower(result.String())
}

// NormalizeCrockfordB32LC turns human input back into the form produced by
// EncodeCrockfordB32LC. Whitespace and hyphens are dropped, letters are lowercased,
// O reads as 0 and I or L read as 1.
func NormalizeCrockfordB32LC(input string) string {
	var result strings.Builder

	result.Grow(len(input))

	for _, char := range strings.ToLower(input) {
		switch {
		case char == '-' || unicode.IsSpace(char):
		case char == 'o':
			result.WriteByte('0')
		case char == 'i' || char == 'l':
			result.WriteByte('1')
		default:
			result.WriteRune(char)
		}
	}

	return result.String()
}
