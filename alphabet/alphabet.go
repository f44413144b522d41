// Package alphabet provides the bijection between the 42 printable
// characters the password checksum accepts and the sparse 8-bit codes the
// original checksum routine operates on, plus the character classifications
// the optional plausibility heuristic (package heuristic) consults.
//
// The code set is sparse: bits 0x40 and 0xC0 never appear, and within each
// aligned group of eight codes only the low-3-bit values 0-5 are used (6 of
// the 8; see Codes for the exact table). CharToCode and CodeToChar
// are total maps; looking up a character or code outside the alphabet
// returns NoCode / the zero rune respectively.
package alphabet

import "fmt"

// NoCode is the sentinel returned by CharToCode for characters outside the
// 42-character alphabet.
const NoCode = 0xFF

// Codes lists the 8-bit code for each of the 42 alphabet characters, in the
// fixed order the specification defines them.
var Codes = [Len]byte{
	0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D,
	0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x18, 0x19, 0x1A, 0x1B, 0x1C, 0x1D,
	0x20, 0x21, 0x22, 0x23, 0x24, 0x25, 0x28, 0x29, 0x2A, 0x2B, 0x2C, 0x2D,
	0x30, 0x31, 0x32, 0x33, 0x34, 0x35,
}

// Chars lists the printable character for each entry of Codes, in the same
// order: Chars[i] is the character whose code is Codes[i].
var Chars = [Len]rune{
	'A', 'H', 'O', 'V', '1', '6', 'B', 'I', 'P', 'W', '2', '7',
	'C', 'J', 'Q', 'X', '3', '8', 'D', 'K', 'R', 'Y', '4', '9',
	'E', 'L', 'S', 'Z', '5', '0', 'F', 'M', 'T', '-', 'n', '!',
	'G', 'N', 'U', '.', 'm', 'c',
}

// Len is the size of the alphabet.
const Len = 42

var (
	codeToChar [0x100]rune
	charToCode [0x100]byte
)

func init() {
	for i := range codeToChar {
		codeToChar[i] = 0
		charToCode[i] = NoCode
	}
	for i := 0; i < Len; i++ {
		codeToChar[Codes[i]] = Chars[i]
		if Chars[i] < 0x100 {
			charToCode[Chars[i]] = Codes[i]
		}
	}
}

// CodeToChar returns the printable character for an 8-bit checksum code, or
// the zero rune if code is not part of the alphabet.
func CodeToChar(code byte) rune {
	return codeToChar[code]
}

// CharToCode returns the 8-bit checksum code for a printable character, or
// NoCode if c is not part of the alphabet.
func CharToCode(c rune) byte {
	if c < 0 || c >= 0x100 {
		return NoCode
	}
	return charToCode[byte(c)]
}

// InAlphabet reports whether c is one of the 42 accepted characters.
func InAlphabet(c rune) bool {
	return CharToCode(c) != NoCode
}

// EncodeString converts a password string to its sequence of 8-bit codes.
// It returns an error naming the first character outside the alphabet, the
// configuration-error category named in §7 of the specification.
func EncodeString(s string) ([]byte, error) {
	codes := make([]byte, 0, len(s))
	for _, c := range s {
		code := CharToCode(c)
		if code == NoCode {
			return nil, fmt.Errorf("alphabet: character %q is not in the 42-character alphabet", c)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// DecodeCodes converts a sequence of 8-bit checksum codes back to a string.
func DecodeCodes(codes []byte) string {
	runes := make([]rune, len(codes))
	for i, code := range codes {
		runes[i] = CodeToChar(code)
	}
	return string(runes)
}

// IsVowel reports whether c is one of the five vowels A, I, U, E, O.
//
// Ported from original_source/src/domain.rs::is_vowel, which lists alphabet
// indices {0, 7, 38, 24, 2} — positions that decode to exactly A, I, U, E, O
// under Chars.
func IsVowel(c rune) bool {
	switch c {
	case 'A', 'I', 'U', 'E', 'O':
		return true
	default:
		return false
	}
}

// IsNumber reports whether c is one of the ten digit characters.
//
// Ported from original_source/src/domain.rs::is_number.
func IsNumber(c rune) bool {
	return c >= '0' && c <= '9'
}

// IsSymbol reports whether c is one of the three punctuation characters
// '-', '.', '!'.
//
// Ported from original_source/src/domain.rs::is_symbol. The Rust source's
// index comments for this function are internally inconsistent with its own
// CHAR_CODES ordering (they swap which alphabet index is labelled '-' vs.
// '.'), but the *set* of flagged indices is exactly {'-', '.', '!'} either
// way, which is what this reimplementation checks directly.
func IsSymbol(c rune) bool {
	switch c {
	case '-', '.', '!':
		return true
	default:
		return false
	}
}

// IsAlpha reports whether c is an uppercase Latin letter A-Z.
//
// Ported from original_source/src/domain.rs::is_alpha. The Rust source
// enumerates alphabet indices rather than characters; decoding its index
// list against CHAR_CODES shows it selects exactly the 26 uppercase-letter
// entries, excluding the alphabet's three lowercase letters ('n', 'm', 'c',
// at indices 34/40/41) along with all digits and symbols.
func IsAlpha(c rune) bool {
	return c >= 'A' && c <= 'Z'
}
