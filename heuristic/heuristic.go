// Package heuristic provides an optional plausibility filter over
// candidate passwords, rejecting extensions that look implausible for a
// hand-typed Japanese game password: symbol runs, leading symbols, overlong
// digit runs, and vowel-adjacency patterns that rarely occur in natural
// Japanese romanization.
//
// Ported from original_source/src/pruning.rs. It is opt-in: the search DFS
// only consults it when asked to, since it can reject correct passwords
// that simply don't match the heuristic's assumptions about "natural"
// input.
package heuristic

import "github.com/tanzaku/yokaidouchuuki/alphabet"

// Validator reports whether appending word (already-encoded codes) after
// password (the codes chosen so far) keeps the password plausible.
type Validator func(password, word []byte) bool

// All returns the full set of validators pruning.rs applies, in the same
// order: first-character-not-symbol, no-consecutive-symbols, a bounded
// trailing digit run, and the natural-Japanese-adjacency checks.
func All() []Validator {
	return []Validator{
		ValidateFirstCharNotSymbol,
		ValidateNoConsecutiveSymbols,
		ValidateDigitRunBounded,
		ValidateNaturalJapanese,
	}
}

// IsValid reports whether every validator in All accepts the extension.
func IsValid(password, word []byte) bool {
	for _, v := range All() {
		if !v(password, word) {
			return false
		}
	}
	return true
}

func codeToChar(c byte) rune {
	return alphabet.CodeToChar(c)
}

// ValidateFirstCharNotSymbol rejects a password that would start with a
// symbol character.
func ValidateFirstCharNotSymbol(password, word []byte) bool {
	if len(password) != 0 {
		return true
	}
	return !alphabet.IsSymbol(codeToChar(word[0]))
}

// ValidateNoConsecutiveSymbols rejects two symbol characters in a row.
func ValidateNoConsecutiveSymbols(password, word []byte) bool {
	if len(password) == 0 {
		return true
	}
	c1 := codeToChar(password[len(password)-1])
	c2 := codeToChar(word[0])
	return !alphabet.IsSymbol(c1) || !alphabet.IsSymbol(c2)
}

// ValidateDigitRunBounded rejects a trailing run of 5 or more digits.
func ValidateDigitRunBounded(password, word []byte) bool {
	if len(word) != 1 || !alphabet.IsNumber(codeToChar(word[0])) {
		return true
	}
	run := 0
	for i := len(password) - 1; i >= 0 && alphabet.IsNumber(codeToChar(password[i])); i-- {
		run++
	}
	return run+1 <= 4
}

// ValidateNaturalJapanese rejects adjacency patterns that are implausible
// for hand-typed Japanese romanization: a consonant letter directly before
// a symbol or digit, a repeated letter, two consecutive non-vowels followed
// by a third, or four consecutive vowels.
func ValidateNaturalJapanese(password, word []byte) bool {
	if len(password) == 0 {
		return true
	}

	lastChar := codeToChar(password[len(password)-1])
	firstChar := codeToChar(word[0])

	if alphabet.IsAlpha(lastChar) {
		if !alphabet.IsVowel(lastChar) && alphabet.IsSymbol(firstChar) {
			return false
		}
		if !alphabet.IsVowel(lastChar) && alphabet.IsNumber(firstChar) {
			return false
		}
	}

	if !alphabet.IsAlpha(firstChar) {
		return true
	}

	if lastChar == firstChar {
		return false
	}

	if len(password) >= 2 {
		c0 := codeToChar(password[len(password)-2])
		c1 := lastChar
		c2 := firstChar
		if !alphabet.IsVowel(c0) && !alphabet.IsVowel(c1) && !alphabet.IsVowel(c2) {
			return false
		}
	}

	if len(password) >= 3 {
		c0 := codeToChar(password[len(password)-3])
		c1 := codeToChar(password[len(password)-2])
		c2 := lastChar
		c3 := firstChar
		if alphabet.IsVowel(c0) && alphabet.IsVowel(c1) && alphabet.IsVowel(c2) && alphabet.IsVowel(c3) {
			return false
		}
	}

	return true
}
