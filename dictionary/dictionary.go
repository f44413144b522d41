// Package dictionary implements the word-concatenation search variant:
// restricting candidate passwords to those built by concatenating entries
// from a word list, rather than searching the full unconstrained alphabet
// space.
//
// Ported from the intent of original_source/src/dict.rs (the commented-out
// word-concatenation brute force it sketches), but built on
// github.com/coregx/ahocorasick the way
// coregx-coregex/meta/compile.go uses it: as a cheap multi-pattern
// prefilter ahead of an authoritative check, rather than a hand-rolled
// substring scan.
package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/coregx/ahocorasick"

	"github.com/tanzaku/yokaidouchuuki/alphabet"
)

// Constraint recognizes candidate passwords that can be fully partitioned
// into a sequence of dictionary words, back to back with no gaps.
type Constraint struct {
	automaton  *ahocorasick.Automaton
	words      map[string]bool
	maxWordLen int
}

// New builds a Constraint from a word list. Empty entries are ignored.
func New(words []string) (*Constraint, error) {
	builder := ahocorasick.NewBuilder()
	set := make(map[string]bool, len(words))
	maxLen := 0
	count := 0

	for _, w := range words {
		if w == "" || set[w] {
			continue
		}
		for _, c := range w {
			if !alphabet.InAlphabet(c) {
				return nil, fmt.Errorf("dictionary: word %q contains character %q outside the 42-character alphabet", w, c)
			}
		}
		set[w] = true
		builder.AddPattern([]byte(w))
		if len(w) > maxLen {
			maxLen = len(w)
		}
		count++
	}

	if count == 0 {
		return nil, fmt.Errorf("dictionary: word list is empty")
	}

	automaton, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("dictionary: building automaton: %w", err)
	}

	return &Constraint{automaton: automaton, words: set, maxWordLen: maxLen}, nil
}

// Load reads one word per line from r, skipping blank lines and lines
// starting with '#' (a comment marker).
func Load(r io.Reader) (*Constraint, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dictionary: reading word list: %w", err)
	}
	return New(words)
}

// MightContainWord reports whether candidate contains any dictionary word
// as a substring. It is a fast, possibly-false-positive prefilter:
// IsConcatenationOfWords always calls this first before paying for the
// segmentation check.
func (c *Constraint) MightContainWord(candidate string) bool {
	return c.automaton.IsMatch([]byte(candidate))
}

// IsConcatenationOfWords reports whether candidate can be split into one
// or more consecutive substrings, each an exact dictionary word, covering
// candidate with no leftover characters. The empty string trivially
// satisfies this.
func (c *Constraint) IsConcatenationOfWords(candidate string) bool {
	if candidate == "" {
		return true
	}
	if !c.MightContainWord(candidate) {
		return false
	}

	n := len(candidate)
	reachable := make([]bool, n+1)
	reachable[0] = true
	for i := 0; i < n; i++ {
		if !reachable[i] {
			continue
		}
		maxL := c.maxWordLen
		if i+maxL > n {
			maxL = n - i
		}
		for l := 1; l <= maxL; l++ {
			if c.words[candidate[i:i+l]] {
				reachable[i+l] = true
			}
		}
	}
	return reachable[n]
}

// CouldExtendToWord reports whether candidate could still grow into a full
// concatenation of dictionary words: some prefix of candidate exactly
// partitions into complete words (the same reachability the DP in
// IsConcatenationOfWords computes), and the unmatched tail since the last
// such boundary is itself a prefix of at least one dictionary word (or is
// empty). Engine.extend calls this after appending each character, pruning
// a candidate as soon as no dictionary word could possibly continue from
// its current unmatched tail.
func (c *Constraint) CouldExtendToWord(candidate string) bool {
	n := len(candidate)
	reachable := make([]bool, n+1)
	reachable[0] = true
	for i := 0; i < n; i++ {
		if !reachable[i] {
			continue
		}
		maxL := c.maxWordLen
		if i+maxL > n {
			maxL = n - i
		}
		for l := 1; l <= maxL; l++ {
			if c.words[candidate[i:i+l]] {
				reachable[i+l] = true
			}
		}
	}

	for i := n; i >= 0; i-- {
		if !reachable[i] {
			continue
		}
		tail := candidate[i:]
		if tail == "" {
			return true
		}
		for w := range c.words {
			if strings.HasPrefix(w, tail) {
				return true
			}
		}
	}
	return false
}
