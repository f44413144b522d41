// Package backward inverts the forward checksum step (package state) to
// enumerate, for a fixed suffix length, every HashState/password-suffix
// pair that the forward step can reach that target state from, and offers
// binary-search lookup of those pairs by fingerprint.
//
// Ported from original_source/src/backward.rs. calc_prev_f4/f5 invert the
// CRC feedback register via two precomputed 256-entry lookup tables built
// by running the forward step forward from every possible f5 seed;
// calc_prev_f7/f8/fb invert their accumulators directly by subtraction and
// calc_prev_f9 by xor;
// calc_prev_fa returns up to two candidates because the rotate-through-
// carry step is not injective.
package backward

import (
	"sort"

	"github.com/tanzaku/yokaidouchuuki/state"
)

// DefaultDepth is the suffix length cmd/yokaidouchuuki builds the backward
// table to when the caller doesn't override it, chosen so that DP1/DP2
// prune the forward DFS down to a tractable width for the longest hard-coded
// target (14 characters). Each backward level multiplies the node count by
// up to 84 (42 characters, at most two predecessors each).
const DefaultDepth = 6

var (
	prevF4 [256]byte
	prevF5 [256]byte
)

func init() {
	for j := 0; j < 256; j++ {
		m := state.HashState{F5: byte(j)}
		next := state.Forward(m, 0)
		prevF4[j] = next.F5
		prevF5[state.BitReverse(next.F4)] = byte(j)
	}
}

func calcPrevF4(f5, prevF5Val byte) byte {
	return prevF4[prevF5Val] ^ f5
}

func calcPrevF5(f4, c byte) byte {
	return prevF5[c^state.BitReverse(f4)]
}

// calcPrevF7 returns the previous f7 and the carry that the forward adc
// produced going from prevF7 to f7.
func calcPrevF7(f7, f4, c byte) (prevF7, carry byte) {
	p := f7 - c
	if f4 >= 0xE5 {
		p = p - 1
		if p >= f7 {
			return p, 1
		}
		return p, 0
	}
	if p > f7 {
		return p, 1
	}
	return p, 0
}

func calcPrevF8(f8, f5, carryF7 byte) (prevF8, carry byte) {
	p := f8 - f5
	if carryF7 == 1 {
		p = p - 1
		if p >= f8 {
			return p, 1
		}
		return p, 0
	}
	if p > f8 {
		return p, 1
	}
	return p, 0
}

func calcPrevF9(f9, c byte) byte {
	return f9 ^ c
}

// faCandidate is one candidate (prevFa, carry) pair for inverting fa; there
// are 0, 1, or 2 depending on how many rotate-then-add preimages are
// consistent with carryF8.
type faCandidate struct {
	PrevFa byte
	Carry  byte
}

func calcPrevFa(fa, c, carryF8 byte) []faCandidate {
	candidates := make([]faCandidate, 0, 2)

	rorPrevFa := fa - c
	if rorPrevFa>>7 == carryF8 {
		carry := byte(0)
		if rorPrevFa > fa {
			carry = 1
		}
		candidates = append(candidates, faCandidate{PrevFa: rorPrevFa << 1, Carry: carry})
	}

	rorPrevFa2 := fa - c - 1
	if rorPrevFa2>>7 == carryF8 {
		carry := byte(0)
		if rorPrevFa2 >= fa {
			carry = 1
		}
		candidates = append(candidates, faCandidate{PrevFa: rorPrevFa2<<1 | 1, Carry: carry})
	}

	return candidates
}

func calcPrevFb(fb, c, carryFa byte) byte {
	return fb - carryFa - byte(popcount(c))
}

func popcount(b byte) int {
	n := 0
	for b != 0 {
		n += int(b & 1)
		b >>= 1
	}
	return n
}

// PrevStates returns every HashState that Forward(prev, c) == s for, given
// the code c. There may be zero, one, or two results because the fa
// inversion is not injective.
func PrevStates(s state.HashState, c byte) []state.HashState {
	prevF5Val := calcPrevF5(s.F4, c)
	prevF4Val := calcPrevF4(s.F5, prevF5Val)

	prevF7Val, carryF7 := calcPrevF7(s.F7, s.F4, c)
	prevF8Val, carryF8 := calcPrevF8(s.F8, s.F5, carryF7)
	prevF9Val := calcPrevF9(s.F9, c)

	faCandidates := calcPrevFa(s.Fa, c, carryF8)

	out := make([]state.HashState, 0, len(faCandidates))
	for _, cand := range faCandidates {
		out = append(out, state.HashState{
			F4: prevF4Val,
			F5: prevF5Val,
			F7: prevF7Val,
			F8: prevF8Val,
			F9: prevF9Val,
			Fa: cand.PrevFa,
			Fb: calcPrevFb(s.Fb, c, cand.Carry),
		})
	}
	return out
}

// Node pairs a HashState with the password suffix (of a fixed length, in
// forward order) whose forward application from that state reaches the
// table's target state.
type Node struct {
	State    state.HashState
	Password []byte
}

// Table is the sorted-by-fingerprint set of backward nodes for a fixed
// suffix length, supporting lookup of every suffix reaching a given state.
type Table struct {
	nodes []Node
	depth int
}

// Build enumerates every (state, suffix) pair of length depth whose forward
// application from state reaches target, by running the inversion backward
// one character position at a time starting from target. alphabetCodes is
// the full set of character codes to try at each position.
//
// The suffix positions are filled from the last position down to the
// first, one per level, matching the order the original implementation's
// queue expansion assigns password[i] for i counting down from
// depth-1 to 0.
func Build(target state.HashState, depth int, alphabetCodes []byte) *Table {
	queue := []Node{{State: target, Password: make([]byte, depth)}}

	for i := depth - 1; i >= 0; i-- {
		queue = buildLevel(queue, i, alphabetCodes)
	}

	sort.Slice(queue, func(a, b int) bool {
		return queue[a].State.Fingerprint() < queue[b].State.Fingerprint()
	})

	return &Table{nodes: queue, depth: depth}
}

// buildLevel expands every node in queue by one backward step for every
// character code, writing the resulting character into position i of a
// copy of each node's password array.
func buildLevel(queue []Node, i int, alphabetCodes []byte) []Node {
	next := make([]Node, 0, len(queue)*len(alphabetCodes))
	for _, c := range alphabetCodes {
		for _, node := range queue {
			for _, prev := range PrevStates(node.State, c) {
				password := make([]byte, len(node.Password))
				copy(password, node.Password)
				password[i] = c
				next = append(next, Node{State: prev, Password: password})
			}
		}
	}
	return next
}

// Depth returns the fixed suffix length every node in the table was built
// with.
func (t *Table) Depth() int {
	return t.depth
}

// Nodes returns the table's nodes, sorted by fingerprint. Callers (package
// reach) must treat the returned slice as read-only.
func (t *Table) Nodes() []Node {
	return t.nodes
}

// Len returns the number of nodes in the table.
func (t *Table) Len() int {
	return len(t.nodes)
}

// ForEachSuffix calls f once for every suffix of length Depth() whose
// forward application from s reaches the table's target state: it
// binary-searches for the first node with s's fingerprint and scans forward
// across every node with an equal key.
func (t *Table) ForEachSuffix(s state.HashState, f func(suffix []byte)) {
	key := s.Fingerprint()
	i := sort.Search(len(t.nodes), func(i int) bool {
		return t.nodes[i].State.Fingerprint() >= key
	})
	for j := i; j < len(t.nodes) && t.nodes[j].State.Fingerprint() == key; j++ {
		f(t.nodes[j].Password)
	}
}
