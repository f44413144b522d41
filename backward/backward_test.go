package backward

import (
	"math/rand"
	"testing"

	"github.com/tanzaku/yokaidouchuuki/alphabet"
	"github.com/tanzaku/yokaidouchuuki/state"
)

// TestPrevStatesInvertForward checks invariant 2: every candidate PrevStates
// returns must forward-step to the original state under the same code.
func TestPrevStatesInvertForward(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 20000; i++ {
		s := state.HashState{
			F4: byte(rng.Intn(256)), F5: byte(rng.Intn(256)),
			F7: byte(rng.Intn(256)), F8: byte(rng.Intn(256)),
			F9: byte(rng.Intn(256)), Fa: byte(rng.Intn(256)),
			Fb: byte(rng.Intn(256)),
		}
		c := alphabet.Codes[rng.Intn(alphabet.Len)]

		for _, prev := range PrevStates(s, c) {
			if got := state.Forward(prev, c); got != s {
				t.Fatalf("Forward(PrevStates(%+v, %#x)=%+v, %#x) = %+v, want %+v", s, c, prev, c, got, s)
			}
		}
	}
}

// TestPrevStatesFindsForwardOrigin checks that, starting from a known
// state, applying Forward and then searching PrevStates of the result for
// the original state always succeeds: the real predecessor is always among
// the returned candidates.
func TestPrevStatesFindsForwardOrigin(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 20000; i++ {
		s := state.HashState{
			F4: byte(rng.Intn(256)), F5: byte(rng.Intn(256)),
			F7: byte(rng.Intn(256)), F8: byte(rng.Intn(256)),
			F9: byte(rng.Intn(256)), Fa: byte(rng.Intn(256)),
			Fb: byte(rng.Intn(256)),
		}
		c := alphabet.Codes[rng.Intn(alphabet.Len)]
		next := state.Forward(s, c)

		found := false
		for _, prev := range PrevStates(next, c) {
			if prev == s {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("PrevStates(Forward(%+v, %#x), %#x) did not contain %+v", s, c, c, s)
		}
	}
}

// TestBuildRoundTrip checks that a known password's final state is found by
// the backward table built for its length, and that the recovered suffix
// matches.
func TestBuildRoundTrip(t *testing.T) {
	password := "KID"
	codes, err := alphabet.EncodeString(password)
	if err != nil {
		t.Fatalf("EncodeString: %v", err)
	}

	target := state.ForwardCodes(state.Initial(), codes)

	table := Build(target, len(codes), alphabet.Codes[:])
	if table.Len() == 0 {
		t.Fatal("Build produced an empty table")
	}

	forwardFromStart := state.Initial()
	var found []byte
	table.ForEachSuffix(forwardFromStart, func(suffix []byte) {
		if found == nil {
			found = append([]byte(nil), suffix...)
		}
	})
	// The backward table is built from target backward to the start state
	// (Initial()), so a hit against Initial()'s fingerprint must reproduce
	// codes exactly somewhere among the matches.
	matched := false
	table.ForEachSuffix(state.Initial(), func(suffix []byte) {
		if string(suffix) == string(codes) {
			matched = true
		}
	})
	if !matched {
		t.Fatalf("backward table for %q did not recover the original suffix", password)
	}
}

func TestTableDepth(t *testing.T) {
	target := state.Initial()
	table := Build(target, 2, alphabet.Codes[:4])
	if table.Depth() != 2 {
		t.Fatalf("Depth() = %d, want 2", table.Depth())
	}
}
