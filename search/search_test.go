package search

import (
	"context"
	"sync"
	"testing"

	"github.com/tanzaku/yokaidouchuuki/alphabet"
	"github.com/tanzaku/yokaidouchuuki/dictionary"
	"github.com/tanzaku/yokaidouchuuki/state"
	"github.com/tanzaku/yokaidouchuuki/target"
)

// TestEngineFindsKnownPassword checks invariant 7/8 and test vector T1: a
// full search against the KID target must recover "KID" itself.
func TestEngineFindsKnownPassword(t *testing.T) {
	eng := NewEngine(target.KID, 2, Options{Workers: 2})

	var mu sync.Mutex
	var found []string
	err := eng.Run(context.Background(), func(password string) {
		mu.Lock()
		found = append(found, password)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	ok := false
	for _, p := range found {
		if p == "KID" {
			ok = true
		}
	}
	if !ok {
		t.Fatalf("search against target.KID did not recover KID, found: %v", found)
	}
}

// TestEngineRespectsAllowedFunc checks that a fixed-character constraint at
// a given position excludes candidates violating it.
func TestEngineRespectsAllowedFunc(t *testing.T) {
	wantFirst := alphabet.CharToCode('X')
	eng := NewEngine(target.KID, 2, Options{
		Workers: 2,
		Allowed: func(position int, code byte) bool {
			if position == 0 {
				return code == wantFirst
			}
			return true
		},
	})

	var mu sync.Mutex
	var found []string
	err := eng.Run(context.Background(), func(password string) {
		mu.Lock()
		found = append(found, password)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, p := range found {
		if rune(p[0]) != 'X' {
			t.Fatalf("found password %q violating Allowed constraint", p)
		}
	}
}

// TestEngineCancellation checks that Run returns promptly once ctx is
// already canceled.
func TestEngineCancellation(t *testing.T) {
	eng := NewEngine(target.KID, 2, Options{Workers: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := eng.Run(ctx, func(string) {})
	if err == nil {
		t.Fatal("Run should report the cancellation error")
	}
}

// TestEngineReusesCachedTensors checks that a second Engine built against
// the same CacheDir reuses the persisted DP1/DP2 tensors (rather than
// rebuilding from scratch) and still recovers the known password.
func TestEngineReusesCachedTensors(t *testing.T) {
	dir := t.TempDir()

	first := NewEngine(target.KID, 2, Options{Workers: 2, CacheDir: dir})
	var mu sync.Mutex
	var found []string
	if err := first.Run(context.Background(), func(p string) {
		mu.Lock()
		found = append(found, p)
		mu.Unlock()
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	second := NewEngine(target.KID, 2, Options{Workers: 2, CacheDir: dir})
	found = nil
	if err := second.Run(context.Background(), func(p string) {
		mu.Lock()
		found = append(found, p)
		mu.Unlock()
	}); err != nil {
		t.Fatalf("Run (cached): %v", err)
	}

	ok := false
	for _, p := range found {
		if p == "KID" {
			ok = true
		}
	}
	if !ok {
		t.Fatalf("cached engine run did not recover KID, found: %v", found)
	}
}

// TestEngineDictionaryPrunesUnmatchableCandidates checks that extend's
// CouldExtendToWord call, not just the leaf-level IsConcatenationOfWords
// check, keeps a matching password reachable and excludes one that can no
// longer segment into dictionary words partway through the DFS.
func TestEngineDictionaryPrunesUnmatchableCandidates(t *testing.T) {
	dict, err := dictionary.New([]string{"KID"})
	if err != nil {
		t.Fatalf("dictionary.New: %v", err)
	}
	eng := NewEngine(target.KID, 2, Options{Workers: 2, Dictionary: dict})

	var mu sync.Mutex
	var found []string
	err = eng.Run(context.Background(), func(password string) {
		mu.Lock()
		found = append(found, password)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, p := range found {
		if !dict.IsConcatenationOfWords(p) {
			t.Fatalf("found password %q that cannot decompose into dictionary words", p)
		}
	}

	noMatch, err := dictionary.New([]string{"ZZZ"})
	if err != nil {
		t.Fatalf("dictionary.New: %v", err)
	}
	eng = NewEngine(target.KID, 2, Options{Workers: 2, Dictionary: noMatch})
	found = nil
	err = eng.Run(context.Background(), func(password string) {
		mu.Lock()
		found = append(found, password)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("search with an unmatchable dictionary should find nothing, found: %v", found)
	}
}

func TestGroupByPrefixOrdering(t *testing.T) {
	codes := func(s string) []byte {
		c, err := alphabet.EncodeString(s)
		if err != nil {
			t.Fatalf("EncodeString: %v", err)
		}
		return c
	}

	contexts := []searchContext{
		{state: state.Initial(), password: codes("VA")},
		{state: state.Initial(), password: codes("AA")},
		{state: state.Initial(), password: codes("HA")},
	}
	groups := groupByPrefix(contexts)
	if len(groups) != 3 {
		t.Fatalf("groupByPrefix produced %d groups, want 3", len(groups))
	}
	if groups[0].prefix != "AA" || groups[1].prefix != "HA" || groups[2].prefix != "VA" {
		t.Fatalf("groups not sorted in alphabet order: %+v", groups)
	}
}
