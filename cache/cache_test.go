package cache

import (
	"os"
	"testing"

	"github.com/tanzaku/yokaidouchuuki/bitset"
	"github.com/tanzaku/yokaidouchuuki/state"
)

func testKey() Key {
	return Key{Kind: "dp1", Target: state.HashState{F4: 1, F5: 2, Fb: 3}, TargetLen: 11, BackwardDepth: 3}
}

func TestStoreLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	var cells [3]bitset.BitSet256
	cells[0].Set(5)
	cells[1].Set(200)

	if err := Store(dir, testKey(), cells[:]); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, ok, err := Load(dir, testKey())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatal("Load: expected cache hit")
	}
	if len(got) != len(cells) {
		t.Fatalf("Load: got %d cells, want %d", len(got), len(cells))
	}
	for i := range cells {
		if got[i] != cells[i] {
			t.Fatalf("cell %d mismatch: got %+v, want %+v", i, got[i], cells[i])
		}
	}
}

func TestLoadMissReturnsFalse(t *testing.T) {
	dir := t.TempDir()
	_, ok, err := Load(dir, testKey())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Fatal("Load: expected cache miss for nonexistent key")
	}
}

func TestLoadDetectsCorruption(t *testing.T) {
	dir := t.TempDir()
	var cells [1]bitset.BitSet256
	if err := Store(dir, testKey(), cells[:]); err != nil {
		t.Fatalf("Store: %v", err)
	}

	path := dir + "/" + testKey().fileName()
	if err := os.Truncate(path, 4); err != nil {
		t.Fatalf("Truncate: %v", err)
	}

	_, _, err := Load(dir, testKey())
	if err == nil {
		t.Fatal("Load should fail on truncated file")
	}
}

func TestDifferentKeysDifferentFiles(t *testing.T) {
	a := testKey()
	b := testKey()
	b.TargetLen = 14
	if a.fileName() == b.fileName() {
		t.Fatal("different keys should produce different file names")
	}
}
