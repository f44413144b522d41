package dictionary

import "testing"

func TestIsConcatenationOfWords(t *testing.T) {
	c, err := New([]string{"KID", "HERO", "CAT"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !c.IsConcatenationOfWords("KIDCAT") {
		t.Fatal("KIDCAT should split as KID+CAT")
	}
	if !c.IsConcatenationOfWords("KID") {
		t.Fatal("KID should be a single dictionary word")
	}
	if c.IsConcatenationOfWords("KIDDO") {
		t.Fatal("KIDDO should not decompose into dictionary words")
	}
	if !c.IsConcatenationOfWords("") {
		t.Fatal("empty string trivially decomposes")
	}
}

func TestMightContainWord(t *testing.T) {
	c, err := New([]string{"HERO"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !c.MightContainWord("SUPERHERO") {
		t.Fatal("SUPERHERO contains HERO as a substring")
	}
	if c.MightContainWord("VILLAIN") {
		t.Fatal("VILLAIN does not contain HERO")
	}
}

func TestNewRejectsEmptyWordList(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("New(nil) should fail: no words to build an automaton from")
	}
}

func TestCouldExtendToWord(t *testing.T) {
	c, err := New([]string{"HENTAI"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !c.CouldExtendToWord("HEN") {
		t.Fatal("HEN is a prefix of HENTAI")
	}
	if c.CouldExtendToWord("ZZZ") {
		t.Fatal("ZZZ is not a prefix of any word")
	}
}
