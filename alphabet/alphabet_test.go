package alphabet

import "testing"

func TestCodeCharRoundTrip(t *testing.T) {
	for i := 0; i < Len; i++ {
		c := Chars[i]
		code := Codes[i]
		if got := CharToCode(c); got != code {
			t.Errorf("CharToCode(%q) = %#x, want %#x", c, got, code)
		}
		if got := CodeToChar(code); got != c {
			t.Errorf("CodeToChar(%#x) = %q, want %q", code, got, c)
		}
	}
}

func TestCharToCodeUnknown(t *testing.T) {
	if got := CharToCode('?'); got != NoCode {
		t.Errorf("CharToCode('?') = %#x, want NoCode", got)
	}
	if InAlphabet('?') {
		t.Errorf("InAlphabet('?') = true, want false")
	}
}

func TestEncodeDecodeString(t *testing.T) {
	codes, err := EncodeString("KID")
	if err != nil {
		t.Fatalf("EncodeString(KID) error: %v", err)
	}
	if got := DecodeCodes(codes); got != "KID" {
		t.Errorf("DecodeCodes(EncodeString(KID)) = %q, want KID", got)
	}
}

func TestEncodeStringRejectsUnknown(t *testing.T) {
	if _, err := EncodeString("K?D"); err == nil {
		t.Fatal("EncodeString(K?D) should fail: '?' is not in the alphabet")
	}
}

func TestClassifications(t *testing.T) {
	vowels := map[rune]bool{'A': true, 'I': true, 'U': true, 'E': true, 'O': true}
	for i := 0; i < Len; i++ {
		c := Chars[i]
		if got, want := IsVowel(c), vowels[c]; got != want {
			t.Errorf("IsVowel(%q) = %v, want %v", c, got, want)
		}
	}

	if !IsNumber('5') || IsNumber('A') {
		t.Error("IsNumber classification wrong")
	}
	if !IsSymbol('-') || !IsSymbol('.') || !IsSymbol('!') || IsSymbol('A') {
		t.Error("IsSymbol classification wrong")
	}
	if !IsAlpha('G') || IsAlpha('m') || IsAlpha('n') || IsAlpha('c') || IsAlpha('5') {
		t.Error("IsAlpha classification wrong")
	}
}
