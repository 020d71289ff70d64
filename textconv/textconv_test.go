// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package textconv_test

import (
	"testing"

	"go4.org/mem"

	"github.com/creachadair/jread/textconv"
)

func TestWideRoundTrip(t *testing.T) {
	tests := []string{"", "plain", "café", "日本語", "mixed é 日 z", "😀"}

	var c textconv.Converter
	for _, test := range tests {
		wide, ok := c.UTF8ToWide(mem.S(test))
		if !ok {
			t.Errorf("UTF8ToWide(%q) failed", test)
			continue
		}
		// The result aliases converter scratch; copy before converting back.
		wide = append([]rune(nil), wide...)
		utf8, ok := c.WideToUTF8(wide)
		if !ok {
			t.Errorf("WideToUTF8(%q) failed", test)
			continue
		}
		if got := string(utf8); got != test {
			t.Errorf("Round trip: got %q, want %q", got, test)
		}
	}
}

func TestWideInvalid(t *testing.T) {
	var c textconv.Converter
	if _, ok := c.UTF8ToWide(mem.S("\xff\xfe")); ok {
		t.Error("UTF8ToWide accepted invalid UTF-8")
	}
	if _, ok := c.WideToUTF8([]rune{0xD800}); ok {
		t.Error("WideToUTF8 accepted an unpaired surrogate")
	}
}

func TestMultiByte(t *testing.T) {
	enc, err := textconv.Lookup("ISO-8859-1")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	var c textconv.Converter
	out, ok := c.UTF8ToMultiByte(mem.S("café"), enc)
	if !ok {
		t.Fatal("UTF8ToMultiByte failed")
	}
	if got := string(out); got != "caf\xe9" {
		t.Errorf("Latin-1: got %q, want caf\\xe9", got)
	}

	back, ok := c.MultiByteToUTF8(mem.S("caf\xe9"), enc)
	if !ok {
		t.Fatal("MultiByteToUTF8 failed")
	}
	if got := string(back); got != "café" {
		t.Errorf("UTF-8: got %q, want café", got)
	}

	// Characters outside the charset cannot be encoded.
	if _, ok := c.UTF8ToMultiByte(mem.S("日本"), enc); ok {
		t.Error("UTF8ToMultiByte encoded an unmappable character")
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := textconv.Lookup("no-such-charset"); err == nil {
		t.Error("Lookup accepted an unknown name")
	}
}

func TestCodePoint(t *testing.T) {
	tests := []struct {
		r    rune
		want string
	}{
		{'A', "A"},
		{0xE9, "é"},
		{0x20AC, "€"},
		{0x1F600, "😀"},
		{0xD800, "�"}, // unpaired surrogate
	}
	var c textconv.Converter
	for _, test := range tests {
		if got := string(c.CodePoint(test.r)); got != test.want {
			t.Errorf("CodePoint(%#x): got %q, want %q", test.r, got, test.want)
		}
	}
}

func TestParseHex4(t *testing.T) {
	tests := []struct {
		input string
		want  uint16
		ok    bool
	}{
		{"0000", 0, true},
		{"0041", 0x41, true},
		{"20ac", 0x20AC, true},
		{"FFFF", 0xFFFF, true},
		{"00e9", 0xE9, true},
		{"00zz", 0, false},
		{"g000", 0, false},
	}
	for _, test := range tests {
		got, err := textconv.ParseHex4(mem.S(test.input))
		if test.ok && err != nil {
			t.Errorf("ParseHex4(%q): unexpected error %v", test.input, err)
		} else if !test.ok && err == nil {
			t.Errorf("ParseHex4(%q): got %04x, want error", test.input, got)
		} else if test.ok && got != test.want {
			t.Errorf("ParseHex4(%q): got %04x, want %04x", test.input, got, test.want)
		}
	}
}
