// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jread

import (
	"testing"

	"github.com/creachadair/jread/internal/textbuf"
	"github.com/creachadair/jread/textconv"
)

func testInput(s string) *input {
	return newBufferInput([]byte(s), new(textconv.Converter))
}

func TestNextSkipsInsignificant(t *testing.T) {
	in := testInput(" \t\r\n:,{ \n}")

	if c := in.next(false); c != '{' {
		t.Errorf("next: got %q, want '{'", c)
	}
	if c := in.next(false); c != '}' {
		t.Errorf("next: got %q, want '}'", c)
	}
}

func TestNextVerbatim(t *testing.T) {
	in := testInput(" a")

	if c := in.next(true); c != ' ' {
		t.Errorf("verbatim next: got %q, want space", c)
	}
	if c := in.next(true); c != 'a' {
		t.Errorf("verbatim next: got %q, want 'a'", c)
	}
}

func TestPushback(t *testing.T) {
	in := testInput("ab")

	if c := in.next(true); c != 'a' {
		t.Fatalf("next: got %q, want 'a'", c)
	}
	if c := in.next(true); c != 'b' {
		t.Fatalf("next: got %q, want 'b'", c)
	}
	in.prev()
	if c := in.current(); c != 'a' {
		t.Errorf("current after prev: got %q, want 'a'", c)
	}
	if c := in.next(true); c != 'b' {
		t.Errorf("next after prev: got %q, want 'b'", c)
	}
}

func TestSeekToNextQuote(t *testing.T) {
	in := testInput(`   junk "key"`)

	in.seekToNextQuote()
	if c := in.current(); c != '"' {
		t.Errorf("current after seek: got %q, want quote", c)
	}
	// Seeking while on a quote does not advance.
	pos := in.pos
	in.seekToNextQuote()
	if in.pos != pos {
		t.Errorf("seek advanced from %d to %d on a quote", pos, in.pos)
	}
}

func TestPosition(t *testing.T) {
	in := testInput("abc")
	for i := 1; i <= 3; i++ {
		in.next(true)
		if in.pos != int64(i) {
			t.Errorf("pos after %d reads: got %d", i, in.pos)
		}
	}
}

func TestExhaustion(t *testing.T) {
	in := testInput("a")

	if c := in.next(true); c != 'a' {
		t.Fatalf("next: got %q, want 'a'", c)
	}
	// The first exhausted read is soft.
	if c := in.next(true); c != 0 || !in.eof {
		t.Fatalf("next at end: got %q (eof=%v), want NUL and eof", c, in.eof)
	}
	// Any request after that is fatal.
	defer func() {
		v := recover()
		re, ok := v.(*ReadError)
		if !ok {
			t.Fatalf("Panic value: got %v, want *ReadError", v)
		}
		if re.Msg != "unexpected end of input" {
			t.Errorf("Panic message: got %q", re.Msg)
		}
	}()
	in.next(true)
	t.Fatal("next after end did not panic")
}

func TestReadEscapeSimple(t *testing.T) {
	tests := []struct {
		input string // the characters after the backslash
		want  string
	}{
		{`n`, "\n"},
		{`t`, "\t"},
		{`"`, `"`},
		{`\`, `\`},
		{`/`, `/`},
		{`u0041`, "A"},
		{`u00e9`, "é"},
		{`u20ac`, "€"},
	}
	for _, test := range tests {
		in := testInput(test.input)
		text := textbuf.New()
		in.readEscape(text)
		if got := text.String(); got != test.want {
			t.Errorf("Escape \\%s: got %q, want %q", test.input, got, test.want)
		}
	}
}

func TestEscapeMarksNonASCII(t *testing.T) {
	in := testInput(`u0041`)
	text := textbuf.New()
	in.readEscape(text)
	if text.ASCII {
		t.Error("Escaped text is still marked ASCII")
	}
}
