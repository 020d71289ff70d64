// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package textbuf_test

import (
	"strings"
	"testing"

	"github.com/creachadair/jread/internal/textbuf"
)

func TestBasic(t *testing.T) {
	b := textbuf.New()
	if b.Len() != 0 || !b.ASCII || b.Quoted {
		t.Fatalf("New buffer: len=%d ascii=%v quoted=%v", b.Len(), b.ASCII, b.Quoted)
	}

	b.AppendByte('h')
	b.Append([]byte("ello"))
	if got := b.String(); got != "hello" {
		t.Errorf("Contents: got %q, want hello", got)
	}
	if !b.ASCII {
		t.Error("ASCII flag cleared by ASCII input")
	}

	b.Append([]byte("é"))
	if b.ASCII {
		t.Error("ASCII flag set after non-ASCII append")
	}

	b.Reset()
	if b.Len() != 0 || !b.ASCII || b.Quoted {
		t.Errorf("After Reset: len=%d ascii=%v quoted=%v", b.Len(), b.ASCII, b.Quoted)
	}
}

func TestSetLen(t *testing.T) {
	b := textbuf.New()
	b.Append([]byte("{users[{id"))
	b.SetLen(8)
	if got := b.String(); got != "{users[{" {
		t.Errorf("After SetLen(8): got %q", got)
	}
	b.Append([]byte("name"))
	if got := b.String(); got != "{users[{name" {
		t.Errorf("After re-extend: got %q", got)
	}
}

func TestSetString(t *testing.T) {
	b := textbuf.New()
	b.Quoted = true
	b.SetString("true")
	if got := b.String(); got != "true" {
		t.Errorf("Contents: got %q, want true", got)
	}
	if b.Quoted {
		t.Error("SetString retained the quoted flag")
	}
}

func TestGrowth(t *testing.T) {
	b := textbuf.New()
	start := b.Cap()

	// Fill past the initial capacity and check that capacity advanced
	// geometrically rather than per byte.
	var grows int
	prev := b.Cap()
	chunk := []byte(strings.Repeat("x", 100))
	for b.Len() < start*4 {
		b.Append(chunk)
		if c := b.Cap(); c > prev {
			grows++
			prev = c
		}
	}
	if grows == 0 {
		t.Fatal("Capacity never grew")
	}
	if grows > 12 {
		t.Errorf("Capacity grew %d times, want geometric growth", grows)
	}
	if b.Cap() < b.Len() {
		t.Errorf("Capacity %d less than length %d", b.Cap(), b.Len())
	}
}
