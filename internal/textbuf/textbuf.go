// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package textbuf implements the growable text buffers shared by the
// components of the reader. A buffer accumulates UTF-8 text and tracks
// whether its contents are pure ASCII and whether the source text was
// quoted.
package textbuf

const (
	defaultCap = 1024

	// Capacity grows by steps of roughly this factor. A fixed geometric
	// factor bounds the number of reallocations during a read.
	growNum = 6
	growDen = 5
)

// A Buffer is a growable byte buffer holding UTF-8 text. The zero value is
// not ready for use; call New. A buffer never shrinks its capacity while in
// use; Reset retains storage for the next value.
type Buffer struct {
	buf []byte

	ASCII  bool // contents are entirely 7-bit characters
	Quoted bool // the source text was enclosed in quotation marks
}

// New constructs an empty buffer with the default capacity.
func New() *Buffer { return &Buffer{buf: make([]byte, 0, defaultCap), ASCII: true} }

// Len reports the number of bytes in b.
func (b *Buffer) Len() int { return len(b.buf) }

// Cap reports the number of bytes allocated for b.
func (b *Buffer) Cap() int { return cap(b.buf) }

// Bytes returns the contents of b. The slice aliases the buffer's storage
// and is only valid until the next modification of b.
func (b *Buffer) Bytes() []byte { return b.buf }

// String returns a copy of the contents of b as a string.
func (b *Buffer) String() string { return string(b.buf) }

// Reset truncates b to empty and restores its metadata flags, retaining the
// allocated storage.
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
	b.ASCII = true
	b.Quoted = false
}

// SetLen truncates b to n bytes. It panics if n exceeds the current length.
// Truncation does not recompute the ASCII flag; callers that shorten a
// buffer restore the flag they saved when they extended it.
func (b *Buffer) SetLen(n int) { b.buf = b.buf[:n] }

// AppendByte appends a single byte to b, growing the buffer as needed.
func (b *Buffer) AppendByte(c byte) {
	b.grow(1)
	b.buf = append(b.buf, c)
	if c > 0x7F {
		b.ASCII = false
	}
}

// Append appends the contents of p to b, growing the buffer as needed.
func (b *Buffer) Append(p []byte) {
	b.grow(len(p))
	b.buf = append(b.buf, p...)
	for _, c := range p {
		if c > 0x7F {
			b.ASCII = false
			break
		}
	}
}

// SetString replaces the contents of b with s.
func (b *Buffer) SetString(s string) {
	b.Reset()
	b.Append([]byte(s))
}

// MarkNonASCII records that b holds text that requires conversion even if
// every stored byte is 7-bit, such as text decoded from a Unicode escape.
func (b *Buffer) MarkNonASCII() { b.ASCII = false }

// grow ensures b has room for n more bytes. Capacity advances
// geometrically and never shrinks.
func (b *Buffer) grow(n int) {
	need := len(b.buf) + n
	if need <= cap(b.buf) {
		return
	}
	newCap := cap(b.buf)
	if newCap == 0 {
		newCap = defaultCap
	}
	for newCap < need {
		newCap = newCap*growNum/growDen + 1
	}
	nb := make([]byte, len(b.buf), newCap)
	copy(nb, b.buf)
	b.buf = nb
}
