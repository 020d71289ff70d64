// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jread

import (
	"fmt"
	"io"
	"os"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"

	"github.com/creachadair/jread/internal/textbuf"
	"github.com/creachadair/jread/textconv"
)

// chunkSize is the read size for file sources. An in-memory buffer is
// treated as a single chunk of its full length.
const chunkSize = 1 << 20

// isSkippable reports whether c has no structural significance between
// elements and may be discarded by a non-verbatim read. Separators are
// included, so the grammar never sees ":" or "," directly.
func isSkippable(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', ':', ',', 0:
		return true
	}
	return false
}

// An input supplies the characters of one read operation. It refills its
// chunk from the file as needed, tracks the absolute position in the
// source, and supports exactly one character of pushback.
//
// Methods that require further input panic with a *ReadError when the
// source is exhausted; the panic is recovered by the enclosing read call.
type input struct {
	file  *os.File // nil when reading from a caller-supplied buffer
	block []byte   // backing storage for file chunks
	chunk []byte   // the valid bytes of the current chunk
	idx   int      // index of the current character in chunk
	pos   int64    // absolute position in the source
	eof   bool     // no more data can be read from the source

	// Progress reporting, active only when the total size is known.
	size     int64
	step     int
	lastPct  int
	progress func(pct int)

	conv *textconv.Converter
}

// openFileInput opens path for chunked reading.
func openFileInput(path string, conv *textconv.Converter) (*input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open file: %w", err)
	}
	in := &input{
		file:  f,
		block: make([]byte, chunkSize),
		idx:   -1,
		conv:  conv,
	}
	if fi, err := f.Stat(); err == nil {
		in.size = fi.Size()
	}
	return in, nil
}

// newBufferInput reads directly from data, which the caller must not
// modify for the duration of the read.
func newBufferInput(data []byte, conv *textconv.Converter) *input {
	return &input{chunk: data, idx: -1, conv: conv}
}

// close releases the source. It is safe to call multiple times.
func (in *input) close() {
	if in.file != nil {
		in.file.Close()
		in.file = nil
	}
	in.chunk = nil
	in.block = nil
}

// current returns the character at the cursor without advancing.
func (in *input) current() byte {
	if in.idx < 0 || in.idx >= len(in.chunk) {
		return 0
	}
	return in.chunk[in.idx]
}

// prev moves the cursor back one character. Only a single character of
// pushback is supported; the character counts again when re-read.
func (in *input) prev() { in.idx-- }

// next returns the next character of the input. In verbatim mode every
// character is returned; otherwise characters with no structural
// significance are skipped. The first time the source runs out, next
// returns NUL and marks the input exhausted; any request after that is a
// fatal unexpected end of input.
func (in *input) next(verbatim bool) byte {
	for {
		in.idx++
		if in.idx >= len(in.chunk) && !in.refill() {
			return 0
		}
		in.advance()
		c := in.chunk[in.idx]
		if verbatim || !isSkippable(c) {
			return c
		}
	}
}

// seekToNextQuote advances the cursor until the current character is a
// quotation mark, refilling as needed.
func (in *input) seekToNextQuote() {
	for {
		if in.idx >= 0 && in.idx < len(in.chunk) && in.chunk[in.idx] == '"' {
			return
		}
		in.idx++
		for in.idx >= len(in.chunk) {
			if !in.refill() {
				fail("unexpected end of input")
			}
		}
		in.advance()
	}
}

// refill loads the next chunk of the source and reports whether any data
// is available. Requesting data after the source was already exhausted is
// fatal: the grammar only refills when more content is required.
func (in *input) refill() bool {
	in.idx = 0
	if in.eof {
		fail("unexpected end of input")
	}
	if in.file == nil {
		// A memory buffer is a single chunk.
		in.chunk = nil
		in.eof = true
		return false
	}
	n, err := in.file.Read(in.block)
	if n > 0 {
		in.chunk = in.block[:n]
		return true
	}
	if err != nil && err != io.EOF {
		panic(&ReadError{Msg: "read failed: " + err.Error(), err: err})
	}
	in.chunk = nil
	in.eof = true
	return false
}

// advance counts one consumed character and reports progress when the
// position crosses a step threshold.
func (in *input) advance() {
	in.pos++
	if in.progress == nil || in.size <= 0 || in.step <= 0 {
		return
	}
	pct := int(in.pos * 100 / in.size)
	if pct > 100 {
		pct = 100 // re-read pushback characters can overcount
	}
	if pct >= in.lastPct+in.step {
		in.lastPct = pct - pct%in.step
		in.progress(in.lastPct)
	}
}

// finishProgress delivers the final 100% notification for a completed
// file-backed read.
func (in *input) finishProgress() {
	if in.progress != nil && in.size > 0 && in.lastPct < 100 {
		in.lastPct = 100
		in.progress(100)
	}
}

// readEscape decodes one escape sequence into text. The backslash has
// already been consumed.
func (in *input) readEscape(text *textbuf.Buffer) {
	in.escape(in.next(true), text)
}

func (in *input) escape(c byte, text *textbuf.Buffer) {
	switch c {
	case '"', '\\', '/':
		text.AppendByte(c)
	case 'b':
		text.AppendByte('\b')
	case 'f':
		text.AppendByte('\f')
	case 'n':
		text.AppendByte('\n')
	case 'r':
		text.AppendByte('\r')
	case 't':
		text.AppendByte('\t')
	case 'u':
		in.escapeUnicode(text)
	default:
		fail("invalid escape sequence '\\%c'", c)
	}
}

// readHex4 consumes the four hex digits of a \uXXXX escape and returns the
// UTF-16 code unit they encode.
func (in *input) readHex4() rune {
	var quad [4]byte
	for i := range quad {
		quad[i] = in.next(true)
	}
	v, err := textconv.ParseHex4(mem.B(quad[:]))
	if err != nil {
		panic(&ReadError{Msg: err.Error(), err: err})
	}
	return rune(v)
}

// escapeUnicode appends the UTF-8 encoding of a \uXXXX escape to text.
// A high surrogate immediately followed by a \uXXXX low surrogate combines
// into a single code point; an unpaired surrogate encodes as U+FFFD.
func (in *input) escapeUnicode(text *textbuf.Buffer) {
	u := in.readHex4()
	if !utf16.IsSurrogate(u) {
		text.Append(in.conv.CodePoint(u))
		text.MarkNonASCII()
		return
	}
	if u < 0xDC00 { // high half: try to complete the pair
		c := in.next(true)
		if c == '\\' {
			e := in.next(true)
			if e == 'u' {
				u2 := in.readHex4()
				if r := utf16.DecodeRune(u, u2); r != utf8.RuneError {
					text.Append(in.conv.CodePoint(r))
					text.MarkNonASCII()
					return
				}
				// Not a valid pair: both units are lone.
				text.Append(in.conv.CodePoint(utf8.RuneError))
				if !utf16.IsSurrogate(u2) {
					text.Append(in.conv.CodePoint(u2))
				} else {
					text.Append(in.conv.CodePoint(utf8.RuneError))
				}
				text.MarkNonASCII()
				return
			}
			// A different escape follows the lone surrogate.
			text.Append(in.conv.CodePoint(utf8.RuneError))
			text.MarkNonASCII()
			in.escape(e, text)
			return
		}
		in.prev() // not an escape; leave the character for the caller
	}
	text.Append(in.conv.CodePoint(utf8.RuneError))
	text.MarkNonASCII()
}

// fail aborts the read with a formatted *ReadError. The enclosing read
// call recovers the panic and enriches the error with position and path.
func fail(msg string, args ...any) {
	panic(&ReadError{Msg: fmt.Sprintf(msg, args...)})
}
