// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jread

import (
	"github.com/creachadair/jread/internal/textbuf"
)

// arrayItem records the value of the item currently being parsed inside an
// array. Scalar items (string, number, boolean, null) set a value; object
// and array items leave it cleared.
type arrayItem struct {
	val     *textbuf.Buffer
	isValue bool
}

func (a *arrayItem) set(v *textbuf.Buffer) { a.val = v; a.isValue = true }
func (a *arrayItem) clear()                { a.val = nil; a.isValue = false }

// value returns the scalar value of the item, or nil for null values and
// for items that are objects or arrays.
func (a *arrayItem) value() *textbuf.Buffer {
	if a.isValue {
		return a.val
	}
	return nil
}

// extendPath truncates the path to pathLen and appends the pending element
// name, returning the new length. The path records ancestor names and open
// brackets with no separators; truncating back to pathLen undoes the push.
func (r *Reader) extendPath(pathLen int) int {
	r.path.SetLen(pathLen)
	if r.elemName.Len() > 0 {
		r.path.Append(r.elemName.Bytes())
		if !r.elemName.ASCII {
			r.path.MarkNonASCII()
		}
		pathLen = r.path.Len()
	}
	return pathLen
}

// parseValue parses one value of any type. pathLen is the path length at
// entry; item is non-nil when the value is an element of an array, in
// which case the scalar result is recorded there instead of raising a pair
// event. The path's ASCII flag is restored before returning, since nested
// parsing may alter it transiently.
func (r *Reader) parseValue(pathLen int, item *arrayItem) {
	namePos := pathLen
	nameLen := r.elemName.Len()
	wasASCII := r.path.ASCII

	pathLen = r.extendPath(pathLen)

	switch c := r.in.current(); {
	case c == '{':
		r.parseObject(pathLen, namePos, nameLen)
	case c == '[':
		r.parseArray(pathLen, namePos, nameLen)
	default:
		value := r.elemValue
		switch {
		case c == '"':
			r.parseString(r.elemValue)
		case c >= '0' && c <= '9' || c == '-':
			r.parseNumber(r.elemValue)
		case c == 't':
			r.parseLiteral("true")
			r.elemValue.SetString("true")
		case c == 'f':
			r.parseLiteral("false")
			r.elemValue.SetString("false")
		case c == 'n':
			r.parseLiteral("null")
			value = nil
		default:
			if r.in.eof {
				fail("unexpected end of input")
			}
			fail("unexpected character %q", c)
		}
		if item == nil {
			r.notify(&r.onPair, namePos, nameLen, pathLen, value)
		} else {
			item.set(value)
		}
	}
	r.path.ASCII = wasASCII
}

// parseObject parses the members of an object. The opening brace is the
// current character at entry; the closing brace has been consumed on exit.
func (r *Reader) parseObject(pathLen, namePos, nameLen int) {
	r.path.AppendByte('{')
	pathLen++

	r.notify(&r.onObjectBegin, namePos, nameLen, pathLen, nil)

	for r.in.next(false) != '}' {
		r.parseString(r.elemName)
		r.in.next(false) // the separator is skipped; lands on the value
		r.parseValue(pathLen, nil)
	}
	r.elemName.Reset()
	r.elemValue.Reset()
	r.notify(&r.onObjectEnd, namePos, nameLen, pathLen, nil)
}

// parseArray parses the elements of an array. The opening bracket is the
// current character at entry; the closing bracket has been consumed on
// exit. Each item raises an array-item event once its value, if any, is
// fully known.
func (r *Reader) parseArray(pathLen, namePos, nameLen int) {
	r.path.AppendByte('[')
	pathLen++

	r.notify(&r.onArrayBegin, namePos, nameLen, pathLen, nil)

	for r.in.next(false) != ']' {
		r.elemName.Reset()
		r.elemValue.Reset()
		r.item.clear()
		r.parseValue(pathLen, &r.item)
		r.notify(&r.onArrayItem, namePos, nameLen, pathLen, r.item.value())
	}
	r.elemName.Reset()
	r.elemValue.Reset()
	r.item.clear()
	r.notify(&r.onArrayEnd, namePos, nameLen, pathLen, nil)
}

// parseString reads a quoted string into text, decoding escape sequences.
// The cursor may be before the opening quote; it is on the closing quote
// at exit.
func (r *Reader) parseString(text *textbuf.Buffer) {
	text.Reset()
	text.Quoted = true

	r.in.seekToNextQuote()
	for {
		c := r.in.next(true)
		if c == '"' { // escapes are consumed whole, so this quote is real
			return
		}
		if c == '\\' {
			r.in.readEscape(text)
		} else {
			text.AppendByte(c)
		}
	}
}

// parseNumber reads the maximal run of numeric characters into number and
// pushes back the terminator for the caller.
func (r *Reader) parseNumber(number *textbuf.Buffer) {
	number.Reset()
	for isNumeric(r.in.current()) {
		number.AppendByte(r.in.current())
		r.in.next(true)
	}
	r.in.prev()
}

// isNumeric reports whether c can appear in the lexical form of a number.
func isNumeric(c byte) bool {
	return c >= '0' && c <= '9' || c == '.' || c == '+' || c == '-' || c == 'e' || c == 'E'
}

// parseLiteral matches want character by character against the input,
// starting with the current character.
func (r *Reader) parseLiteral(want string) {
	if c := r.in.current(); c != want[0] {
		fail("unexpected character %q", c)
	}
	for i := 1; i < len(want); i++ {
		if c := r.in.next(true); c != want[i] {
			fail("unexpected character %q", c)
		}
	}
}
