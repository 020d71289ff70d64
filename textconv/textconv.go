// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package textconv converts text among the representations a reader
// subscriber can request: UTF-8, wide (code points), and a legacy
// byte-oriented character set selected by name.
package textconv

import (
	"fmt"
	"unicode/utf8"

	"go4.org/mem"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// A Converter transcodes text between representations. The zero value is
// ready for use. Scratch storage is reused across calls and grows as
// needed; results alias that storage and are only valid until the next call
// on the same converter. A Converter is not safe for concurrent use.
type Converter struct {
	wide   []rune
	narrow []byte
	aux    []byte
	cp     [utf8.UTFMax]byte
}

// Lookup resolves an IANA character set name, such as "ISO-8859-1" or
// "GB18030", to the encoding used for locale narrow delivery.
func Lookup(name string) (encoding.Encoding, error) {
	e, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("character set %q: %w", name, err)
	} else if e == nil {
		return nil, fmt.Errorf("character set %q is not supported", name)
	}
	return e, nil
}

// UTF8ToWide decodes UTF-8 text into code points. It reports false if src
// is not valid UTF-8. An empty input yields an empty result.
func (c *Converter) UTF8ToWide(src mem.RO) ([]rune, bool) {
	c.wide = c.wide[:0]
	for i := 0; i < src.Len(); {
		r, n := mem.DecodeRune(src.SliceFrom(i))
		if r == utf8.RuneError && n <= 1 {
			return nil, false
		}
		c.wide = append(c.wide, r)
		i += n
	}
	return c.wide, true
}

// WideToUTF8 encodes code points as UTF-8 bytes. It reports false if any
// element is not a valid code point. An empty input yields an empty result.
func (c *Converter) WideToUTF8(wide []rune) ([]byte, bool) {
	c.narrow = c.narrow[:0]
	for _, r := range wide {
		if !utf8.ValidRune(r) {
			return nil, false
		}
		c.narrow = utf8.AppendRune(c.narrow, r)
	}
	return c.narrow, true
}

// UTF8ToMultiByte converts UTF-8 text to the byte-oriented character set
// enc. It reports false if the text cannot be represented in enc.
func (c *Converter) UTF8ToMultiByte(src mem.RO, enc encoding.Encoding) ([]byte, bool) {
	c.aux = mem.Append(c.aux[:0], src)
	out, _, err := transform.Append(enc.NewEncoder(), c.narrow[:0], c.aux)
	if err != nil {
		return nil, false
	}
	c.narrow = out
	return c.narrow, true
}

// MultiByteToUTF8 converts text in the byte-oriented character set enc to
// UTF-8. It reports false if the input cannot be decoded.
func (c *Converter) MultiByteToUTF8(src mem.RO, enc encoding.Encoding) ([]byte, bool) {
	c.aux = mem.Append(c.aux[:0], src)
	out, _, err := transform.Append(enc.NewDecoder(), c.narrow[:0], c.aux)
	if err != nil {
		return nil, false
	}
	c.narrow = out
	return c.narrow, true
}

// CodePoint encodes a single code point as UTF-8. An invalid code point,
// including an unpaired surrogate, encodes as the replacement character.
// The result is valid until the next call of CodePoint.
func (c *Converter) CodePoint(r rune) []byte {
	n := utf8.EncodeRune(c.cp[:], r)
	return c.cp[:n]
}

// ParseHex4 decodes exactly four hexadecimal digits into a UTF-16 code
// unit, the payload of a \uXXXX escape.
func ParseHex4(data mem.RO) (uint16, error) {
	var v uint16
	for i := 0; i < data.Len(); i++ {
		b := data.At(i)
		v <<= 4
		switch {
		case '0' <= b && b <= '9':
			v += uint16(b - '0')
		case 'a' <= b && b <= 'f':
			v += uint16(b - 'a' + 10)
		case 'A' <= b && b <= 'F':
			v += uint16(b - 'A' + 10)
		default:
			return 0, fmt.Errorf("invalid hex digit %q", b)
		}
	}
	return v, nil
}
