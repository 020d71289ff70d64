// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jread

import (
	"strings"

	"go4.org/mem"
	"golang.org/x/text/encoding"

	"github.com/creachadair/jread/internal/textbuf"
	"github.com/creachadair/jread/textconv"
)

// A Callback is the receiver a subscriber attaches to a value-carrying
// event. Construct one with NarrowValue or WideValue to choose the
// representation delivered to the function. The zero Callback discards the
// event.
type Callback struct {
	kind   callbackKind
	notify func()
	narrow func(value *string)
	wide   func(value []rune)
}

type callbackKind uint8

const (
	cbNone callbackKind = iota
	cbNotify
	cbNarrow
	cbWide
)

// NarrowValue returns a Callback that receives values as byte-oriented
// strings. The value is UTF-8, or the configured locale character set when
// locale delivery is enabled and the value is not pure ASCII. A nil value
// reports a JSON null, distinct from an empty string.
func NarrowValue(fn func(value *string)) Callback {
	return Callback{kind: cbNarrow, narrow: fn}
}

// WideValue returns a Callback that receives values as code points. A nil
// slice reports a JSON null; an empty string is delivered as a non-nil
// empty slice. The slice is only valid for the duration of the call.
func WideValue(fn func(value []rune)) Callback {
	return Callback{kind: cbWide, wide: fn}
}

// notifyFunc wraps a no-argument callback for structural events.
func notifyFunc(fn func()) Callback { return Callback{kind: cbNotify, notify: fn} }

// delivery carries the conversion context used when a value is handed to a
// subscriber.
type delivery struct {
	conv   *textconv.Converter
	locale encoding.Encoding // nil when locale narrow delivery is off
}

// narrowString renders value in the representation a narrow subscriber
// receives. When the locale character set cannot express the value, the
// UTF-8 form is delivered instead.
func (d *delivery) narrowString(value *textbuf.Buffer) string {
	if d.locale == nil || value.ASCII || value.Len() == 0 {
		return value.String()
	}
	if out, ok := d.conv.UTF8ToMultiByte(mem.B(value.Bytes()), d.locale); ok {
		return string(out)
	}
	return value.String()
}

func (cb Callback) invoke(d *delivery, value *textbuf.Buffer) {
	switch cb.kind {
	case cbNotify:
		cb.notify()
	case cbNarrow:
		if value == nil {
			cb.narrow(nil)
			return
		}
		s := d.narrowString(value)
		cb.narrow(&s)
	case cbWide:
		if value == nil {
			cb.wide(nil)
			return
		}
		w, ok := d.conv.UTF8ToWide(mem.B(value.Bytes()))
		if !ok {
			w = []rune{}
		}
		cb.wide(w)
	}
}

// A publisher dispatches one kind of event to its subscribers. Keys
// containing "{" or "[" are element paths; all other keys are bare element
// names. The empty key is the wildcard, firing for every element.
type publisher struct {
	byName map[string]Callback
	byPath map[string]Callback
	all    Callback
	hasAll bool

	// Bare name of the element currently being notified. Aliases the live
	// path buffer; valid only while a callback is running.
	curName []byte
}

func (p *publisher) subscribe(element string, cb Callback) {
	if element == "" {
		p.all = cb
		p.hasAll = true
		return
	}
	if strings.ContainsAny(element, "{[") {
		if p.byPath == nil {
			p.byPath = make(map[string]Callback)
		}
		p.byPath[element] = cb // replaces any previous subscription
	} else {
		if p.byName == nil {
			p.byName = make(map[string]Callback)
		}
		p.byName[element] = cb
	}
}

func (p *publisher) unsubscribe() {
	p.byName = nil
	p.byPath = nil
	p.all = Callback{}
	p.hasAll = false
	p.curName = nil
}

// notify resolves and invokes the callbacks for the element described by
// the live path buffer. Delivery order is name match, then path match,
// then wildcard; all that are registered fire. The name lookup indexes the
// map with a substring of the path buffer, which does not allocate.
func (p *publisher) notify(d *delivery, path []byte, namePos, nameLen, pathLen int, value *textbuf.Buffer) {
	p.curName = path[namePos : namePos+nameLen]

	if len(p.byName) > 0 && nameLen > 0 {
		if cb, ok := p.byName[string(p.curName)]; ok {
			cb.invoke(d, value)
		}
	}
	if pathLen > 0 && len(p.byPath) > 0 {
		if cb, ok := p.byPath[string(path[:pathLen])]; ok {
			cb.invoke(d, value)
		}
	}
	if p.hasAll {
		p.all.invoke(d, value)
	}
}
