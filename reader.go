// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jread

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/creachadair/mds/mapset"
	"golang.org/x/text/encoding"

	"github.com/creachadair/jread/internal/textbuf"
	"github.com/creachadair/jread/textconv"
)

// ErrCanceled is reported by a read aborted by Cancel. Cancellation is not
// a defect in the input, so the error carries no position or path.
var ErrCanceled = errors.New("read canceled")

// ReadError is the concrete type of errors reported by a failed read.
// Errors caused by the input data include the absolute byte position and
// the canonical path that was active at the point of failure.
type ReadError struct {
	Offset int64  // absolute byte position, 0 when not applicable
	Path   string // canonical element path, "" when not applicable
	Msg    string

	err error
}

// Error satisfies the error interface.
func (e *ReadError) Error() string {
	s := e.Msg
	if e.Offset > 0 {
		s += fmt.Sprintf(" (byte position %d)", e.Offset)
	}
	if e.Path != "" {
		s += fmt.Sprintf(" (path %q)", e.Path)
	}
	return s
}

// Unwrap supports error wrapping.
func (e *ReadError) Unwrap() error { return e.err }

// A Reader parses JSON input in a single pass and notifies subscribed
// callbacks as elements are recognized, without building a document tree.
//
// Subscriptions registered on a Reader are valid for one read call and are
// removed when it returns; resubscribe before the next read. A Reader is
// not safe for concurrent use, and a second read must not start until the
// first returns. Callbacks run synchronously on the calling goroutine.
type Reader struct {
	in   *input
	conv textconv.Converter

	onObjectBegin publisher
	onObjectEnd   publisher
	onArrayBegin  publisher
	onArrayEnd    publisher
	onArrayItem   publisher
	onPair        publisher
	current       *publisher // publisher mid-notification, nil otherwise

	elemName  *textbuf.Buffer // name of the last element found
	elemValue *textbuf.Buffer // value of the last scalar found
	path      *textbuf.Buffer // path of the element being parsed
	item      arrayItem

	locale       encoding.Encoding // non-nil: narrow values convert to this character set
	progressFn   func(pct int)
	progressStep int

	canceled atomic.Bool
}

// New constructs a new, empty Reader.
func New() *Reader {
	return &Reader{
		elemName:  textbuf.New(),
		elemValue: textbuf.New(),
		path:      textbuf.New(),
	}
}

// ReadFile parses the JSON file at path, reading it in chunks and
// delivering events to the subscribed callbacks. It reports nil if the
// whole input was parsed without error.
func (r *Reader) ReadFile(path string) error { return r.read(path, nil, nil) }

// ReadBuffer parses data, which must be UTF-8 JSON text and must not be
// modified for the duration of the call.
func (r *Reader) ReadBuffer(data []byte) error { return r.read("", data, nil) }

// PathsFromFile parses the JSON file at path and returns the set of
// distinct canonical element paths it contains.
func (r *Reader) PathsFromFile(path string) (mapset.Set[string], error) {
	paths := mapset.New[string]()
	if err := r.read(path, nil, paths); err != nil {
		return nil, err
	}
	return paths, nil
}

// PathsFromBuffer parses data and returns the set of distinct canonical
// element paths it contains.
func (r *Reader) PathsFromBuffer(data []byte) (mapset.Set[string], error) {
	paths := mapset.New[string]()
	if err := r.read("", data, paths); err != nil {
		return nil, err
	}
	return paths, nil
}

// read parses one input start to finish. Exactly one of path or data is
// the source. If paths is non-nil the read collects canonical paths into
// it, replacing any wildcard subscriptions. All working state, including
// subscriptions, is reset when read returns.
func (r *Reader) read(path string, data []byte, paths mapset.Set[string]) (err error) {
	defer r.cleanup()
	defer r.recoverReadError(&err)

	r.resetStrings()

	if data == nil {
		in, ferr := openFileInput(path, &r.conv)
		if ferr != nil {
			return &ReadError{Msg: ferr.Error(), err: ferr}
		}
		r.in = in
	} else {
		r.in = newBufferInput(data, &r.conv)
	}
	r.in.progress = r.progressFn
	r.in.step = r.progressStep

	if paths != nil {
		record := func() { paths.Add(r.CurrentPath()) }
		r.OnObjectBegin("", record)
		r.OnArrayBegin("", record)
		r.OnPair("", NarrowValue(func(*string) { paths.Add(r.CurrentPath()) }))
	}

	r.in.next(false)
	if !r.in.eof {
		r.parseValue(0, nil)
	}
	r.in.finishProgress()
	return nil
}

// recoverReadError converts a parse abort into the error result of the
// enclosing read. Errors raised by the input data are enriched with the
// byte position and the active canonical path; cancellation is not.
func (r *Reader) recoverReadError(errp *error) {
	v := recover()
	if v == nil {
		return
	}
	re, ok := v.(*ReadError)
	if !ok {
		panic(v)
	}
	if !errors.Is(re, ErrCanceled) {
		if re.Offset == 0 && r.in != nil {
			re.Offset = r.in.pos
		}
		if re.Path == "" && r.path.Len() > 0 {
			re.Path = r.path.String()
		}
	}
	*errp = re
}

// cleanup releases the input source, resets the working buffers, drops all
// subscriptions, and consumes any pending cancellation request.
func (r *Reader) cleanup() {
	if r.in != nil {
		r.in.close()
		r.in = nil
	}
	r.resetStrings()
	r.item.clear()
	r.current = nil
	r.canceled.Store(false)

	r.onObjectBegin.unsubscribe()
	r.onObjectEnd.unsubscribe()
	r.onArrayBegin.unsubscribe()
	r.onArrayEnd.unsubscribe()
	r.onArrayItem.unsubscribe()
	r.onPair.unsubscribe()
}

func (r *Reader) resetStrings() {
	r.elemName.Reset()
	r.elemValue.Reset()
	r.path.Reset()
}

// notify raises one event. The path is capped at pathLen for the duration
// of the delivery, and the cancellation flag is checked before dispatch so
// that a cancel requested inside a callback aborts before the next event.
func (r *Reader) notify(pub *publisher, namePos, nameLen, pathLen int, value *textbuf.Buffer) {
	if r.canceled.Load() {
		panic(&ReadError{Msg: ErrCanceled.Error(), err: ErrCanceled})
	}
	r.path.SetLen(pathLen)
	r.current = pub
	d := delivery{conv: &r.conv, locale: r.locale}
	pub.notify(&d, r.path.Bytes(), namePos, nameLen, pathLen, value)
}

// Subscription entry points. The element argument selects the target by
// bare name, or by canonical path if it contains "{" or "[". The empty
// string subscribes to the event for every element. Subscribing the same
// element twice replaces the earlier callback.

// OnObjectBegin calls fn when the definition of an object starts.
func (r *Reader) OnObjectBegin(element string, fn func()) {
	r.onObjectBegin.subscribe(element, notifyFunc(fn))
}

// OnObjectEnd calls fn when the definition of an object ends.
func (r *Reader) OnObjectEnd(element string, fn func()) {
	r.onObjectEnd.subscribe(element, notifyFunc(fn))
}

// OnArrayBegin calls fn when the definition of an array starts.
func (r *Reader) OnArrayBegin(element string, fn func()) {
	r.onArrayBegin.subscribe(element, notifyFunc(fn))
}

// OnArrayEnd calls fn when the definition of an array ends.
func (r *Reader) OnArrayEnd(element string, fn func()) {
	r.onArrayEnd.subscribe(element, notifyFunc(fn))
}

// OnArrayItem invokes cb when an item of an array has been parsed. The
// value is the item's scalar text; it is nil when the item is an object,
// an array, or null (see ArrayItemIsValue).
func (r *Reader) OnArrayItem(element string, cb Callback) {
	r.onArrayItem.subscribe(element, cb)
}

// OnPair invokes cb when a key/value pair has been parsed. The value is
// the pair's scalar text, or nil when the value is null.
func (r *Reader) OnPair(element string, cb Callback) {
	r.onPair.subscribe(element, cb)
}

// Introspection entry points, for use inside a callback.

// CurrentPath returns the canonical path of the element that raised the
// current event.
func (r *Reader) CurrentPath() string { return r.path.String() }

// CurrentPathWide returns the canonical path as code points.
func (r *Reader) CurrentPathWide() []rune { return []rune(r.path.String()) }

// CurrentName returns the bare name of the element that raised the current
// event, or "" outside a notification.
func (r *Reader) CurrentName() string {
	if r.current == nil {
		return ""
	}
	return string(r.current.curName)
}

// CurrentNameWide returns the bare name of the current element as code
// points.
func (r *Reader) CurrentNameWide() []rune { return []rune(r.CurrentName()) }

// ValueQuoted reports whether the value just delivered was enclosed in
// quotation marks in the source, distinguishing the string "123" from the
// number 123.
func (r *Reader) ValueQuoted() bool { return r.elemValue.Quoted }

// PathASCII reports whether the current path consists entirely of ASCII
// characters.
func (r *Reader) PathASCII() bool { return r.path.ASCII }

// ArrayItemIsValue reports whether the current array item is a scalar
// (string, number, boolean, or null) rather than an object or array.
func (r *Reader) ArrayItemIsValue() bool { return r.item.isValue }

// SetLocale selects the character set for narrow value delivery by its
// IANA name, such as "ISO-8859-1". Values that are not pure ASCII are
// converted from UTF-8 to this character set before being passed to
// NarrowValue callbacks. An empty name disables locale delivery. An
// unknown name is reported as an error and leaves the setting unchanged.
func (r *Reader) SetLocale(name string) error {
	if name == "" {
		r.locale = nil
		return nil
	}
	enc, err := textconv.Lookup(name)
	if err != nil {
		return err
	}
	r.locale = enc
	return nil
}

// OnProgress registers fn to be called with the completed percentage of
// the input whenever it advances by at least step percent, with a final
// call at 100%. Progress is reported only for file reads, where the total
// size is known.
func (r *Reader) OnProgress(step int, fn func(pct int)) {
	r.progressStep = step
	r.progressFn = fn
}

// Cancel requests that the read in progress stop. The read reports
// ErrCanceled before delivering any further event. The request is consumed
// by the read it aborts.
func (r *Reader) Cancel() { r.canceled.Store(true) }
