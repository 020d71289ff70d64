// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package jread implements a streaming, event-driven JSON reader.
//
// A Reader scans UTF-8 JSON text exactly once, without building a document
// tree, and invokes caller-registered callbacks as objects, arrays,
// key/value pairs, and array items are recognized. It is intended for
// large inputs where materializing a full parse tree is wasteful, and for
// callers that consume only a subset of the data.
//
// # Reading
//
// Construct a Reader, register subscriptions, and call ReadFile or
// ReadBuffer. The read parses the whole input before returning; callbacks
// run synchronously on the calling goroutine. Subscriptions are valid for
// one read and are removed when it returns.
//
//	r := jread.New()
//	r.OnPair("id", jread.NarrowValue(func(v *string) {
//	   log.Printf("id = %s", *v)
//	}))
//	if err := r.ReadFile("users.json"); err != nil {
//	   log.Fatalf("Read failed: %v", err)
//	}
//
// # Element paths
//
// Every element has a canonical path: the names of its ancestors from the
// root, each object marked by "{" and each array by "[", with no
// separators and no quoting. The root object's path is "{"; the array
// "colors" in the root object is "{colors["; the key "id" of an object
// inside the array "users" is "{users[{id".
//
// A subscription element that contains "{" or "[" is matched against the
// full path; any other element is matched against the bare name, firing
// wherever that name occurs. The empty string subscribes to every element
// of the event kind. All matching callbacks fire, in the order name, path,
// wildcard.
//
// Use PathsFromFile or PathsFromBuffer to discover the set of paths in a
// document.
//
// # Values
//
// Pair and array-item callbacks receive the scalar text of the value:
// strings are delivered decoded, numbers and booleans as their lexical
// text, and null as a nil value distinct from an empty string. Inside a
// callback, the Reader's introspection methods report the current path and
// name, whether the value was quoted in the source, and whether the
// current array item is a scalar.
//
// A NarrowValue callback receives byte-oriented strings, by default UTF-8.
// After SetLocale, values that are not pure ASCII are converted to the
// configured character set. A WideValue callback receives code points and
// is unaffected by the locale setting.
package jread
