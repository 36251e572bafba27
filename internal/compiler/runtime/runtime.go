// Package runtime ships the JavaScript library that generated programs import.
package runtime

import _ "embed"

// FileName is the name generated code imports the library under.
const FileName = "runtime.mjs"

//go:embed runtime.mjs
var source []byte

// Source returns a copy of the library's source text.
func Source() []byte {
	return append([]byte(nil), source...)
}
