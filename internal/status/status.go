// Package status picks the markers that prefix progress lines.
package status

import (
	"os"

	"golang.org/x/term"
)

// Marks are the prefixes used for progress lines.
type Marks struct {
	Start, OK, Fail, Warn string
}

// Plain is used when output is redirected to a file or pipe.
var Plain = Marks{Start: "[..]", OK: "[ok]", Fail: "[fail]", Warn: "[warn]"}

// Emoji is used on interactive terminals.
var Emoji = Marks{Start: "🔄", OK: "✅", Fail: "❌", Warn: "⚠️"}

// For returns Emoji when f is a terminal and Plain otherwise.
func For(f *os.File) Marks {
	if f != nil && term.IsTerminal(int(f.Fd())) {
		return Emoji
	}
	return Plain
}

// OrPlain returns m, or Plain when m is the zero value.
func OrPlain(m Marks) Marks {
	if m == (Marks{}) {
		return Plain
	}
	return m
}
