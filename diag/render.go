// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package diag

import (
	"fmt"
	"io"
	"strings"
)

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiBold   = "\x1b[1m"
	ansiReset  = "\x1b[0m"
)

// Render writes d to w with a caret snippet of src, showing at most one
// line of context on either side:
//
//	foo.erg:2:7: error[NameError]: prin is not defined
//	   1 | x = 1
//	   2 | print prin
//	     |       ^
//	     = did you mean print!?
//
// Coordinates are clamped to src. If color is set, the header is
// highlighted with ANSI escapes.
func Render(w io.Writer, d *Diagnostic, src []byte, color bool) {
	var b strings.Builder
	header := fmt.Sprintf("%s[%s]", d.Kind, d.Errno)
	if color {
		c := ansiRed
		if d.Kind != Error {
			c = ansiYellow
		}
		header = ansiBold + c + header + ansiReset
	}
	if d.Pos.IsValid() {
		fmt.Fprintf(&b, "%s: ", d.Pos)
	} else if d.Input != "" {
		fmt.Fprintf(&b, "%s: ", d.Input)
	}
	fmt.Fprintf(&b, "%s: %s", header, d.Main)
	if d.Caused != "" {
		fmt.Fprintf(&b, " (%s)", d.Caused)
	}
	b.WriteByte('\n')

	if d.Pos.IsValid() && src != nil {
		snippet(&b, string(src), int(d.Pos.Line), int(d.Pos.Col))
	}
	for _, sub := range d.Subs {
		fmt.Fprintf(&b, "     = %s\n", sub)
	}
	io.WriteString(w, b.String())
}

// RenderAll renders each diagnostic of l in turn.
// The source for each is obtained from the source function, which
// may return nil.
func RenderAll(w io.Writer, l List, source func(input string) []byte, color bool) {
	for _, d := range l {
		var src []byte
		if source != nil {
			src = source(d.Input)
		}
		Render(w, d, src, color)
	}
}

func snippet(b *strings.Builder, src string, line, col int) {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if line > 1 {
		fmt.Fprintf(b, "%4d | %s\n", line-1, lines[line-2])
	}
	text := lines[line-1]
	fmt.Fprintf(b, "%4d | %s\n", line, text)
	fmt.Fprintf(b, "     | %s^\n", caretPad(text, col-1))
	if line < len(lines) && lines[line] != "" {
		fmt.Fprintf(b, "%4d | %s\n", line+1, lines[line])
	}
}

// caretPad returns whitespace spanning the first n runes of text,
// keeping tabs so that the caret lines up.
func caretPad(text string, n int) string {
	var pad strings.Builder
	for i, r := range []rune(text) {
		if i >= n {
			break
		}
		if r == '\t' {
			pad.WriteByte('\t')
		} else {
			pad.WriteByte(' ')
		}
	}
	for i := len([]rune(text)); i < n; i++ {
		pad.WriteByte(' ')
	}
	return pad.String()
}
