// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chunkedfile provides utilities for testing that diagnostics
// are reported in the appropriate places.
//
// A chunked file consists of several chunks of input text separated by
// "---" lines.  Each chunk is an input to the pass under test, such as
// the parser or the elaborator.  Lines containing "###" are expectations
// of a diagnostic on that line: the following text is an optional errno
// name and a Go string literal denoting a regular expression that should
// match the main message of the diagnostic.
//
// Example:
//
//	x = 1
//	x = 2 ### OwnershipViolation "cannot reassign immutable binding x"
//	---
//	print! x ### "x is not defined"
//	---
//	f y =
//	    unused = 1 ### UnusedWarning "unused"
//	    y
//
// A client test feeds each chunk of text into the pass under test, then
// calls chunk.GotDiags with the diagnostics that actually occurred.
// Errors must all be expected; a warning is checked only if its line
// expects a diagnostic with its errno. Any discrepancy is reported using
// the client's reporter, which is typically a testing.T.
package chunkedfile // import "go.erg.dev/internal/chunkedfile"

import (
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"go.erg.dev/diag"
)

const debug = false

// A want is the expectation of one line.
type want struct {
	errno string // "" matches any errno
	rx    *regexp.Regexp
}

// A Chunk is a portion of a source file.
// It contains a set of expected diagnostics, by line.
type Chunk struct {
	Source   string
	filename string
	report   Reporter
	wants    map[int]want
}

// Reporter is implemented by *testing.T.
type Reporter interface {
	Errorf(format string, args ...interface{})
}

// Read parses a chunked file and returns its chunks.
// It reports failures using the reporter.
//
// Error messages of the form "file.erg:line: ..." are prefixed by a
// newline so that the Go source position added by (*testing.T).Errorf
// appears on a separate line so as not to confuse editors.
func Read(filename string, report Reporter) []Chunk {
	data, err := os.ReadFile(filename)
	if err != nil {
		report.Errorf("%s", err)
		return nil
	}
	eol := "\n"
	if runtime.GOOS == "windows" {
		eol = "\r\n"
	}
	return readBytes(filename, data, report, eol)
}

func readBytes(filename string, data []byte, report Reporter, eol string) (chunks []Chunk) {
	linenum := 1
	for i, text := range strings.Split(string(data), eol+"---"+eol) {
		if debug {
			fmt.Printf("chunk %d at line %d: %s\n", i, linenum, text)
		}
		// Pad with newlines so the line numbers match the original file.
		chunk := Chunk{
			Source:   strings.Repeat("\n", linenum-1) + text,
			filename: filename,
			report:   report,
			wants:    make(map[int]want),
		}
		for _, line := range strings.Split(text, "\n") {
			if hashes := strings.Index(line, "###"); hashes >= 0 {
				if w, err := parseWant(line[hashes+len("###"):]); err != nil {
					report.Errorf("\n%s:%d: %v", filename, linenum, err)
				} else {
					chunk.wants[linenum] = w
				}
			}
			linenum++
		}
		linenum++ // the separator
		chunks = append(chunks, chunk)
	}
	return chunks
}

// parseWant parses the text after "###": [errno] "regexp".
func parseWant(text string) (want, error) {
	text = strings.TrimSpace(text)
	var w want
	if !strings.HasPrefix(text, `"`) && !strings.HasPrefix(text, "`") {
		w.errno, text, _ = strings.Cut(text, " ")
		text = strings.TrimSpace(text)
	}
	pattern, err := strconv.Unquote(text)
	if err != nil {
		return w, fmt.Errorf("not a quoted regexp: %s", text)
	}
	if w.rx, err = regexp.Compile(pattern); err != nil {
		return w, err
	}
	return w, nil
}

// GotDiags reports the diagnostics that occurred. Diagnostics of other
// files, such as imported modules, must not be errors.
func (chunk *Chunk) GotDiags(diags diag.List) {
	for _, d := range diags {
		if d.Pos.Filename() != chunk.filename {
			if d.Kind == diag.Error {
				chunk.report.Errorf("\n%s: unexpected error in another file: %s", d.Pos, d.Main)
			}
			continue
		}
		line := int(d.Pos.Line)
		if d.Kind != diag.Error {
			if w, ok := chunk.wants[line]; !ok || w.errno != d.Errno.String() {
				continue
			}
		}
		chunk.got(line, d.Errno.String(), d.Main)
	}
}

// GotError reports an error at a particular line, of no particular errno.
func (chunk *Chunk) GotError(linenum int, msg string) { chunk.got(linenum, "", msg) }

func (chunk *Chunk) got(linenum int, errno, msg string) {
	w, ok := chunk.wants[linenum]
	if !ok {
		chunk.report.Errorf("\n%s:%d: unexpected error: %v", chunk.filename, linenum, msg)
		return
	}
	delete(chunk.wants, linenum)
	if w.errno != "" && errno != "" && w.errno != errno {
		chunk.report.Errorf("\n%s:%d: got %s %q, want %s", chunk.filename, linenum, errno, msg, w.errno)
	} else if !w.rx.MatchString(msg) {
		chunk.report.Errorf("\n%s:%d: error %q does not match pattern %q", chunk.filename, linenum, msg, w.rx)
	}
}

// Done should be called by the client to indicate that the chunk has no
// more diagnostics. It reports expected ones that did not occur.
func (chunk *Chunk) Done() {
	for linenum, w := range chunk.wants {
		if w.errno != "" {
			chunk.report.Errorf("\n%s:%d: expected %s matching %q", chunk.filename, linenum, w.errno, w.rx)
		} else {
			chunk.report.Errorf("\n%s:%d: expected error matching %q", chunk.filename, linenum, w.rx)
		}
	}
}
