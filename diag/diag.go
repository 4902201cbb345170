// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diag defines the structured diagnostics reported by every
// pass of the compiler: an ErrorCore carries the error number,
// severity, location, main message and sub-messages; a Diagnostic adds
// the input it was found in and a "caused by" context.
package diag // import "go.erg.dev/diag"

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"go.erg.dev/syntax"
)

// An Errno classifies a diagnostic.
type Errno uint8

const (
	LexError Errno = iota
	ParseError
	NameError
	TypeMismatch
	ImportCycle
	ImportNotFound
	EffectMismatch
	OwnershipViolation
	VisibilityViolation
	AmbiguousOverload
	InternalError
	UnusedWarning
)

var errnoNames = [...]string{
	LexError:            "LexError",
	ParseError:          "ParseError",
	NameError:           "NameError",
	TypeMismatch:        "TypeMismatch",
	ImportCycle:         "ImportCycle",
	ImportNotFound:      "ImportNotFound",
	EffectMismatch:      "EffectMismatch",
	OwnershipViolation:  "OwnershipViolation",
	VisibilityViolation: "VisibilityViolation",
	AmbiguousOverload:   "AmbiguousOverload",
	InternalError:       "InternalError",
	UnusedWarning:       "UnusedWarning",
}

func (e Errno) String() string {
	if int(e) < len(errnoNames) {
		return errnoNames[e]
	}
	return fmt.Sprintf("Errno(%d)", e)
}

// A Kind is the severity of a diagnostic.
type Kind uint8

const (
	Error Kind = iota
	Warning
	Hint
)

func (k Kind) String() string {
	switch k {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Hint:
		return "hint"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// An ErrorCore is the location-bearing body of a diagnostic.
type ErrorCore struct {
	Errno Errno
	Kind  Kind
	Pos   syntax.Position
	Main  string
	Subs  []string // additional lines, e.g. "did you mean print!?"
}

func (e *ErrorCore) Error() string {
	var buf strings.Builder
	if e.Pos.IsValid() {
		buf.WriteString(e.Pos.String())
		buf.WriteString(": ")
	}
	buf.WriteString(e.Errno.String())
	buf.WriteString(": ")
	buf.WriteString(e.Main)
	for _, sub := range e.Subs {
		buf.WriteString("; ")
		buf.WriteString(sub)
	}
	return buf.String()
}

// A Diagnostic is an ErrorCore found in a particular input.
type Diagnostic struct {
	ErrorCore
	Input  string // name of the input, e.g. a file name or "<stdin>"
	Caused string // human context, e.g. "while importing m"
	cause  error  // underlying internal error, if any
}

// Unwrap returns the internal error behind an InternalError, if any.
func (d *Diagnostic) Unwrap() error { return d.cause }

// Errorf returns an Error-severity diagnostic.
func Errorf(errno Errno, pos syntax.Position, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{ErrorCore: ErrorCore{Errno: errno, Kind: Error, Pos: pos, Main: fmt.Sprintf(format, args...)}}
}

// Warningf returns a Warning-severity diagnostic.
func Warningf(errno Errno, pos syntax.Position, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{ErrorCore: ErrorCore{Errno: errno, Kind: Warning, Pos: pos, Main: fmt.Sprintf(format, args...)}}
}

// Internal returns an InternalError diagnostic wrapping err with a
// stack trace.
func Internal(pos syntax.Position, err error) *Diagnostic {
	err = errors.WithStack(err)
	d := Errorf(InternalError, pos, "%v", err)
	d.cause = err
	return d
}

// WithSub appends a sub-message to d and returns d.
func (d *Diagnostic) WithSub(format string, args ...interface{}) *Diagnostic {
	d.Subs = append(d.Subs, fmt.Sprintf(format, args...))
	return d
}

func (d *Diagnostic) Error() string {
	s := d.ErrorCore.Error()
	if d.Caused != "" {
		s += " (" + d.Caused + ")"
	}
	return s
}

// A List is a sequence of diagnostics. A non-empty List is an error.
type List []*Diagnostic

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no diagnostics"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more diagnostics)", l[0], len(l)-1)
}

// Add appends d to the list.
func (l *List) Add(d *Diagnostic) { *l = append(*l, d) }

// Errorf appends an Error-severity diagnostic.
func (l *List) Errorf(errno Errno, pos syntax.Position, format string, args ...interface{}) *Diagnostic {
	d := Errorf(errno, pos, format, args...)
	l.Add(d)
	return d
}

// Warningf appends a Warning-severity diagnostic.
func (l *List) Warningf(errno Errno, pos syntax.Position, format string, args ...interface{}) *Diagnostic {
	d := Warningf(errno, pos, format, args...)
	l.Add(d)
	return d
}

// Sort orders the list by position, keeping the relative order of
// diagnostics at the same position.
func (l List) Sort() {
	slices.SortStableFunc(l, func(a, b *Diagnostic) int {
		switch {
		case a.Pos.Before(b.Pos):
			return -1
		case b.Pos.Before(a.Pos):
			return +1
		}
		return 0
	})
}

// HasErrors reports whether the list contains an Error-severity diagnostic.
func (l List) HasErrors() bool {
	return slices.ContainsFunc(l, func(d *Diagnostic) bool { return d.Kind == Error })
}

// Errors returns the Error-severity diagnostics of the list.
func (l List) Errors() List { return l.filter(Error) }

// Warnings returns the Warning-severity diagnostics of the list.
func (l List) Warnings() List { return l.filter(Warning) }

func (l List) filter(kind Kind) List {
	var out List
	for _, d := range l {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Has reports whether the list contains a diagnostic with the given errno.
func (l List) Has(errno Errno) bool {
	return slices.ContainsFunc(l, func(d *Diagnostic) bool { return d.Errno == errno })
}

// SetInput records the input name on every diagnostic lacking one.
func (l List) SetInput(input string) {
	for _, d := range l {
		if d.Input == "" {
			d.Input = input
		}
	}
}

// Err returns l as an error, or nil if l has no Error-severity entries.
func (l List) Err() error {
	if l.HasErrors() {
		return l
	}
	return nil
}

// FromSyntax converts a scanner or parser error into diagnostics.
// Other errors become a single InternalError.
func FromSyntax(err error) List {
	var list List
	add := func(e syntax.Error) {
		errno := ParseError
		if e.Lex {
			errno = LexError
		}
		list.Errorf(errno, e.Pos, "%s", e.Msg)
	}
	switch err := err.(type) {
	case nil:
	case syntax.Error:
		add(err)
	case syntax.ErrorList:
		for _, e := range err {
			add(e)
		}
	case List:
		return err
	default:
		list.Add(Internal(syntax.Position{}, err))
	}
	return list
}

// Recover converts a panic in the current pass into an InternalError
// appended to list. It must be called directly by a deferred call.
func Recover(list *List, pass string) {
	if e := recover(); e != nil {
		err, ok := e.(error)
		if !ok {
			err = fmt.Errorf("%v", e)
		}
		list.Add(Internal(syntax.Position{}, errors.Wrapf(err, "%s", pass)))
	}
}
