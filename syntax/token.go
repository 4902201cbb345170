// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// A Token represents an Erg lexical token.
type Token int8

const (
	ILLEGAL Token = iota
	EOF

	NEWLINE
	INDENT
	OUTDENT

	// Tokens with values
	IDENT  // x
	INT    // 123
	FLOAT  // 1.23e45
	STRING // "foo" or 'foo'

	// Punctuation
	PLUS       // +
	MINUS      // -
	STAR       // *
	STARSTAR   // **
	SLASH      // /
	SLASHSLASH // //
	PERCENT    // %
	BANG       // !
	DOT        // .
	COMMA      // ,
	EQ         // =
	WALRUS     // :=
	COLON      // :
	SEMI       // ;
	PIPE       // |
	ARROW      // ->
	FATARROW   // =>
	LT         // <
	GT         // >
	LE         // <=
	GE         // >=
	EQL        // ==
	NEQ        // !=
	LPAREN     // (
	RPAREN     // )
	LBRACK     // [
	RBRACK     // ]
	LBRACE     // {
	RBRACE     // }

	// Keywords
	AND
	IMPORT
	IN
	NOT
	NOT_IN // synthesized by parser from NOT IN
	OR
	PYIMPORT

	maxToken
)

func (tok Token) String() string { return tokenNames[tok] }

// GoString is like String but quotes punctuation tokens.
// Use Sprintf("%#v", tok) when constructing error messages.
func (tok Token) GoString() string {
	if tok >= PLUS && tok <= RBRACE {
		return "'" + tokenNames[tok] + "'"
	}
	return tokenNames[tok]
}

var tokenNames = [...]string{
	ILLEGAL:    "illegal token",
	EOF:        "end of file",
	NEWLINE:    "newline",
	INDENT:     "indent",
	OUTDENT:    "outdent",
	IDENT:      "identifier",
	INT:        "int literal",
	FLOAT:      "float literal",
	STRING:     "string literal",
	PLUS:       "+",
	MINUS:      "-",
	STAR:       "*",
	STARSTAR:   "**",
	SLASH:      "/",
	SLASHSLASH: "//",
	PERCENT:    "%",
	BANG:       "!",
	DOT:        ".",
	COMMA:      ",",
	EQ:         "=",
	WALRUS:     ":=",
	COLON:      ":",
	SEMI:       ";",
	PIPE:       "|",
	ARROW:      "->",
	FATARROW:   "=>",
	LT:         "<",
	GT:         ">",
	LE:         "<=",
	GE:         ">=",
	EQL:        "==",
	NEQ:        "!=",
	LPAREN:     "(",
	RPAREN:     ")",
	LBRACK:     "[",
	RBRACK:     "]",
	LBRACE:     "{",
	RBRACE:     "}",
	AND:        "and",
	IMPORT:     "import",
	IN:         "in",
	NOT:        "not",
	NOT_IN:     "not in",
	OR:         "or",
	PYIMPORT:   "pyimport",
}

var keywordToken = map[string]Token{
	"and":      AND,
	"import":   IMPORT,
	"in":       IN,
	"not":      NOT,
	"or":       OR,
	"pyimport": PYIMPORT,
}

// A Position describes the location of a rune of input.
type Position struct {
	file *string // filename (indirect for compactness)
	Line int32   // 1-based line number; 0 if line unknown
	Col  int32   // 1-based column (rune) number; 0 if column unknown
}

// IsValid reports whether the position is valid.
func (p Position) IsValid() bool { return p.file != nil }

// Filename returns the name of the file containing this position.
func (p Position) Filename() string {
	if p.file != nil {
		return *p.file
	}
	return "<invalid>"
}

// MakePosition returns position with the specified components.
func MakePosition(file *string, line, col int32) Position { return Position{file, line, col} }

// add returns the position at the end of s, assuming it starts at p.
func (p Position) add(s string) Position {
	if p.IsValid() {
		p.Col += int32(utf8.RuneCountInString(s))
	}
	return p
}

func (p Position) String() string {
	file := p.Filename()
	if p.Line > 0 {
		if p.Col > 0 {
			return fmt.Sprintf("%s:%d:%d", file, p.Line, p.Col)
		}
		return fmt.Sprintf("%s:%d", file, p.Line)
	}
	return file
}

func (p Position) isBefore(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Col < q.Col
}

// Before reports whether p precedes q in the same file.
func (p Position) Before(q Position) bool { return p.isBefore(q) }

// A TokenInfo is a scanned token with its span and decoded payload.
type TokenInfo struct {
	Tok    Token
	Raw    string      // source text of the token; empty for synthetic tokens
	Value  interface{} // int64 | *big.Int | float64 | string, for literals
	Pos    Position
	End    Position
	Offset int  // byte offset of the token start
	Spaced bool // whitespace separated this token from the previous one
}

func (t TokenInfo) String() string {
	switch t.Tok {
	case IDENT, INT, FLOAT, STRING:
		return strconv.Quote(t.Raw)
	}
	return t.Tok.String()
}
