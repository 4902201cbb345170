// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import (
	"strings"
	"testing"
)

var quoteTests = []struct {
	q   string // quoted
	s   string // unquoted (actual string)
	std bool   // q is standard form for s
}{
	{`""`, "", true},
	{`''`, "", false},
	{`"hello"`, `hello`, true},
	{`'hello'`, `hello`, false},
	{`"quote\"here"`, `quote"here`, true},
	{`'quote"here'`, `quote"here`, false},
	{`"quote'here"`, `quote'here`, true},
	{`'quote\'here'`, `quote'here`, false},
	{`"""hello " ' world "" asdf ''' foo"""`, `hello " ' world "" asdf ''' foo`, false},
	{`"""hello
world"""`, "hello\nworld", false},
	{`"\a\b\f\n\r\t\v"`, "\a\b\f\n\r\t\v", true},
	{`"\0"`, "\x00", false},
	{`"\x00\x7f"`, "\x00\x7f", true},
	{`"\x41\x42"`, "AB", false},
	{`"été"`, "été", true},
	{`"\U0001F600"`, "\U0001F600", false},
	{`"\\d+"`, `\d+`, true},
	{"\"a\\\nb\"", "ab", false},
}

func TestQuote(t *testing.T) {
	for _, tt := range quoteTests {
		if !tt.std {
			continue
		}
		q := Quote(tt.s)
		if q != tt.q {
			t.Errorf("Quote(%#q) = %s, want %s", tt.s, q, tt.q)
		}
	}
}

func TestUnquote(t *testing.T) {
	for _, tt := range quoteTests {
		s, triple, err := unquote(tt.q)
		wantTriple := strings.HasPrefix(tt.q, `"""`) || strings.HasPrefix(tt.q, `'''`)
		if s != tt.s || triple != wantTriple || err != nil {
			t.Errorf("unquote(%s) = %#q, %v, %v want %#q, %v, nil", tt.q, s, triple, err, tt.s, wantTriple)
		}
	}
}

func TestUnquoteErrors(t *testing.T) {
	for _, tt := range []struct{ q, want string }{
		{`"\q"`, `invalid escape sequence \q`},
		{`"\x4"`, `truncated escape sequence`},
		{`"\xzz"`, `invalid escape sequence \xzz`},
		{`"\xff"`, `non-ASCII hex escape \xff`},
		{`"\ud800"`, `invalid Unicode code point U+D800`},
		{`"\U00110000"`, `code point out of range`},
		{"\"a\nb\"", `unexpected newline in string`},
		{`"`, `string literal too short`},
		{`"abc'`, `string literal has invalid quotes`},
	} {
		_, _, err := unquote(tt.q)
		if err == nil {
			t.Errorf("unquote(%s) succeeded, want error %q", tt.q, tt.want)
		} else if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("unquote(%s) error = %q, want %q", tt.q, err, tt.want)
		}
	}
}

// Quoted strings are valid input to the scanner.
func TestQuoteRescans(t *testing.T) {
	for _, s := range []string{"", "a\tb", `say "hi"`, "\x00\x1f", "naïve\n", `back\slash`} {
		toks, err := Scan("q.erg", Quote(s))
		if err != nil {
			t.Errorf("Scan(Quote(%q)): %v", s, err)
			continue
		}
		if got := toks[0].Value; got != s {
			t.Errorf("Scan(Quote(%q)) = %q", s, got)
		}
	}
}
