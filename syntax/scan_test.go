// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func scan(src interface{}) (tokens string, err error) {
	sc, err := newScanner("foo.erg", src)
	if err != nil {
		return "", err
	}

	defer sc.recover(&err)

	var buf bytes.Buffer
	var val tokenValue
	for {
		tok := sc.nextToken(&val)

		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		switch tok {
		case EOF:
			buf.WriteString("EOF")
		case IDENT:
			buf.WriteString(val.raw)
		case INT:
			if val.bigInt != nil {
				fmt.Fprintf(&buf, "%d", val.bigInt)
			} else {
				fmt.Fprintf(&buf, "%d", val.int)
			}
		case FLOAT:
			fmt.Fprintf(&buf, "%e", val.float)
		case STRING:
			buf.WriteString(Quote(val.string))
		default:
			buf.WriteString(tok.String())
		}
		if tok == EOF {
			break
		}
	}
	return buf.String(), nil
}

func TestScanner(t *testing.T) {
	for _, test := range []struct {
		input, want string
	}{
		{``, "EOF"},
		{`123`, "123 newline EOF"}, // EOF acts as an implicit newline
		{`x.y`, "x . y newline EOF"},
		{`print! 1`, "print! 1 newline EOF"},
		{`x != 1`, "x != 1 newline EOF"},
		{`x!=1`, "x != 1 newline EOF"},
		{`x! = !1`, "x! = ! 1 newline EOF"},
		{"f i =\n    i + 1\n", "f i = newline indent i + 1 newline outdent EOF"},
		{"f i =\n\ti + 1", "f i = newline indent i + 1 newline outdent EOF"},
		{"f(\n1\n)\n", "f ( 1 ) newline EOF"}, // newlines within brackets are ignored
		{"x = 1 # comment\n\n\ny = 2", "x = 1 newline y = 2 newline EOF"},
		{"# only a comment", "EOF"},
		{"x = 1 + \\\n2", "x = 1 + 2 newline EOF"},
		{`x -> x`, "x -> x newline EOF"},
		{`a => b`, "a => b newline EOF"},
		{`f k := 1`, "f k := 1 newline EOF"},
		{`{I: Int | I >= 0}`, "{ I : Int | I >= 0 } newline EOF"},
		{`x not in y`, "x not in y newline EOF"},
		{`m = import "m"`, `m = import "m" newline EOF`},
		{`g = pyimport "glob"`, `g = pyimport "glob" newline EOF`},
		{`a // b ** c % d`, "a // b ** c % d newline EOF"},
		{`[Int; 3]`, "[ Int ; 3 ] newline EOF"},
		{"ｘ = 1", "x = 1 newline EOF"}, // NFKC
		// tuple projection
		{`t.0`, "t . 0 newline EOF"},
		{`t.0.1`, "t . 0 . 1 newline EOF"},
		{`f(x).1`, "f ( x ) . 1 newline EOF"},
		{`x = .5`, "x = 5.000000e-01 newline EOF"},
		// numbers
		{"0", `0 newline EOF`},
		{"00", `0 newline EOF`},
		{"1_000_000", `1000000 newline EOF`},
		{"1__0", `foo.erg:1:1: invalid use of '_' in numeric literal`},
		{"1_", `foo.erg:1:1: invalid use of '_' in numeric literal`},
		{"0123", `foo.erg:1:1: leading zeros in decimal integer literals are not permitted`},
		{"0.5", `5.000000e-01 newline EOF`},
		{"1.5e3", `1.500000e+03 newline EOF`},
		{"1e-1", `1.000000e-01 newline EOF`},
		{"0xff", `255 newline EOF`},
		{"0o17", `15 newline EOF`},
		{"0b101", `5 newline EOF`},
		{"0xG", `foo.erg:1:3: invalid hex literal`},
		{"12345678901234567890", `12345678901234567890 newline EOF`},
		// strings
		{`"abc"`, `"abc" newline EOF`},
		{`'abc'`, `"abc" newline EOF`},
		{`"a\nb"`, `"a\nb" newline EOF`},
		{`"\x41Ѐ"`, `"AЀ" newline EOF`},
		{`"\q"`, `foo.erg:1:1: invalid escape sequence \q`},
		{`"\xff"`, `foo.erg:1:1: non-ASCII hex escape`},
		{`"abc`, `foo.erg:1:1: unexpected EOF in string`},
		{"\"a\nb\"", `foo.erg:1:1: unexpected newline in string`},
		{"s = 'abc\nt = 1", `foo.erg:1:5: unexpected newline in string`},
		{`"""a
b"""`, `"a\nb" newline EOF`},
		// indentation
		{"a =\n    b\n  c\n", `foo.erg:3:3: unindent does not match any outer indentation level`},
		{"  a", `foo.erg:1:3: unexpected indentation`},
		{"a =\n  b =\n    c\nd", "a = newline indent b = newline indent c newline outdent outdent d newline EOF"},
		// errors
		{"x @ y", `foo.erg:1:3: unexpected input character '@'`},
		{")", `foo.erg:1:1: unexpected ')'`},
	} {
		got, err := scan(test.input)
		if err != nil {
			got = err.(Error).Error()
		}
		// Prefix match allows us to truncate errors in expectations.
		// Success cases all end in EOF.
		if !strings.HasPrefix(got, test.want) {
			t.Errorf("scan `%s` = [%s], want [%s]", test.input, got, test.want)
		}
	}
}

func TestScanErrorIsLexical(t *testing.T) {
	_, err := Scan("foo.erg", "a =\n    b\n  c\n")
	e, ok := err.(Error)
	if !ok || !e.Lex {
		t.Fatalf("Scan error = %#v, want lexical Error", err)
	}
	if e.Pos.Line != 3 {
		t.Errorf("error line = %d, want 3", e.Pos.Line)
	}
}

// kinds returns the kind and raw text of each token.
func kinds(toks []TokenInfo) []string {
	var out []string
	for _, t := range toks {
		out = append(out, t.Tok.String()+" "+t.Raw)
	}
	return out
}

func TestUnlexRoundTrip(t *testing.T) {
	for _, src := range []string{
		"print! 1\n",
		"num = -3\nprint! num * 2\n",
		"f i =\n    i + 1\nx = f 2\nassert x == 3\n",
		"t = (1, 2)\nprint! t.0\n",
		"x! = !1\nx! = x! + 1\n",
		"r: {I: Int | I >= 0} = 1\n",
		"C = Class {x = Int; y = Int}\nC.\n    norm self = self.x * self.x\n",
		"s = \"a\\tb\"\nf = 1.5e3\ng = 0xff\n",
		"p! x =\n    if! x > 1, () => print! x, () => None\n",
		"a = b not in [1, 2] and not c\n",
	} {
		toks, err := Scan("in.erg", src)
		if err != nil {
			t.Errorf("Scan(%q): %v", src, err)
			continue
		}
		text := Unlex(toks)
		toks2, err := Scan("out.erg", text)
		if err != nil {
			t.Errorf("Scan(Unlex(%q)) = %q: %v", src, text, err)
			continue
		}
		if diff := cmp.Diff(kinds(toks), kinds(toks2)); diff != "" {
			t.Errorf("token stream of %q changed after Unlex (-want +got):\n%s", src, diff)
		}
	}
}
