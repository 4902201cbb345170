// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// Erg quoted string utilities.

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// unesc maps single-letter chars following \ to their actual values.
var unesc = [256]byte{
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
	'0':  0,
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
}

// esc maps escape-worthy bytes to the char that should follow \.
var esc = [256]byte{
	'\a': 'a',
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	'\v': 'v',
	'\\': '\\',
	'"':  '"',
}

// unquote unquotes the quoted string, returning the actual
// string value and whether the original was triple-quoted.
// The escape alphabet is \a \b \f \n \r \t \v \0 \\ \' \" plus
// \xHH (ASCII only), \uXXXX and \UXXXXXXXX.
func unquote(quoted string) (s string, triple bool, err error) {
	// Identify the quotation character.
	if len(quoted) < 2 {
		err = fmt.Errorf("string literal too short")
		return
	}
	quote := quoted[0]
	if quote != '"' && quote != '\'' || quote != quoted[len(quoted)-1] {
		err = fmt.Errorf("string literal has invalid quotes")
		return
	}

	// Check for triple quoted string.
	quoted = quoted[1 : len(quoted)-1]
	if len(quoted) >= 4 && quoted[0] == quote && quoted[1] == quote && quoted[len(quoted)-1] == quote && quoted[len(quoted)-2] == quote {
		triple = true
		quoted = quoted[2 : len(quoted)-2]
	}

	// Fast path: no escapes.
	if !strings.ContainsRune(quoted, '\\') && (triple || !strings.ContainsRune(quoted, '\n')) {
		s = strings.ReplaceAll(quoted, "\r\n", "\n")
		return
	}

	var buf strings.Builder
	for {
		i := strings.IndexByte(quoted, '\\')
		if i < 0 {
			i = len(quoted)
		}
		chunk := quoted[:i]
		if !triple && strings.ContainsRune(chunk, '\n') {
			err = fmt.Errorf("unexpected newline in string")
			return
		}
		buf.WriteString(strings.ReplaceAll(chunk, "\r\n", "\n"))
		quoted = quoted[i:]
		if len(quoted) == 0 {
			break
		}

		// Process escape sequence.
		if len(quoted) == 1 {
			err = fmt.Errorf(`truncated escape sequence \`)
			return
		}

		switch c := quoted[1]; c {
		case '\n':
			// Ignore the escape and the line break.
			quoted = quoted[2:]

		case 'a', 'b', 'f', 'n', 'r', 't', 'v', '0', '\\', '\'', '"':
			buf.WriteByte(unesc[c])
			quoted = quoted[2:]

		case 'x':
			if len(quoted) < 4 {
				err = fmt.Errorf(`truncated escape sequence %s`, quoted)
				return
			}
			n, err1 := strconv.ParseUint(quoted[2:4], 16, 0)
			if err1 != nil {
				err = fmt.Errorf(`invalid escape sequence %s`, quoted[:4])
				return
			}
			if n >= utf8.RuneSelf {
				err = fmt.Errorf("non-ASCII hex escape %s (use \\u%04X for the UTF-8 encoding of U+%04X)", quoted[:4], n, n)
				return
			}
			buf.WriteByte(byte(n))
			quoted = quoted[4:]

		case 'u', 'U':
			sz := 6
			if c == 'U' {
				sz = 10
			}
			if len(quoted) < sz {
				err = fmt.Errorf(`truncated escape sequence %s`, quoted)
				return
			}
			n, err1 := strconv.ParseUint(quoted[2:sz], 16, 0)
			if err1 != nil {
				err = fmt.Errorf(`invalid escape sequence %s`, quoted[:sz])
				return
			}
			if n > unicode.MaxRune {
				err = fmt.Errorf("code point out of range: %s (max \\U%08x)", quoted[:sz], unicode.MaxRune)
				return
			}
			if 0xD800 <= n && n < 0xE000 {
				err = fmt.Errorf("invalid Unicode code point U+%04X", n)
				return
			}
			buf.WriteRune(rune(n))
			quoted = quoted[sz:]

		default:
			err = fmt.Errorf(`invalid escape sequence \%c`, c)
			return
		}
	}

	s = buf.String()
	return
}

// Quote returns a double-quoted Erg string literal representing s.
// The result is also a valid Python string literal.
func Quote(s string) string {
	buf := make([]byte, 0, 3*len(s)/2)
	buf = append(buf, '"')
	for i := 0; i < len(s); {
		c := s[i]
		if c >= utf8.RuneSelf {
			r, n := utf8.DecodeRuneInString(s[i:])
			if r == utf8.RuneError && n == 1 {
				buf = append(buf, `�`...)
			} else if unicode.IsPrint(r) {
				buf = append(buf, s[i:i+n]...)
			} else if r <= 0xFFFF {
				buf = append(buf, fmt.Sprintf(`\u%04x`, r)...)
			} else {
				buf = append(buf, fmt.Sprintf(`\U%08x`, r)...)
			}
			i += n
			continue
		}
		if e := esc[c]; e != 0 {
			buf = append(buf, '\\', e)
		} else if c < 0x20 || c == 0x7f {
			buf = append(buf, fmt.Sprintf(`\x%02x`, c)...)
		} else {
			buf = append(buf, c)
		}
		i++
	}
	buf = append(buf, '"')
	return string(buf)
}
