// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// An indentation-sensitive scanner for Erg.

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// An Error describes the nature and position of a scanner or parser error.
type Error struct {
	Pos Position
	Msg string
	Lex bool // the error was reported by the scanner
}

func (e Error) Error() string { return e.Pos.String() + ": " + e.Msg }

// An ErrorList is the list of errors found while parsing one file,
// in source order.
type ErrorList []Error

func (list ErrorList) Error() string {
	switch len(list) {
	case 0:
		return "no errors"
	case 1:
		return list[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", list[0], len(list)-1)
}

// tabWidth is the column multiple a tab advances the indentation to.
const tabWidth = 8

// A scanner represents a single input file being parsed.
type scanner struct {
	rest      []byte     // rest of input
	src       []byte     // entire input
	pos       Position   // current input position
	depth     int        // nesting of [ ( {
	indentstk []int      // stack of indentation levels
	dents     int        // number of saved INDENT (>0) or OUTDENT (<0) tokens to return
	lineStart bool       // after NEWLINE; convert spaces to indentation tokens
	first     bool       // no token has been returned yet
	lastTok   Token      // previous non-synthetic token, for projection and EOF handling
	spaced    bool       // whitespace precedes the current token
	file      string
}

func newScanner(filename string, src interface{}) (*scanner, error) {
	data, err := readSource(filename, src)
	if err != nil {
		return nil, err
	}
	sc := &scanner{
		rest:      data,
		src:       data,
		indentstk: make([]int, 1, 10), // []int{0} + spare capacity
		lineStart: true,
		first:     true,
		file:      filename,
	}
	sc.pos = MakePosition(&sc.file, 1, 1)
	return sc, nil
}

func readSource(filename string, src interface{}) ([]byte, error) {
	switch src := src.(type) {
	case string:
		return []byte(src), nil
	case []byte:
		return src, nil
	case nil:
		return nil, fmt.Errorf("%s: no source", filename)
	default:
		return nil, fmt.Errorf("invalid source: %T", src)
	}
}

// An error reported by the scanner aborts the scan.
func (sc *scanner) error(pos Position, s string) {
	panic(Error{pos, s, true})
}

func (sc *scanner) errorf(pos Position, format string, args ...interface{}) {
	sc.error(pos, fmt.Sprintf(format, args...))
}

func (sc *scanner) recover(err *error) {
	// The scanner and parser panic both for routine errors like
	// syntax errors and for programmer bugs like array index
	// errors.  Turn both into error returns.  Catching bug panics
	// is especially important when processing many files.
	switch e := recover().(type) {
	case nil:
		// no panic
	case Error:
		*err = e
	default:
		*err = Error{sc.pos, fmt.Sprintf("internal error: %v", e), true}
	}
}

// eof reports whether the input has reached end of file.
func (sc *scanner) eof() bool {
	return len(sc.rest) == 0
}

// peekRune returns the next rune in the input without consuming it.
// Newlines in Unix, DOS, or Mac format are treated as one rune, '\n'.
func (sc *scanner) peekRune() rune {
	if len(sc.rest) == 0 {
		return 0
	}

	// fast path: ASCII
	if b := sc.rest[0]; b < utf8.RuneSelf {
		if b == '\r' {
			return '\n'
		}
		return rune(b)
	}

	r, _ := utf8.DecodeRune(sc.rest)
	return r
}

// peekByte returns the byte n positions ahead, or 0.
func (sc *scanner) peekByte(n int) byte {
	if n < len(sc.rest) {
		return sc.rest[n]
	}
	return 0
}

// readRune consumes and returns the next rune in the input.
// Newlines in Unix, DOS, or Mac format are treated as one rune, '\n'.
func (sc *scanner) readRune() rune {
	if len(sc.rest) == 0 {
		sc.error(sc.pos, "internal scanner error: readRune at EOF")
	}

	// fast path: ASCII
	if b := sc.rest[0]; b < utf8.RuneSelf {
		r := rune(b)
		sc.rest = sc.rest[1:]
		if r == '\r' {
			if len(sc.rest) > 0 && sc.rest[0] == '\n' {
				sc.rest = sc.rest[1:]
			}
			r = '\n'
		}
		if r == '\n' {
			sc.pos.Line++
			sc.pos.Col = 1
		} else {
			sc.pos.Col++
		}
		return r
	}

	r, size := utf8.DecodeRune(sc.rest)
	sc.rest = sc.rest[size:]
	sc.pos.Col++
	return r
}

// offset returns the byte offset of the next unread byte.
func (sc *scanner) offset() int { return len(sc.src) - len(sc.rest) }

// tokenValue records the position and value associated with each token.
type tokenValue struct {
	raw    string   // raw text of token
	int    int64    // decoded int
	bigInt *big.Int // decoded integers > int64
	float  float64  // decoded float
	string string   // decoded string
	pos    Position // start position of token
	end    Position // end position of token
	offset int      // byte offset of token start
	spaced bool     // whitespace preceded the token
}

// nextToken is called by the parser to obtain the next input token.
// It returns the token value and sets val to the data associated with
// the token.
//
// For all our input tokens, the associated data is val.pos (the
// position where the token begins), val.raw (the input string
// corresponding to the token).  For string and int tokens, the string
// and int fields additionally contain the token's interpreted value.
func (sc *scanner) nextToken(val *tokenValue) Token {
	tok := sc.next(val)
	val.end = sc.pos
	switch tok {
	case INDENT, OUTDENT:
	default:
		sc.lastTok = tok
	}
	sc.first = false
	return tok
}

func (sc *scanner) next(val *tokenValue) Token {
	*val = tokenValue{}

start:
	// Pending indentation tokens.
	if sc.dents != 0 {
		val.pos = sc.pos
		val.offset = sc.offset()
		if sc.dents < 0 {
			sc.dents++
			return OUTDENT
		}
		sc.dents--
		return INDENT
	}

	// Measure the indentation of a new logical line.
	if sc.lineStart {
		col := 0
		for {
			c := sc.peekRune()
			if c == ' ' {
				col++
			} else if c == '\t' {
				col += tabWidth - col%tabWidth
			} else {
				break
			}
			sc.readRune()
		}

		// Blank and comment-only lines do not affect indentation.
		c := sc.peekRune()
		if c == '#' {
			sc.skipComment()
			c = sc.peekRune()
		}
		if c == '\n' {
			sc.readRune()
			goto start
		}
		if c == '\\' && sc.peekByte(1) == '\n' {
			sc.readRune()
			sc.readRune()
			goto start
		}
		sc.lineStart = false
		if sc.eof() {
			goto start // handled below
		}

		if sc.first && col > 0 {
			sc.error(sc.pos, "unexpected indentation")
		}

		// Compute indentation level.
		if top := sc.indentstk[len(sc.indentstk)-1]; col > top {
			sc.dents++
			sc.indentstk = append(sc.indentstk, col)
		} else if col < top {
			for len(sc.indentstk) > 0 && col < sc.indentstk[len(sc.indentstk)-1] {
				sc.dents--
				sc.indentstk = sc.indentstk[:len(sc.indentstk)-1]
			}
			if col != sc.indentstk[len(sc.indentstk)-1] {
				sc.error(sc.pos, "unindent does not match any outer indentation level")
			}
		}
		goto start
	}

	// Skip spaces, comments and line continuations.
	sc.spaced = false
	for {
		c := sc.peekRune()
		if c == ' ' || c == '\t' {
			sc.readRune()
			sc.spaced = true
			continue
		}
		if c == '#' {
			sc.skipComment()
			continue
		}
		if c == '\\' && (sc.peekByte(1) == '\n' || sc.peekByte(1) == '\r') {
			sc.readRune()
			sc.readRune()
			sc.spaced = true
			continue
		}
		break
	}
	val.spaced = sc.spaced
	val.pos = sc.pos
	val.offset = sc.offset()

	// At EOF, act as if there were a final newline, then close blocks.
	if sc.eof() {
		if sc.depth == 0 && !sc.first {
			switch sc.lastTok {
			case NEWLINE, EOF, ILLEGAL:
			default:
				return NEWLINE
			}
		}
		if n := len(sc.indentstk) - 1; n > 0 {
			sc.indentstk = sc.indentstk[:1]
			sc.dents = -n
			goto start
		}
		return EOF
	}

	c := sc.peekRune()

	// newline
	if c == '\n' {
		sc.readRune()
		if sc.depth > 0 {
			goto start
		}
		sc.lineStart = true
		if sc.lastTok == NEWLINE || sc.first {
			goto start
		}
		return NEWLINE
	}

	// numbers
	if isdigit(c) || c == '.' && isdigit(rune(sc.peekByte(1))) && !sc.projectionContext() {
		return sc.scanNumber(val, c)
	}

	// identifiers and keywords
	if isIdentStart(c) {
		for isIdent(sc.peekRune()) {
			sc.readRune()
		}
		// A trailing '!' marks a procedural or mutable name,
		// unless it begins the '!=' operator.
		if sc.peekRune() == '!' && sc.peekByte(1) != '=' {
			sc.readRune()
		}
		val.raw = string(sc.src[val.offset:sc.offset()])
		if k, ok := keywordToken[val.raw]; ok {
			return k
		}
		if !isASCII(val.raw) {
			val.raw = norm.NFKC.String(val.raw)
		}
		return IDENT
	}

	// string literal
	if c == '"' || c == '\'' {
		return sc.scanString(val, c)
	}

	// punctuation
	sc.readRune()
	switch c {
	case '[', '(', '{':
		sc.depth++
		val.raw = string(c)
		switch c {
		case '[':
			return LBRACK
		case '(':
			return LPAREN
		}
		return LBRACE

	case ']', ')', '}':
		if sc.depth == 0 {
			sc.errorf(val.pos, "unexpected %q", c)
		} else {
			sc.depth--
		}
		val.raw = string(c)
		switch c {
		case ']':
			return RBRACK
		case ')':
			return RPAREN
		}
		return RBRACE

	case '.':
		return sc.punct(val, DOT)
	case ',':
		return sc.punct(val, COMMA)
	case ';':
		return sc.punct(val, SEMI)
	case '|':
		return sc.punct(val, PIPE)
	case '%':
		return sc.punct(val, PERCENT)
	case '+':
		return sc.punct(val, PLUS)
	case ':':
		if sc.peekRune() == '=' {
			sc.readRune()
			return sc.punct(val, WALRUS)
		}
		return sc.punct(val, COLON)
	case '-':
		if sc.peekRune() == '>' {
			sc.readRune()
			return sc.punct(val, ARROW)
		}
		return sc.punct(val, MINUS)
	case '*':
		if sc.peekRune() == '*' {
			sc.readRune()
			return sc.punct(val, STARSTAR)
		}
		return sc.punct(val, STAR)
	case '/':
		if sc.peekRune() == '/' {
			sc.readRune()
			return sc.punct(val, SLASHSLASH)
		}
		return sc.punct(val, SLASH)
	case '=':
		switch sc.peekRune() {
		case '=':
			sc.readRune()
			return sc.punct(val, EQL)
		case '>':
			sc.readRune()
			return sc.punct(val, FATARROW)
		}
		return sc.punct(val, EQ)
	case '!':
		if sc.peekRune() == '=' {
			sc.readRune()
			return sc.punct(val, NEQ)
		}
		return sc.punct(val, BANG)
	case '<':
		if sc.peekRune() == '=' {
			sc.readRune()
			return sc.punct(val, LE)
		}
		return sc.punct(val, LT)
	case '>':
		if sc.peekRune() == '=' {
			sc.readRune()
			return sc.punct(val, GE)
		}
		return sc.punct(val, GT)
	}

	sc.errorf(val.pos, "unexpected input character %#q", c)
	panic("unreachable")
}

func (sc *scanner) punct(val *tokenValue, tok Token) Token {
	val.raw = string(sc.src[val.offset:sc.offset()])
	return tok
}

// projectionContext reports whether a '.' followed by digits is a
// tuple projection such as t.0 rather than the float .0.
func (sc *scanner) projectionContext() bool {
	if sc.spaced {
		return false
	}
	switch sc.lastTok {
	case IDENT, RPAREN, RBRACK, RBRACE, INT, STRING:
		return true
	}
	return false
}

func (sc *scanner) skipComment() {
	for !sc.eof() && sc.peekRune() != '\n' {
		sc.readRune()
	}
}

func (sc *scanner) scanString(val *tokenValue, quote rune) Token {
	start := sc.pos
	triple := len(sc.rest) >= 3 && sc.rest[0] == byte(quote) && sc.rest[1] == byte(quote) && sc.rest[2] == byte(quote)
	sc.readRune()
	if !triple {
		// Precondition: startpos..pos is the opening quote.
		for {
			if sc.eof() {
				sc.error(val.pos, "unexpected EOF in string")
			}
			c := sc.readRune()
			if c == quote {
				break
			}
			if c == '\n' {
				sc.error(val.pos, "unexpected newline in string")
			}
			if c == '\\' {
				if sc.eof() {
					sc.error(val.pos, "unexpected EOF in string")
				}
				sc.readRune()
			}
		}
	} else {
		// triple-quoted string literal
		sc.readRune()
		sc.readRune()
		quoteCount := 0
		for {
			if sc.eof() {
				sc.error(val.pos, "unexpected EOF in string")
			}
			c := sc.readRune()
			if c == quote {
				quoteCount++
				if quoteCount == 3 {
					break
				}
			} else {
				quoteCount = 0
			}
			if c == '\\' {
				if sc.eof() {
					sc.error(val.pos, "unexpected EOF in string")
				}
				sc.readRune()
			}
		}
	}

	val.raw = string(sc.src[val.offset:sc.offset()])
	s, _, err := unquote(val.raw)
	if err != nil {
		sc.error(start, err.Error())
	}
	val.string = s
	return STRING
}

func (sc *scanner) scanNumber(val *tokenValue, c rune) Token {
	// A digit sequence may contain '_' between digits.
	//
	// Python features not supported:
	// - imaginary literals
	// - octal literals with only a leading 0 (use 0o)
	start := sc.pos
	fraction, exponent := false, false

	if c == '.' {
		// dot or start of fraction
		sc.readRune()
		sc.digits(start, isdigit)
		fraction = true
	} else if c == '0' {
		// hex, octal, binary or float
		sc.readRune()
		c = sc.peekRune()

		if c == 'x' || c == 'X' || c == 'o' || c == 'O' || c == 'b' || c == 'B' {
			sc.readRune()
			var isValid func(rune) bool
			var kind string
			switch c {
			case 'x', 'X':
				isValid, kind = isxdigit, "hex"
			case 'o', 'O':
				isValid, kind = isodigit, "octal"
			default:
				isValid, kind = isbdigit, "binary"
			}
			if !isValid(sc.peekRune()) {
				sc.errorf(sc.pos, "invalid %s literal", kind)
			}
			sc.digits(start, isValid)
		} else {
			// Only zeros may follow a leading zero in a decimal integer.
			allZero := sc.digitsAllZero(start)
			if sc.peekRune() == '.' && isdigit(rune(sc.peekByte(1))) && sc.lastTok != DOT {
				sc.readRune()
				sc.digits(start, isdigit)
				fraction = true
			} else if (sc.peekRune() == 'e' || sc.peekRune() == 'E') && sc.lastTok != DOT {
				exponent = true
			} else if !allZero {
				sc.error(start, "leading zeros in decimal integer literals are not permitted; use an 0o prefix for octal integers")
			}
		}
	} else {
		// decimal
		sc.digits(start, isdigit)
		if sc.peekRune() == '.' && isdigit(rune(sc.peekByte(1))) && sc.lastTok != DOT {
			sc.readRune()
			sc.digits(start, isdigit)
			fraction = true
		}
	}

	// exponent
	if (fraction || exponent || sc.lastTok != DOT) && (sc.peekRune() == 'e' || sc.peekRune() == 'E') {
		sc.readRune()
		if c := sc.peekRune(); c == '+' || c == '-' {
			sc.readRune()
		}
		if !isdigit(sc.peekRune()) {
			sc.error(start, "invalid float literal")
		}
		sc.digits(start, isdigit)
		exponent = true
	}

	val.raw = string(sc.src[val.offset:sc.offset()])
	s := strings.ReplaceAll(val.raw, "_", "")
	if fraction || exponent {
		var err error
		val.float, err = strconv.ParseFloat(s, 64)
		if err != nil {
			sc.error(start, "invalid float literal")
		}
		return FLOAT
	}

	var err error
	val.int, err = strconv.ParseInt(s, 0, 64)
	if err != nil {
		num := new(big.Int)
		var ok bool
		val.bigInt, ok = num.SetString(s, 0)
		if !ok {
			sc.error(start, "invalid int literal")
		}
	}
	return INT
}

// digits consumes a sequence of digits accepted by isValid, allowing a
// single '_' between two digits.
func (sc *scanner) digits(start Position, isValid func(rune) bool) {
	prevUnderscore := true // disallow a leading '_'
	for {
		c := sc.peekRune()
		if c == '_' {
			if prevUnderscore {
				sc.error(start, "invalid use of '_' in numeric literal")
			}
			prevUnderscore = true
		} else if isValid(c) {
			prevUnderscore = false
		} else {
			break
		}
		sc.readRune()
	}
	if prevUnderscore && sc.src[sc.offset()-1] == '_' {
		sc.error(start, "invalid use of '_' in numeric literal")
	}
}

// digitsAllZero consumes the digits after a leading zero and reports
// whether they were all zeros.
func (sc *scanner) digitsAllZero(start Position) bool {
	allZero := true
	for {
		c := sc.peekRune()
		if c == '_' {
			if !isdigit(rune(sc.peekByte(1))) {
				sc.error(start, "invalid use of '_' in numeric literal")
			}
		} else if isdigit(c) {
			if c != '0' {
				allZero = false
			}
		} else {
			return allZero
		}
		sc.readRune()
	}
}

func isIdentStart(c rune) bool {
	return 'a' <= c && c <= 'z' ||
		'A' <= c && c <= 'Z' ||
		c == '_' ||
		unicode.IsLetter(c)
}

func isIdent(c rune) bool {
	return isdigit(c) || isIdentStart(c)
}

func isdigit(c rune) bool  { return '0' <= c && c <= '9' }
func isodigit(c rune) bool { return '0' <= c && c <= '7' }
func isxdigit(c rune) bool { return isdigit(c) || 'A' <= c && c <= 'F' || 'a' <= c && c <= 'f' }
func isbdigit(c rune) bool { return '0' == c || c == '1' }

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Scan returns the complete token stream of src, ending with EOF.
// A lexical error stops the scan; the tokens before it are returned
// along with the error.
func Scan(filename string, src interface{}) (toks []TokenInfo, err error) {
	sc, err := newScanner(filename, src)
	if err != nil {
		return nil, err
	}
	defer sc.recover(&err)

	var val tokenValue
	for {
		tok := sc.nextToken(&val)
		info := TokenInfo{
			Tok:    tok,
			Raw:    val.raw,
			Pos:    val.pos,
			End:    val.end,
			Offset: val.offset,
			Spaced: val.spaced,
		}
		switch tok {
		case INT:
			if val.bigInt != nil {
				info.Value = val.bigInt
			} else {
				info.Value = val.int
			}
		case FLOAT:
			info.Value = val.float
		case STRING:
			info.Value = val.string
		}
		toks = append(toks, info)
		if tok == EOF {
			return toks, nil
		}
	}
}

// Unlex renders a token stream back to source text. Scanning the
// result yields a stream with the same kinds and raw texts.
func Unlex(toks []TokenInfo) string {
	var buf strings.Builder
	indent := 0
	bol := true
	for _, t := range toks {
		switch t.Tok {
		case EOF:
			continue
		case NEWLINE:
			buf.WriteByte('\n')
			bol = true
			continue
		case INDENT:
			indent++
			continue
		case OUTDENT:
			indent--
			continue
		}
		if bol {
			buf.WriteString(strings.Repeat("    ", indent))
			bol = false
		} else if t.Spaced || needsSpace(t.Tok) {
			buf.WriteByte(' ')
		}
		if t.Raw != "" {
			buf.WriteString(t.Raw)
		} else {
			buf.WriteString(t.Tok.String())
		}
	}
	return buf.String()
}

// needsSpace reports whether tok must be separated from a preceding
// token to rescan identically.
func needsSpace(tok Token) bool {
	switch tok {
	case IDENT, INT, FLOAT, AND, OR, NOT, IN, IMPORT, PYIMPORT, EQ, WALRUS, BANG:
		return true
	}
	return false
}
