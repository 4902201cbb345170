// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"strings"
)

// Fprint writes a compact parenthesized rendering of the tree rooted
// at n, omitting positions, such as:
//
//	(CallExpr Fn=print! Args=(1))
func Fprint(w io.Writer, n Node) error {
	var buf bytes.Buffer
	writeTree(&buf, reflect.ValueOf(n))
	_, err := w.Write(buf.Bytes())
	return err
}

// TreeString returns the Fprint rendering of n.
func TreeString(n Node) string {
	var buf bytes.Buffer
	writeTree(&buf, reflect.ValueOf(n))
	return buf.String()
}

var (
	positionType = reflect.TypeOf(Position{})
	tokenType    = reflect.TypeOf(Token(0))
)

func writeTree(out *bytes.Buffer, x reflect.Value) {
	switch x.Kind() {
	case reflect.String, reflect.Int, reflect.Bool:
		fmt.Fprintf(out, "%v", x.Interface())
	case reflect.Ptr, reflect.Interface:
		if elem := x.Elem(); elem.Kind() == 0 {
			out.WriteString("nil")
		} else {
			writeTree(out, elem)
		}
	case reflect.Struct:
		switch v := x.Interface().(type) {
		case Literal:
			switch v.Token {
			case STRING:
				fmt.Fprintf(out, "%q", v.Value)
			case INT:
				fmt.Fprintf(out, "%d", v.Value)
			case FLOAT:
				fmt.Fprintf(out, "%g", v.Value)
			}
			return
		case Ident:
			out.WriteString(v.Name)
			return
		}
		fmt.Fprintf(out, "(%s", strings.TrimPrefix(x.Type().String(), "syntax."))
		for i, n := 0, x.NumField(); i < n; i++ {
			f := x.Field(i)
			if f.Type() == positionType {
				continue // skip positions
			}
			name := x.Type().Field(i).Name
			if f.Type() == tokenType {
				fmt.Fprintf(out, " %s=%s", name, f.Interface())
				continue
			}

			switch f.Kind() {
			case reflect.Slice:
				if n := f.Len(); n > 0 {
					fmt.Fprintf(out, " %s=(", name)
					for i := 0; i < n; i++ {
						if i > 0 {
							out.WriteByte(' ')
						}
						writeTree(out, f.Index(i))
					}
					out.WriteByte(')')
				}
				continue
			case reflect.Ptr, reflect.Interface:
				if f.IsNil() {
					continue
				}
			case reflect.Int:
				if f.Int() != 0 {
					fmt.Fprintf(out, " %s=%d", name, f.Int())
				}
				continue
			case reflect.Bool:
				if f.Bool() {
					fmt.Fprintf(out, " %s", name)
				}
				continue
			}
			fmt.Fprintf(out, " %s=", name)
			writeTree(out, f)
		}
		fmt.Fprintf(out, ")")
	default:
		fmt.Fprintf(out, "%T", x.Interface())
	}
}
