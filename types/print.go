// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"fmt"
	"strings"
)

func (t Prim) String() string {
	if int(t) < len(primNames) {
		return primNames[t]
	}
	return fmt.Sprintf("Prim(%d)", uint8(t))
}

func (m *Mono) String() string { return m.Name }

func (p *Poly) String() string {
	var b strings.Builder
	b.WriteString(p.Name)
	b.WriteByte('(')
	for i, tp := range p.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(tp.String())
	}
	b.WriteByte(')')
	return b.String()
}

func (r *Record) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range r.Fields {
		if i > 0 {
			b.WriteString("; ")
		}
		if f.Public {
			b.WriteByte('.')
		}
		b.WriteString(f.Name)
		b.WriteString(" = ")
		b.WriteString(f.Type.String())
	}
	b.WriteByte('}')
	return b.String()
}

func (t *Tuple) String() string {
	elems := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		elems[i] = e.String()
	}
	if len(elems) == 1 {
		return "(" + elems[0] + ",)"
	}
	return "(" + strings.Join(elems, ", ") + ")"
}

func (t *Or) String() string  { return binary(t.L) + " or " + binary(t.R) }
func (t *And) String() string { return binary(t.L) + " and " + binary(t.R) }

// binary parenthesizes operands that would otherwise be ambiguous.
func binary(t Type) string {
	switch t.(type) {
	case *Subr, *Quantified:
		return "(" + t.String() + ")"
	}
	return t.String()
}

func (s *Subr) String() string {
	var params []string
	for _, p := range s.NonDefault {
		if p.Name != "" {
			params = append(params, p.Name+": "+p.Type.String())
		} else {
			params = append(params, p.Type.String())
		}
	}
	if s.VarArgs != nil {
		params = append(params, "*"+s.VarArgs.Name+": "+s.VarArgs.Type.String())
	}
	for _, p := range s.Default {
		params = append(params, p.Name+" := "+p.Type.String())
	}
	arrow := " -> "
	if s.Kind == ProcKind {
		arrow = " => "
	}
	head := "(" + strings.Join(params, ", ") + ")"
	if s.Self != nil {
		head = s.Self.String() + "." + head
	}
	return head + arrow + s.Return.String()
}

func (r *Refinement) String() string {
	return fmt.Sprintf("{%s: %s | %s}", r.Var, r.Base, r.Pred)
}

func (v *Var) String() string { return fmt.Sprintf("?%d", v.id) }

func (q *Quantified) String() string {
	var vars []string
	for _, v := range q.Vars {
		vars = append(vars, v.String())
	}
	vars = append(vars, q.Params...)
	return "|" + strings.Join(vars, ", ") + "|" + q.Body.String()
}

func (m *Module) String() string {
	if m.Py {
		return fmt.Sprintf("PyModule(%q)", m.Path)
	}
	return fmt.Sprintf("Module(%q)", m.Path)
}

func (c *ClassType) String() string { return "Type(" + c.Of.Name + ")" }
