// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compile

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a readable description of the artifact of p, as
// compiled for the target with the given magic number and version.
func Fprint(w io.Writer, p *Program, magic uint16, version string) {
	fmt.Fprintf(w, "magic:    %d (%s)\n", magic, version)
	fmt.Fprintf(w, "filename: %s\n", p.Filename)
	fmt.Fprintf(w, "module:   %s\n", p.Module)
	if len(p.Deps) > 0 {
		fmt.Fprintf(w, "deps:     %s\n", strings.Join(p.Deps, ", "))
	}
	if len(p.Globals) > 0 {
		fmt.Fprintln(w, "globals:")
		for _, g := range p.Globals {
			dot := ""
			if g.Public {
				dot = "."
			}
			fmt.Fprintf(w, "\t%s%s: %s\n", dot, g.Name, g.Type)
		}
	}
	fmt.Fprintln(w, "code:")
	for _, line := range strings.SplitAfter(p.Code, "\n") {
		if line == "" {
			continue
		}
		fmt.Fprintf(w, "\t%s", line)
		if !strings.HasSuffix(line, "\n") {
			fmt.Fprintln(w)
		}
	}
}
