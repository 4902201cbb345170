// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package spell suggests the intended name for a misspelled
// identifier ("prin is not defined; did you mean print!?").
//
// Names are compared without case, underscores, or the '!' that marks
// a procedure, so a procedure is suggested for its plain name.
package spell // import "go.erg.dev/internal/spell"

import (
	"strings"
	"unicode"
)

// key returns the form of name used for comparison.
func key(name string) []rune {
	var out []rune
	for _, r := range name {
		if r != '_' && r != '!' {
			out = append(out, unicode.ToLower(r))
		}
	}
	return out
}

// Nearest returns the element of candidates nearest to x in edit
// distance, or "" if none is close enough: at most half of x may be
// mistyped. Compiler-generated names, which start with '%', are never
// suggested.
func Nearest(x string, candidates []string) string {
	kx := key(x)
	var best string
	limit := (len(kx) + 1) / 2
	for _, c := range candidates {
		if c == "" || strings.HasPrefix(c, "%") || c == x {
			continue
		}
		if d := distance(kx, key(c), limit); d < limit || d == 0 {
			if d == 0 {
				return c
			}
			best, limit = c, d
		}
	}
	return best
}

// distance returns the Levenshtein distance between x and y, or some
// value greater than max once it is known to exceed max.
func distance(x, y []rune, max int) int {
	if len(x) > len(y) {
		x, y = y, x
	}
	for len(x) > 0 && x[0] == y[0] {
		x, y = x[1:], y[1:]
	}
	if len(y)-len(x) > max {
		return max + 1
	}
	prev := make([]int, len(y)+1)
	cur := make([]int, len(y)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(x); i++ {
		cur[0] = i
		rowMin := i
		for j := 1; j <= len(y); j++ {
			sub := prev[j-1]
			if x[i-1] != y[j-1] {
				sub++
			}
			cur[j] = min(sub, prev[j]+1, cur[j-1]+1)
			rowMin = min(rowMin, cur[j])
		}
		if rowMin > max {
			return rowMin
		}
		prev, cur = cur, prev
	}
	return prev[len(y)]
}
