// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fresh

import "testing"

func TestGen(t *testing.T) {
	var g Gen
	for i, want := range []string{"%v1", "%v2"} {
		if got := g.Var(); got != want {
			t.Errorf("Var #%d = %s, want %s", i, got, want)
		}
	}
	if got := g.Param(); got != "%p1" {
		t.Errorf("Param = %s, want %%p1", got)
	}
	if !Is("%v2") || !Is("%p9") || Is("v1") || Is("x") {
		t.Error("Is misclassified a name")
	}

	// Separate generators number independently.
	var h Gen
	if got := h.Var(); got != "%v1" {
		t.Errorf("fresh Gen Var = %s, want %%v1", got)
	}
}
