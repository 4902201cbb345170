// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shared

import (
	"sync"
	"testing"
)

func TestCellConcurrentUpdate(t *testing.T) {
	c := NewCell(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Update(func(n int) int { return n + 1 })
		}()
	}
	wg.Wait()
	if got := c.Get(); got != 50 {
		t.Errorf("Get = %d, want 50", got)
	}
	if got := c.Update(func(int) int { return 7 }); got != 7 {
		t.Errorf("Update = %d, want 7", got)
	}
	if got := c.Get(); got != 7 {
		t.Errorf("after Update, Get = %d, want 7", got)
	}
}
