// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package shared provides an interior-mutable cell for process-local
// registries that are read and updated from several goroutines.
package shared // import "go.erg.dev/internal/shared"

import "sync"

// A Cell holds a value of type T. Its only operations are an atomic
// read and an atomic read-modify-write; no reference to the interior
// escapes, so values of T should be treated as immutable snapshots.
type Cell[T any] struct {
	mu sync.RWMutex
	v  T
}

// NewCell returns a cell holding v.
func NewCell[T any](v T) *Cell[T] { return &Cell[T]{v: v} }

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v
}

// Update replaces the value with f(old) and returns the new value.
// f must not call methods of c.
func (c *Cell[T]) Update(f func(T) T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v = f(c.v)
	return c.v
}
