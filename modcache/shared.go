// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modcache

import (
	"context"
	"log"
	"sync"

	"go.erg.dev/config"
	"go.erg.dev/diag"
	"go.erg.dev/env"
	"go.erg.dev/internal/shared"
)

// Stats counts cache requests.
type Stats struct {
	Hits, Misses, Failed int
}

// Shared is the compiler resource shared by the compiles of one
// process: the Context arena, the caches of native and Python modules,
// and the module graph. Closing it cancels the elaborations in flight.
type Shared struct {
	Config config.Config
	Native *Cache
	Py     *Cache
	Graph  *Graph
	Log    *log.Logger // nil unless tracing

	ctx    context.Context
	cancel context.CancelFunc
	stats  *shared.Cell[Stats]

	mu    sync.RWMutex
	arena *env.Arena
}

// New returns a Shared resource for cfg, with the builtin Python
// modules already Ready in its Py cache. If logger is non-nil, cache
// transitions are traced to it.
func New(cfg config.Config, logger *log.Logger) *Shared {
	ctx, cancel := context.WithCancel(context.Background())
	g := NewGraph()
	s := &Shared{
		Config: cfg,
		Native: NewCache("native", g, logger),
		Py:     NewCache("py", nil, logger),
		Graph:  g,
		Log:    logger,
		ctx:    ctx,
		cancel: cancel,
		stats:  shared.NewCell(Stats{}),
	}
	s.Native.stats = s.count
	s.Py.stats = s.count
	s.arena = s.seed()
	return s
}

func (s *Shared) seed() *env.Arena {
	a := env.NewArena()
	for name, ctx := range env.SeedPyModules(a) {
		s.Py.Put(name, ctx)
	}
	return a
}

func (s *Shared) count(hit bool, st State) {
	s.stats.Update(func(old Stats) Stats {
		if hit {
			old.Hits++
		} else {
			old.Misses++
		}
		if st == Failed {
			old.Failed++
		}
		return old
	})
}

// Stats returns a snapshot of the request counts.
func (s *Shared) Stats() Stats { return s.stats.Get() }

// Arena returns the arena in which modules are elaborated.
func (s *Shared) Arena() *env.Arena {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.arena
}

// Diagnostics returns the diagnostics of the native module path and
// of the modules it imports, transitively, each module after those it
// imports.
func (s *Shared) Diagnostics(path string) diag.List {
	var out diag.List
	for _, p := range s.Graph.Order(path) {
		if e, ok := s.Native.Lookup(p); ok && e.State() != Loading {
			out = append(out, e.Diags...)
		}
	}
	return out
}

// Context returns a context that is done once s is closed, combined
// with parent.
func (s *Shared) Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Done returns a channel that is closed when s is closed.
func (s *Shared) Done() <-chan struct{} { return s.ctx.Done() }

// ClearAll returns every cache to its initial state: a fresh arena,
// empty native cache and graph, and freshly seeded Python modules.
// It is used when the whole workspace must be elaborated again.
func (s *Shared) ClearAll() {
	s.Native.clear()
	s.Py.clear()
	s.Graph.Clear()
	a := s.seed()
	s.mu.Lock()
	s.arena = a
	s.mu.Unlock()
	s.stats.Update(func(Stats) Stats { return Stats{} })
	if s.Log != nil {
		s.Log.Printf("cleared all module caches")
	}
}

// Close cancels the elaborations in flight, which abandon their
// entries as Failed, and makes further requests fail with ErrClosed.
func (s *Shared) Close() {
	s.cancel()
	s.Native.close()
	s.Py.close()
}
