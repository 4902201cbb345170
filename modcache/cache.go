// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package modcache coordinates the elaboration of the modules of a
// compile: a Cache memoizes each module's Context and HIR, ensures
// that at most one elaboration of a module runs at a time, and refuses
// imports that would close a cycle in the module Graph.
package modcache // import "go.erg.dev/modcache"

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"go.erg.dev/diag"
	"go.erg.dev/env"
	"go.erg.dev/hir"
	"go.erg.dev/syntax"
)

// ErrClosed is returned by a Cache whose Shared resource was closed.
var ErrClosed = errors.New("module cache closed")

// A State is the stage of a cache entry.
type State uint8

const (
	Loading State = iota // being elaborated
	Ready                // elaborated without errors
	Failed               // elaborated with errors, or abandoned
)

var stateNames = [...]string{
	Loading: "loading",
	Ready:   "ready",
	Failed:  "failed",
}

func (s State) String() string { return stateNames[s] }

// An Entry is the memoized result of elaborating one module.
// Its fields other than Path are set by the elaboration and must
// not be read before Wait returns.
type Entry struct {
	Path  string
	Ctx   *env.Context
	HIR   *hir.Module
	Diags diag.List
	Err   error // internal error or cancellation, if any

	state State
	ready chan struct{}
}

// State returns the stage of e. It is Loading until Wait returns.
func (e *Entry) State() State {
	select {
	case <-e.ready:
		return e.state
	default:
		return Loading
	}
}

// Wait blocks until e is no longer Loading or ctx is done.
func (e *Entry) Wait(ctx context.Context) error {
	select {
	case <-e.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// An ElabFunc elaborates a module, filling in the Ctx, HIR and Diags
// of its entry. An error return marks the entry Failed.
type ElabFunc func(ctx context.Context, e *Entry) error

// A Cache is a concurrency-safe, duplicate-suppressing cache of module
// elaborations.
type Cache struct {
	name  string
	graph *Graph // nil for caches of modules without imports
	log   *log.Logger
	stats func(hit bool, st State)

	mu      sync.Mutex
	entries map[string]*Entry
	closed  bool
}

// NewCache returns an empty cache. Import edges are recorded in graph
// if it is non-nil; logger, if non-nil, traces entry transitions.
func NewCache(name string, graph *Graph, logger *log.Logger) *Cache {
	return &Cache{
		name:    name,
		graph:   graph,
		log:     logger,
		entries: make(map[string]*Entry),
	}
}

func (c *Cache) tracef(format string, args ...interface{}) {
	if c.log != nil {
		c.log.Printf("%s: %s", c.name, fmt.Sprintf(format, args...))
	}
}

// GetOrElaborate returns the entry of path once it is no longer
// Loading. The first request for path elaborates it by calling fn;
// concurrent requests wait for that elaboration to finish.
//
// If importer is non-empty, the import edge from importer to path is
// first added to the module graph; a *CycleError is returned if it
// would close a cycle, since waiting would then deadlock.
func (c *Cache) GetOrElaborate(ctx context.Context, importer, path string, fn ElabFunc) (*Entry, error) {
	if importer != "" && c.graph != nil {
		if err := c.graph.AddImport(importer, path); err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	e := c.entries[path]
	if e != nil {
		c.mu.Unlock()
		// Some other goroutine is elaborating this module,
		// or has done so. Wait for it to become ready.
		if err := e.Wait(ctx); err != nil {
			return nil, c.cancelled(err)
		}
		c.count(true, e.state)
		return e, nil
	}

	// First request for this module.
	e = &Entry{Path: path, ready: make(chan struct{})}
	c.entries[path] = e
	c.mu.Unlock()
	if c.graph != nil {
		c.graph.Remove(path)
	}
	c.tracef("%s: %s", path, Loading)

	err := c.run(ctx, e, fn)
	switch {
	case err != nil:
		e.Err = err
		e.state = Failed
	case ctx.Err() != nil:
		e.Err = c.cancelled(ctx.Err())
		e.state = Failed
	case e.Diags.HasErrors():
		e.state = Failed
	default:
		e.state = Ready
	}
	if e.Ctx != nil {
		e.Ctx.Freeze()
	}
	c.tracef("%s: %s", path, e.state)
	c.count(false, e.state)

	// Broadcast that the entry is now ready.
	close(e.ready)
	return e, nil
}

// run calls fn, converting a panic into an InternalError diagnostic.
func (c *Cache) run(ctx context.Context, e *Entry, fn ElabFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			perr, ok := r.(error)
			if !ok {
				perr = fmt.Errorf("%v", r)
			}
			e.Diags.Add(diag.Internal(syntax.Position{}, errors.Wrapf(perr, "elaborating %s", e.Path)))
			err = nil
		}
	}()
	return fn(ctx, e)
}

func (c *Cache) cancelled(err error) error {
	if errors.Is(err, context.Canceled) {
		return ErrClosed
	}
	return err
}

func (c *Cache) count(hit bool, st State) {
	if c.stats != nil {
		c.stats(hit, st)
	}
}

// Put adds an entry that is Ready without elaboration, such as a
// builtin module. It replaces any existing entry.
func (c *Cache) Put(path string, ctx *env.Context) *Entry {
	e := &Entry{Path: path, Ctx: ctx, state: Ready, ready: make(chan struct{})}
	close(e.ready)
	c.mu.Lock()
	c.entries[path] = e
	c.mu.Unlock()
	return e
}

// Lookup returns the entry of path, if any, without waiting.
func (c *Cache) Lookup(path string) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	return e, ok
}

// Paths returns the paths of the cached modules, sorted.
func (c *Cache) Paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	paths := make([]string, 0, len(c.entries))
	for p := range c.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Invalidate removes path and every module that imports it, so that
// their next request elaborates them again. Loading entries are left
// alone.
func (c *Cache) Invalidate(path string) {
	paths := []string{path}
	if c.graph != nil {
		paths = append(paths, c.graph.Dependents(path)...)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range paths {
		if e, ok := c.entries[p]; ok && e.State() != Loading {
			delete(c.entries, p)
		}
	}
}

// clear empties the cache.
func (c *Cache) clear() {
	c.mu.Lock()
	c.entries = make(map[string]*Entry)
	c.mu.Unlock()
}

func (c *Cache) close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}
