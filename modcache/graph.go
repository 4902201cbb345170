// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modcache

import (
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-set/v2"
)

// A CycleError reports an import that would close a cycle in the
// module graph. Path lists the modules around the cycle, starting and
// ending with the same module.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "import cycle: " + strings.Join(e.Path, " -> ")
}

// A Graph is the directed graph of import relations between modules.
// It is kept acyclic: an edge that would close a cycle is refused.
// A Graph is safe for concurrent use.
type Graph struct {
	mu    sync.Mutex
	edges map[string]*set.Set[string]
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{edges: make(map[string]*set.Set[string])}
}

// AddImport records that from imports to. If to already reaches from,
// it returns a *CycleError naming the cycle, from to back to itself,
// and leaves the graph unchanged.
func (g *Graph) AddImport(from, to string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if from == to {
		return &CycleError{Path: []string{from, from}}
	}
	if path := g.path(to, from); path != nil {
		return &CycleError{Path: append(path, to)}
	}
	deps, ok := g.edges[from]
	if !ok {
		deps = set.New[string](4)
		g.edges[from] = deps
	}
	deps.Insert(to)
	return nil
}

// path returns a path of edges from src to dst, both included, or nil.
// g.mu must be held.
func (g *Graph) path(src, dst string) []string {
	visited := set.New[string](len(g.edges))
	var find func(n string) []string
	find = func(n string) []string {
		if n == dst {
			return []string{n}
		}
		if !visited.Insert(n) {
			return nil
		}
		deps, ok := g.edges[n]
		if !ok {
			return nil
		}
		next := deps.Slice()
		sort.Strings(next) // deterministic cycle reports
		for _, m := range next {
			if p := find(m); p != nil {
				return append([]string{n}, p...)
			}
		}
		return nil
	}
	return find(src)
}

// Deps returns the direct imports of path, sorted.
func (g *Graph) Deps(path string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	deps, ok := g.edges[path]
	if !ok {
		return nil
	}
	out := deps.Slice()
	sort.Strings(out)
	return out
}

// Order returns path and its transitive imports, each module after
// every module it imports.
func (g *Graph) Order(path string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	done := set.New[string](len(g.edges))
	var out []string
	var visit func(n string)
	visit = func(n string) {
		if !done.Insert(n) {
			return
		}
		if deps, ok := g.edges[n]; ok {
			next := deps.Slice()
			sort.Strings(next)
			for _, m := range next {
				visit(m)
			}
		}
		out = append(out, n)
	}
	visit(path)
	return out
}

// Dependents returns the modules that transitively import path,
// sorted. These must be rebuilt when path changes.
func (g *Graph) Dependents(path string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	rev := make(map[string][]string)
	for from, deps := range g.edges {
		for _, to := range deps.Slice() {
			rev[to] = append(rev[to], from)
		}
	}
	seen := set.New[string](len(rev))
	var walk func(n string)
	walk = func(n string) {
		for _, m := range rev[n] {
			if seen.Insert(m) {
				walk(m)
			}
		}
	}
	walk(path)
	out := seen.Slice()
	sort.Strings(out)
	return out
}

// Remove deletes the outgoing edges of path, as when it is to be
// elaborated again.
func (g *Graph) Remove(path string) {
	g.mu.Lock()
	delete(g.edges, path)
	g.mu.Unlock()
}

// Clear removes every edge.
func (g *Graph) Clear() {
	g.mu.Lock()
	g.edges = make(map[string]*set.Set[string])
	g.mu.Unlock()
}
