// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modcache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"go.erg.dev/config"
	"go.erg.dev/diag"
	"go.erg.dev/modcache"
	"go.erg.dev/syntax"
)

// fakeModules elaborates modules whose only content is a list of
// imports, counting the elaborations of each module.
type fakeModules struct {
	imports map[string][]string
	mu      sync.Mutex
	runs    map[string]int
}

func (f *fakeModules) elab(c *modcache.Cache) modcache.ElabFunc {
	var fn modcache.ElabFunc
	fn = func(ctx context.Context, e *modcache.Entry) error {
		f.mu.Lock()
		f.runs[e.Path]++
		f.mu.Unlock()
		time.Sleep(time.Millisecond)
		for _, imp := range f.imports[e.Path] {
			dep, err := c.GetOrElaborate(ctx, e.Path, imp, fn)
			var cycle *modcache.CycleError
			switch {
			case errors.As(err, &cycle):
				e.Diags.Errorf(diag.ImportCycle, syntax.Position{}, "%v", err)
			case err != nil:
				return err
			case dep.State() == modcache.Loading:
				return errors.New("dependency still loading")
			}
		}
		return nil
	}
	return fn
}

func TestDuplicateSuppression(t *testing.T) {
	f := &fakeModules{
		imports: map[string][]string{"b": {"a"}, "c": {"a"}},
		runs:    make(map[string]int),
	}
	c := modcache.NewCache("native", modcache.NewGraph(), nil)
	fn := f.elab(c)

	var wg sync.WaitGroup
	for _, name := range []string{"b", "c", "a", "b"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			e, err := c.GetOrElaborate(context.Background(), "", name, fn)
			if err != nil {
				t.Error(err)
				return
			}
			if e.State() != modcache.Ready {
				t.Errorf("%s: %s", name, e.State())
			}
		}(name)
	}
	wg.Wait()

	if diff := cmp.Diff(map[string]int{"a": 1, "b": 1, "c": 1}, f.runs); diff != "" {
		t.Errorf("elaborations (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"a", "b", "c"}, c.Paths())
}

func TestImportCycle(t *testing.T) {
	f := &fakeModules{
		imports: map[string][]string{"a": {"b"}, "b": {"c"}, "c": {"a"}},
		runs:    make(map[string]int),
	}
	c := modcache.NewCache("native", modcache.NewGraph(), nil)
	fn := f.elab(c)

	_, err := c.GetOrElaborate(context.Background(), "", "a", fn)
	require.NoError(t, err)

	var cycles []string
	for _, p := range c.Paths() {
		e, _ := c.Lookup(p)
		for _, d := range e.Diags {
			if d.Errno == diag.ImportCycle {
				cycles = append(cycles, d.Main)
			}
		}
	}
	require.Equal(t, []string{"import cycle: a -> b -> c -> a"}, cycles)

	e, _ := c.Lookup("c")
	require.Equal(t, modcache.Failed, e.State())
	e, _ = c.Lookup("a")
	require.Equal(t, modcache.Ready, e.State(), "a itself reported nothing")
}

func TestParallelCycle(t *testing.T) {
	// Elaborating b and c at once must not deadlock, and exactly one
	// of the three edges is refused.
	f := &fakeModules{
		imports: map[string][]string{"a": {"c"}, "b": {"a"}, "c": {"b"}},
		runs:    make(map[string]int),
	}
	c := modcache.NewCache("native", modcache.NewGraph(), nil)
	fn := f.elab(c)

	var wg sync.WaitGroup
	for _, name := range []string{"b", "c"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			if _, err := c.GetOrElaborate(context.Background(), "", name, fn); err != nil {
				t.Error(err)
			}
		}(name)
	}
	wg.Wait()

	n := 0
	for _, p := range c.Paths() {
		e, _ := c.Lookup(p)
		if e.Diags.Has(diag.ImportCycle) {
			n++
		}
	}
	require.Equal(t, 1, n)
}

func TestGraph(t *testing.T) {
	g := modcache.NewGraph()
	require.NoError(t, g.AddImport("main", "b"))
	require.NoError(t, g.AddImport("main", "a"))
	require.NoError(t, g.AddImport("b", "a"))

	err := g.AddImport("a", "main")
	var cycle *modcache.CycleError
	require.True(t, errors.As(err, &cycle))
	require.Equal(t, []string{"main", "a", "main"}, cycle.Path)

	require.EqualError(t, g.AddImport("a", "a"), "import cycle: a -> a")

	require.Equal(t, []string{"a", "b"}, g.Deps("main"))
	require.Equal(t, []string{"a", "b", "main"}, g.Order("main"))
	require.Equal(t, []string{"b", "main"}, g.Dependents("a"))

	g.Remove("main")
	require.Nil(t, g.Deps("main"))
	require.NoError(t, g.AddImport("a", "main"))
}

func TestInvalidate(t *testing.T) {
	f := &fakeModules{
		imports: map[string][]string{"b": {"a"}},
		runs:    make(map[string]int),
	}
	c := modcache.NewCache("native", modcache.NewGraph(), nil)
	fn := f.elab(c)
	_, err := c.GetOrElaborate(context.Background(), "", "b", fn)
	require.NoError(t, err)

	c.Invalidate("a")
	require.Empty(t, c.Paths())

	_, err = c.GetOrElaborate(context.Background(), "", "b", fn)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"a": 2, "b": 2}, f.runs)
}

func TestPanicBecomesInternalError(t *testing.T) {
	c := modcache.NewCache("native", nil, nil)
	e, err := c.GetOrElaborate(context.Background(), "", "m", func(context.Context, *modcache.Entry) error {
		panic("boom")
	})
	require.NoError(t, err)
	require.Equal(t, modcache.Failed, e.State())
	require.True(t, e.Diags.Has(diag.InternalError))
}

func TestClose(t *testing.T) {
	s := modcache.New(config.Default(config.String("m", "")), nil)

	started := make(chan struct{})
	var finished atomic.Bool
	slow := func(ctx context.Context, e *modcache.Entry) error {
		close(started)
		<-ctx.Done()
		finished.Store(true)
		return nil
	}

	ctx, cancel := s.Context(context.Background())
	defer cancel()
	done := make(chan *modcache.Entry)
	go func() {
		e, err := s.Native.GetOrElaborate(ctx, "", "slow", slow)
		if err != nil {
			t.Error(err)
		}
		done <- e
	}()
	<-started

	// A waiter on the same module observes the close.
	waitErr := make(chan error)
	go func() {
		_, err := s.Native.GetOrElaborate(ctx, "", "slow", slow)
		waitErr <- err
	}()

	s.Close()
	e := <-done
	require.True(t, finished.Load())
	require.Equal(t, modcache.Failed, e.State())
	require.True(t, errors.Is(e.Err, modcache.ErrClosed))
	require.True(t, errors.Is(<-waitErr, modcache.ErrClosed))

	_, err := s.Native.GetOrElaborate(context.Background(), "", "other", slow)
	require.True(t, errors.Is(err, modcache.ErrClosed))
}

func TestSharedSeedsAndClearAll(t *testing.T) {
	s := modcache.New(config.Default(config.String("m", "")), nil)
	defer s.Close()

	e, ok := s.Py.Lookup("glob")
	require.True(t, ok)
	require.Equal(t, modcache.Ready, e.State())
	_, ok = e.Ctx.LookupLocal("glob!")
	require.True(t, ok)

	before := s.Arena()
	s.Native.Put("x", before.Module("x", 0))
	s.ClearAll()
	require.NotSame(t, before, s.Arena())
	_, ok = s.Native.Lookup("x")
	require.False(t, ok)
	_, ok = s.Py.Lookup("time")
	require.True(t, ok)
	require.Equal(t, modcache.Stats{}, s.Stats())
}

func TestSharedDiagnosticsFollowImports(t *testing.T) {
	s := modcache.New(config.Default(config.String("m", "")), nil)
	defer s.Close()

	imports := map[string][]string{"main": {"a"}, "a": {"b"}, "b": nil, "unrelated": nil}
	var fn modcache.ElabFunc
	fn = func(ctx context.Context, e *modcache.Entry) error {
		for _, imp := range imports[e.Path] {
			if _, err := s.Native.GetOrElaborate(ctx, e.Path, imp, fn); err != nil {
				return err
			}
		}
		e.Diags.Errorf(diag.NameError, syntax.Position{}, "error in %s", e.Path)
		return nil
	}
	for _, path := range []string{"main", "unrelated"} {
		_, err := s.Native.GetOrElaborate(context.Background(), "", path, fn)
		require.NoError(t, err)
	}

	var got []string
	for _, d := range s.Diagnostics("main") {
		got = append(got, d.Main)
	}
	want := []string{"error in b", "error in a", "error in main"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("diagnostics (-want +got):\n%s", diff)
	}
}
