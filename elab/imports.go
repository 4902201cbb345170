// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package elab

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"go.erg.dev/config"
	"go.erg.dev/diag"
	"go.erg.dev/env"
	"go.erg.dev/hir"
	"go.erg.dev/modcache"
	"go.erg.dev/stdlib"
	"go.erg.dev/syntax"
	"go.erg.dev/types"
)

// A NotFoundError reports an import that no search directory satisfies.
type NotFoundError struct {
	Path     string
	Py       bool
	Searched []string
}

func (e *NotFoundError) Error() string {
	if e.Py {
		return fmt.Sprintf("no Python module named %q", e.Path)
	}
	return fmt.Sprintf("module %q not found", e.Path)
}

// An imported is the outcome of loading one import.
type imported struct {
	key   string // cache key of the module
	entry *modcache.Entry
	err   error
}

// ModuleKey returns the cache key of the module in the named file.
func ModuleKey(filename string) string {
	return strings.TrimSuffix(filepath.ToSlash(filepath.Clean(filename)), ".er")
}

// prefetch loads the imports of f concurrently, before elaboration
// needs them. Each load only reads the shared caches, so the results
// are recorded and reported by importExpr in source order.
func (el *elaborator) prefetch(f *syntax.File) {
	var xs []*syntax.ImportExpr
	syntax.Walk(f, func(n syntax.Node) bool {
		if x, ok := n.(*syntax.ImportExpr); ok {
			if _, done := el.imports[x]; !done {
				xs = append(xs, x)
			}
		}
		return true
	})
	if len(xs) == 0 {
		return
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(el.ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, x := range xs {
		x := x
		g.Go(func() error {
			res := el.load(ctx, x)
			mu.Lock()
			el.imports[x] = res
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
}

// load resolves and elaborates the module named by x. It is safe to
// call concurrently.
func (el *elaborator) load(ctx context.Context, x *syntax.ImportExpr) *imported {
	path, _ := x.Path.Value.(string)
	if x.Py {
		return el.loadPy(ctx, path)
	}
	return el.loadNative(ctx, path)
}

func (el *elaborator) loadNative(ctx context.Context, path string) *imported {
	filename, src, key, err := el.findNative(path)
	if err != nil {
		return &imported{key: path, err: err}
	}
	e, err := el.shared.Native.GetOrElaborate(ctx, el.mod.Path, key, func(ctx context.Context, e *modcache.Entry) error {
		return elaborateFile(ctx, el.shared, e, filename, src, env.ModuleKind)
	})
	return &imported{key: key, entry: e, err: err}
}

// findNative searches for the native module at path: first among the
// builtin modules, then relative to the importing file, then in the
// standard library and external directories of the configuration.
func (el *elaborator) findNative(path string) (filename string, src []byte, key string, err error) {
	if filename, src, ok := stdlib.Source(path); ok {
		return filename, src, path, nil
	}
	cfg := el.shared.Config
	dirs := []struct {
		dir   string
		local bool
	}{
		{el.dir, true},
		{cfg.StdPath(), false},
		{cfg.ExternalPath(), false},
	}
	var searched []string
	for _, d := range dirs {
		name := filepath.Join(d.dir, filepath.FromSlash(path)+".er")
		searched = append(searched, name)
		if _, err := os.Stat(name); err != nil {
			continue
		}
		src, err := config.File(name).Read()
		if err != nil {
			return "", nil, "", errors.Wrapf(err, "reading module %s", path)
		}
		key := path
		if d.local {
			key = ModuleKey(name)
		}
		return name, src, key, nil
	}
	return "", nil, "", &NotFoundError{Path: path, Searched: searched}
}

// loadPy loads a Python module: a builtin seed, or the declaration
// stub {PyStdPath}/name.d.er elaborated as a Python module.
func (el *elaborator) loadPy(ctx context.Context, name string) *imported {
	if _, ok := el.shared.Py.Lookup(name); !ok {
		stub := filepath.Join(el.shared.Config.PyStdPath(), filepath.FromSlash(name)+".d.er")
		if _, err := os.Stat(stub); err != nil {
			return &imported{key: name, err: &NotFoundError{Path: name, Py: true, Searched: []string{stub}}}
		}
	}
	e, err := el.shared.Py.GetOrElaborate(ctx, "", name, func(ctx context.Context, e *modcache.Entry) error {
		stub := filepath.Join(el.shared.Config.PyStdPath(), filepath.FromSlash(name)+".d.er")
		src, err := config.File(stub).Read()
		if err != nil {
			return errors.Wrapf(err, "reading declarations of %s", name)
		}
		return elaborateFile(ctx, el.shared, e, stub, src, env.PyModule)
	})
	return &imported{key: name, entry: e, err: err}
}

// elaborateFile parses and elaborates the module of entry e.
func elaborateFile(ctx context.Context, s *modcache.Shared, e *modcache.Entry, filename string, src []byte, kind env.Kind) error {
	f, err := syntax.Parse(filename, src, 0)
	if err != nil {
		e.Diags = diag.FromSyntax(err)
		e.Diags.SetInput(filename)
		return nil
	}
	r := elaborate(ctx, s, e.Path, f, kind)
	e.Ctx, e.HIR, e.Diags = r.Context, r.HIR, r.Diags
	return nil
}

// importExpr binds the result of an import, reporting why it failed
// if it did. An import of a module that itself has errors is bound
// silently to a value of type ?: the errors are reported there.
func (el *elaborator) importExpr(x *syntax.ImportExpr) hir.Expr {
	path, _ := x.Path.Value.(string)
	out := &hir.Import{Pos: x.ImportPos, Path: path, Py: x.Py, T: types.Failure}
	res, ok := el.imports[x]
	if !ok {
		res = el.load(el.ctx, x)
		el.imports[x] = res
	}
	err := res.err
	if err == nil && res.entry.Err != nil {
		err = res.entry.Err
	}

	var (
		cycle    *modcache.CycleError
		notFound *NotFoundError
	)
	switch {
	case errors.As(err, &cycle):
		el.errorf(diag.ImportCycle, x.ImportPos, "%v", cycle)
	case errors.As(err, &notFound):
		d := el.errorf(diag.ImportNotFound, syntax.Start(x.Path), "%v", notFound)
		for _, s := range notFound.Searched {
			d.WithSub("searched %s", s)
		}
	case err != nil:
		el.internal(x.ImportPos, err)
	case res.entry.State() == modcache.Ready:
		out.Path = res.key
		out.T = &types.Module{Path: res.key, Py: x.Py}
	}
	return out
}
