// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package elab

import (
	"context"

	"github.com/pkg/errors"

	"go.erg.dev/config"
	"go.erg.dev/env"
	"go.erg.dev/modcache"
	"go.erg.dev/syntax"
)

// Main elaborates the input as the main module of a compile. It goes
// through the native cache like any import, so that a dependency that
// imports it back is reported as a cycle; any previous elaboration of
// the input is discarded first. The diagnostics of the result include
// those of every module the input imports.
//
// A nil HIR in the result means the input did not parse.
func Main(ctx context.Context, s *modcache.Shared, in config.Input) (*Result, error) {
	src, err := in.Read()
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", in.Name)
	}
	key := ModuleKey(in.Name)
	s.Native.Invalidate(key)
	e, err := s.Native.GetOrElaborate(ctx, "", key, func(ctx context.Context, e *modcache.Entry) error {
		return elaborateFile(ctx, s, e, in.Name, src, env.Main)
	})
	if err != nil {
		return nil, err
	}
	if e.Err != nil {
		return nil, e.Err
	}
	return &Result{HIR: e.HIR, Context: e.Ctx, Diags: s.Diagnostics(key)}, nil
}

// An Elaborator elaborates successive chunks of source into one
// module, as an interactive session does. The bindings of a chunk
// remain visible to later chunks, even if the chunk had errors.
type Elaborator struct {
	el *elaborator
}

// NewElaborator returns an Elaborator of the main module named path.
// Relative imports are resolved against the working directory.
func NewElaborator(ctx context.Context, s *modcache.Shared, path string) *Elaborator {
	mod := s.Arena().MainModule(path, 16)
	return &Elaborator{el: newElaborator(ctx, s, mod, ".")}
}

// Elaborate elaborates the parsed chunk f.
func (e *Elaborator) Elaborate(f *syntax.File) *Result {
	e.el.diags = nil
	return e.el.run(f)
}

// Context returns the module Context of the session.
func (e *Elaborator) Context() *env.Context { return e.el.mod }
