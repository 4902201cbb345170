// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package env defines Contexts, the nested name and type environments
// of Erg programs, and seeds the builtin and Python-interop modules.
//
// Contexts live in an Arena and refer to their parent by ID, so the
// parent link is never an owning pointer. A Context is mutated only
// by the elaboration that created it; once frozen it may be shared
// read-only between goroutines.
package env // import "go.erg.dev/env"

import (
	"fmt"
	"sync"

	"fortio.org/safecast"
	"github.com/pkg/errors"

	"go.erg.dev/syntax"
	"go.erg.dev/types"
)

const debug = false

// An ID identifies a Context within its Arena. The zero ID is invalid.
type ID uint32

// IsValid reports whether id refers to a Context.
func (id ID) IsValid() bool { return id != 0 }

// A Kind classifies Contexts.
type Kind uint8

const (
	Main          Kind = iota // the module being compiled
	ModuleKind                // an imported native module
	BuiltinModule             // the universe, or a seeded module
	PyModule                  // a Python module
	Class                     // the methods and fields of a class
	Trait
	Method // the body of a method
	Subr   // the body of a function, procedure, or lambda
)

var kindNames = [...]string{
	Main:          "main",
	ModuleKind:    "module",
	BuiltinModule: "builtin module",
	PyModule:      "python module",
	Class:         "class",
	Trait:         "trait",
	Method:        "method",
	Subr:          "subroutine",
}

func (k Kind) String() string { return kindNames[k] }

// A VarKind says how a binding came into existence.
type VarKind uint8

const (
	Defined VarKind = iota // by a definition in source
	Builtin                // by the compiler
	Alias                  // by a definition whose right side is a name
	Param                  // as a subroutine parameter
	Field                  // as a field of a class or record
	Import                 // by an import expression
	Declared               // by a declaration without definition
)

var varKindNames = [...]string{
	Defined:  "defined",
	Builtin:  "builtin",
	Alias:    "alias",
	Param:    "parameter",
	Field:    "field",
	Import:   "import",
	Declared: "declared",
}

func (k VarKind) String() string { return varKindNames[k] }

// A VarRef is a stable handle on a binding: the index of the binding
// within its Context.
type VarRef struct {
	Ctx   ID
	Index int
}

// IsValid reports whether r refers to a binding.
func (r VarRef) IsValid() bool { return r.Ctx.IsValid() }

// VarInfo records what is known about a binding.
type VarInfo struct {
	Name       string
	Type       types.Type
	Mutability syntax.Mutability
	Visibility syntax.Visibility
	Kind       VarKind
	PyName     string // backing Python identifier, if it differs from Name
	Def        syntax.Position
	Ref        VarRef
	Impl       ID // for types, the Context of methods; for imports, the module
}

// Procedural reports whether the binding carries the '!' sigil.
func (v *VarInfo) Procedural() bool { return syntax.IsProcedural(v.Name) }

// Public reports whether other modules may see the binding.
func (v *VarInfo) Public() bool { return v.Visibility == syntax.Public }

// Target returns the identifier the binding has in emitted Python.
func (v *VarInfo) Target() string {
	if v.PyName != "" {
		return v.PyName
	}
	return v.Name
}

func (v *VarInfo) String() string { return fmt.Sprintf("%s: %s", v.Name, v.Type) }

// A Context is a scoped namespace.
type Context struct {
	ID     ID
	Name   string
	Kind   Kind
	Parent ID // zero for the universe
	Path   string

	arena    *Arena
	vars     []*VarInfo       // insertion order
	names    map[string][]int // indices into vars; several for overloads
	types    map[string]types.Type
	children []ID
	frozen   bool
}

// Vars returns the bindings of c in insertion order.
func (c *Context) Vars() []*VarInfo { return c.vars }

// Children returns the Contexts nested within c, in creation order.
func (c *Context) Children() []ID { return c.children }

// Frozen reports whether c has been frozen.
func (c *Context) Frozen() bool { return c.frozen }

// Freeze marks c and its descendants read-only.
func (c *Context) Freeze() {
	if c.frozen {
		return
	}
	c.frozen = true
	for _, id := range c.children {
		c.arena.Get(id).Freeze()
	}
}

// Arena returns the arena holding c.
func (c *Context) Arena() *Arena { return c.arena }

// ParentContext returns the enclosing Context, or nil.
func (c *Context) ParentContext() *Context {
	if !c.Parent.IsValid() {
		return nil
	}
	return c.arena.Get(c.Parent)
}

func (c *Context) String() string { return fmt.Sprintf("<%s %s>", c.Kind, c.Name) }

// An Arena holds Contexts by ID. It is safe for concurrent use; each
// Context it holds is not, until frozen.
type Arena struct {
	mu       sync.RWMutex
	ctxs     []*Context
	modules  map[modKey]ID
	impls    map[types.Type]ID // nominal or primitive type -> methods
	universe *Context
}

type modKey struct {
	path string
	py   bool
}

// NewArena returns an arena whose first Context is the universe of
// builtins.
func NewArena() *Arena {
	a := &Arena{
		modules: make(map[modKey]ID),
		impls:   make(map[types.Type]ID),
	}
	a.universe = a.New("<builtins>", BuiltinModule, 0, 64)
	seedUniverse(a.universe)
	a.universe.Freeze()
	return a
}

// Universe returns the Context of builtins, the root of every chain.
func (a *Arena) Universe() *Context { return a.universe }

// New allocates a Context. A zero parent denotes the universe, except
// for the universe itself.
func (a *Arena) New(name string, kind Kind, parent ID, capacity int) *Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	n, err := safecast.Conv[uint32](len(a.ctxs) + 1)
	if err != nil {
		panic(fmt.Errorf("context arena overflow: %w", err))
	}
	if !parent.IsValid() && a.universe != nil {
		parent = a.universe.ID
	}
	c := &Context{
		ID:     ID(n),
		Name:   name,
		Kind:   kind,
		Parent: parent,
		arena:  a,
		vars:   make([]*VarInfo, 0, capacity),
		names:  make(map[string][]int, capacity),
	}
	a.ctxs = append(a.ctxs, c)
	if parent.IsValid() {
		p := a.ctxs[parent-1]
		p.children = append(p.children, c.ID)
	}
	if debug {
		fmt.Printf("new context %d %s (%s) in %d\n", c.ID, name, kind, parent)
	}
	return c
}

// Get returns the Context with the given ID.
func (a *Arena) Get(id ID) *Context {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !id.IsValid() || int(id) > len(a.ctxs) {
		panic(errors.Errorf("invalid context id %d", id))
	}
	return a.ctxs[id-1]
}

// Len returns the number of Contexts in a.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.ctxs)
}

// Var returns the binding denoted by ref.
func (a *Arena) Var(ref VarRef) *VarInfo {
	return a.Get(ref.Ctx).vars[ref.Index]
}

// Module returns a fresh Context for the native module at path.
func (a *Arena) Module(path string, capacity int) *Context {
	c := a.New(path, ModuleKind, 0, capacity)
	c.Path = path
	a.mu.Lock()
	a.modules[modKey{path, false}] = c.ID
	a.mu.Unlock()
	return c
}

// MainModule returns a fresh Context for the module being compiled.
func (a *Arena) MainModule(path string, capacity int) *Context {
	c := a.Module(path, capacity)
	c.Kind = Main
	return c
}

// BuiltinModule returns a fresh Context for a Python module whose
// contents the compiler describes itself.
func (a *Arena) BuiltinModule(name string, capacity int) *Context {
	c := a.New(name, BuiltinModule, 0, capacity)
	c.Path = name
	a.mu.Lock()
	a.modules[modKey{name, true}] = c.ID
	a.mu.Unlock()
	return c
}

// PyModule returns a fresh Context for a Python module described by a
// declaration file.
func (a *Arena) PyModule(name string, capacity int) *Context {
	c := a.BuiltinModule(name, capacity)
	c.Kind = PyModule
	return c
}

// LookupModule returns the Context of a module created by Module,
// BuiltinModule, or PyModule.
func (a *Arena) LookupModule(path string, py bool) (*Context, bool) {
	a.mu.RLock()
	id, ok := a.modules[modKey{path, py}]
	a.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return a.Get(id), true
}

// Forget removes a module from the index, so that the next import of
// it creates a fresh Context.
func (a *Arena) Forget(path string, py bool) {
	a.mu.Lock()
	delete(a.modules, modKey{path, py})
	a.mu.Unlock()
}

// Impl returns the Context holding the methods of type t.
func (a *Arena) Impl(t types.Type) (*Context, bool) {
	a.mu.RLock()
	id, ok := a.impls[t]
	a.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return a.Get(id), true
}

func (a *Arena) setImpl(t types.Type, id ID) {
	a.mu.Lock()
	a.impls[t] = id
	a.mu.Unlock()
}
