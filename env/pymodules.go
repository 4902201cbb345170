// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package env

import (
	"sort"

	"go.erg.dev/types"
)

// The Python modules whose interfaces the compiler knows without a
// declaration file. Procedures (names ending in '!') are the Python
// functions with observable effects.
var pySeeds = map[string]func(*Context){
	"glob":      seedGlob,
	"importlib": seedImportlib,
	"io":        seedIO,
	"math":      seedMath,
	"os":        seedOS,
	"random":    seedRandom,
	"re":        seedRe,
	"sys":       seedSys,
	"time":      seedTime,
}

// PyModuleNames returns the names of the builtin Python modules, sorted.
func PyModuleNames() []string {
	names := make([]string, 0, len(pySeeds))
	for name := range pySeeds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SeedPyModules creates the builtin Python modules in a, freezes them,
// and returns them by name.
func SeedPyModules(a *Arena) map[string]*Context {
	out := make(map[string]*Context, len(pySeeds))
	for _, name := range PyModuleNames() {
		c := a.BuiltinModule(name, 8)
		pySeeds[name](c)
		c.Freeze()
		out[name] = c
	}
	return out
}

var (
	kw      = types.Kw
	strs    = types.ArrayT(types.Str, types.Erased)
	noParam []types.Param
)

func seedGlob(c *Context) {
	c.RegisterBuiltinPyImpl("glob!", types.Proc([]types.Param{kw("pathname", types.Str)}, nil,
		[]types.Param{kw("recursive", types.Bool)}, strs), imm, pub, "glob")
	c.RegisterBuiltinPyImpl("escape", types.Func1(types.Str, types.Str), imm, pub, "escape")
}

func seedImportlib(c *Context) {
	c.RegisterBuiltinPyImpl("reload!", types.Proc1(types.GenericModule, types.NoneType), imm, pub, "reload")
	c.RegisterBuiltinPyImpl("import_module!", types.Proc1(types.Str, types.GenericModule), imm, pub, "import_module")
}

func seedIO(c *Context) {
	sio, body := c.builtinClass("StringIO!", "StringIO", 4)
	v, _ := c.LookupLocal("StringIO!")
	SetInit(v, types.Func(nil, nil, []types.Param{kw("initial_value", types.Str)}, sio))
	body.RegisterBuiltinPyImpl("getvalue!", types.Pr0Met(sio, nil, types.Str), imm, pub, "getvalue")
	body.RegisterBuiltinPyImpl("read!", types.Pr0Met(sio, nil, types.Str), imm, pub, "read")
	write := types.Proc([]types.Param{kw("s", types.Str)}, nil, nil, types.Nat)
	write.Self = sio
	body.RegisterBuiltinPyImpl("write!", write, imm, pub, "write")
	body.RegisterBuiltinPyImpl("close!", types.Pr0Met(sio, nil, types.NoneType), imm, pub, "close")
}

func seedMath(c *Context) {
	for _, name := range []string{"pi", "e", "tau", "inf"} {
		c.RegisterBuiltinImpl(name, types.Float, imm, pub)
	}
	for _, name := range []string{"sqrt", "sin", "cos", "tan", "exp"} {
		c.RegisterBuiltinImpl(name, types.Func1(types.Float, types.Float), imm, pub)
	}
	c.RegisterBuiltinImpl("floor", types.Func1(types.Float, types.Int), imm, pub)
	c.RegisterBuiltinImpl("ceil", types.Func1(types.Float, types.Int), imm, pub)
	c.RegisterBuiltinImpl("log", types.Func([]types.Param{kw("x", types.Float)}, nil,
		[]types.Param{kw("base", types.Float)}, types.Float), imm, pub)
	c.RegisterBuiltinImpl("gcd", types.Func([]types.Param{kw("a", types.Int), kw("b", types.Int)}, nil, nil, types.Nat), imm, pub)
}

func seedOS(c *Context) {
	optStr := &types.Or{L: types.Str, R: types.NoneType}
	c.RegisterBuiltinPyImpl("getcwd!", types.Proc0(types.Str), imm, pub, "getcwd")
	c.RegisterBuiltinPyImpl("getenv!", types.Proc([]types.Param{kw("key", types.Str)}, nil,
		[]types.Param{kw("default", types.Str)}, optStr), imm, pub, "getenv")
	c.RegisterBuiltinPyImpl("listdir!", types.Proc(noParam, nil, []types.Param{kw("path", types.Str)}, strs), imm, pub, "listdir")
	c.RegisterBuiltinPyImpl("remove!", types.Proc1(types.Str, types.NoneType), imm, pub, "remove")
	c.RegisterBuiltinImpl("sep", types.Str, imm, pub)
	c.RegisterBuiltinImpl("name", types.Str, imm, pub)
}

func seedRandom(c *Context) {
	c.RegisterBuiltinPyImpl("random!", types.Proc0(types.Float), imm, pub, "random")
	c.RegisterBuiltinPyImpl("randint!", types.Proc([]types.Param{kw("a", types.Int), kw("b", types.Int)}, nil, nil, types.Int), imm, pub, "randint")
	c.RegisterBuiltinPyImpl("seed!", types.Proc1(types.Int, types.NoneType), imm, pub, "seed")
	c.RegisterBuiltinPyImpl("choice!", types.Proc1(types.ArrayT(types.Obj, types.Erased), types.Obj), imm, pub, "choice")
}

func seedRe(c *Context) {
	c.RegisterBuiltinImpl("sub", types.Func(
		[]types.Param{kw("pattern", types.Str), kw("repl", types.Str), kw("string", types.Str)}, nil,
		[]types.Param{kw("count", types.Nat)}, types.Str), imm, pub)
	c.RegisterBuiltinImpl("split", types.Func([]types.Param{kw("pattern", types.Str), kw("string", types.Str)}, nil, nil, strs), imm, pub)
	c.RegisterBuiltinImpl("escape", types.Func1(types.Str, types.Str), imm, pub)
}

func seedSys(c *Context) {
	c.RegisterBuiltinImpl("argv", strs, imm, pub)
	c.RegisterBuiltinImpl("version", types.Str, imm, pub)
	c.RegisterBuiltinImpl("platform", types.Str, imm, pub)
	c.RegisterBuiltinPyImpl("exit!", types.Proc(noParam, nil, []types.Param{kw("code", types.Int)}, types.Never), imm, pub, "exit")
}

func seedTime(c *Context) {
	c.RegisterBuiltinPyImpl("sleep!", types.Proc1(types.Float, types.NoneType), imm, pub, "sleep")
	c.RegisterBuiltinPyImpl("time!", types.Proc0(types.Float), imm, pub, "time")
	c.RegisterBuiltinPyImpl("perf_counter!", types.Proc0(types.Float), imm, pub, "perf_counter")
	c.RegisterBuiltinPyImpl("monotonic!", types.Proc0(types.Float), imm, pub, "monotonic")
}
