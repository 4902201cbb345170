// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stdlib holds the native modules built into the compiler.
// They are elaborated like any other module, from embedded source.
package stdlib // import "go.erg.dev/stdlib"

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed lib
var lib embed.FS

// Prefix is prepended to the path of a builtin module to form the
// file name that appears in its diagnostics.
const Prefix = "<std>/"

// Source returns the file name and source text of the builtin module
// at path, such as "consts/physics".
func Source(modpath string) (filename string, src []byte, ok bool) {
	if modpath == "" || !fs.ValidPath(modpath) {
		return "", nil, false
	}
	src, err := lib.ReadFile(path.Join("lib", modpath+".er"))
	if err != nil {
		return "", nil, false
	}
	return Prefix + modpath + ".er", src, true
}

// Names returns the paths of the builtin modules, sorted.
func Names() []string {
	var names []string
	fs.WalkDir(lib, "lib", func(p string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() && strings.HasSuffix(p, ".er") {
			names = append(names, strings.TrimSuffix(strings.TrimPrefix(p, "lib/"), ".er"))
		}
		return nil
	})
	sort.Strings(names)
	return names
}
