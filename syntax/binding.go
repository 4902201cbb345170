// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import "strings"

// This file defines binding attributes that the syntax tree determines
// and later passes record on each variable.

// The Visibility of a binding says whether other modules may see it.
type Visibility uint8

const (
	Private Visibility = iota // default
	Public                    // declared with the '.' sigil
)

var visibilityNames = [...]string{
	Private: "private",
	Public:  "public",
}

func (v Visibility) String() string { return visibilityNames[v] }

// The Mutability of a binding says whether it may be reassigned.
type Mutability uint8

const (
	Immutable Mutability = iota // x = ...
	Const                       // x! = ...; reassignable in place
)

var mutabilityNames = [...]string{
	Immutable: "immutable",
	Const:     "mutable",
}

func (m Mutability) String() string { return mutabilityNames[m] }

// IsProcedural reports whether name carries the '!' sigil that marks
// procedures and mutable bindings.
func IsProcedural(name string) bool { return strings.HasSuffix(name, "!") }

// MutabilityOf returns the mutability implied by a binder's name.
func MutabilityOf(name string) Mutability {
	if IsProcedural(name) {
		return Const
	}
	return Immutable
}

// IsTypeName reports whether name is conventionally a type or class
// name, that is, whether it begins with an upper-case ASCII letter.
func IsTypeName(name string) bool {
	return name != "" && 'A' <= name[0] && name[0] <= 'Z'
}
