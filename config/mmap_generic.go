// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build (!linux && !darwin && !dragonfly && !freebsd && !netbsd && !solaris) || nommap
// +build !linux,!darwin,!dragonfly,!freebsd,!netbsd,!solaris nommap

package config

import "os"

const hasMmap = false

func readFile(name string) ([]byte, error) { return os.ReadFile(name) }
