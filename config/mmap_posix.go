// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build (linux || darwin || dragonfly || freebsd || netbsd || solaris) && !nommap
// +build linux darwin dragonfly freebsd netbsd solaris
// +build !nommap

package config

// This file reads source files by mapping them into memory. The
// mapping is copied out and released before returning, so callers
// own the result and no mapping outlives the call.

import (
	"os"

	"golang.org/x/sys/unix"
)

const hasMmap = true

func readFile(name string) ([]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if size == 0 || !fi.Mode().IsRegular() || int64(int(size)) != size {
		return os.ReadFile(name)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return os.ReadFile(name) // e.g. a file system without mmap support
	}
	src := make([]byte, len(data))
	copy(src, data)
	if err := unix.Munmap(data); err != nil {
		return nil, err
	}
	return src, nil
}
