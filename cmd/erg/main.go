// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The erg command compiles and runs Erg programs.
//
// Usage:
//
//	erg [flags] [mode] [file...]
//
// The mode is one of lex, parse, compile, exec, read, or repl. With no
// arguments, erg starts a read-eval-print loop; with only -c, it runs
// the given program. Without a file, the input is read from standard
// input. The compile mode accepts several files, which are compiled
// concurrently.
package main // import "go.erg.dev/cmd/erg"

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"

	"golang.org/x/term"

	"go.erg.dev/build"
	"go.erg.dev/config"
	"go.erg.dev/repl"
)

// flags
var (
	cpuprofile = flag.String("cpuprofile", "", "gather Go CPU profile in this file")
	memprofile = flag.String("memprofile", "", "gather Go memory profile in this file")
	execprog   = flag.String("c", "", "compile program `prog` instead of a file")
	output     = flag.String("o", "", "write the compiled artifact to `file`")
	python     = flag.String("python", "python3", "Python interpreter used by exec and repl")
	root       = flag.String("root", "", "installation root (default $"+config.RootEnv+" or the executable's)")
	verbose    = flag.Bool("v", false, "trace module elaboration")
	quiet      = flag.Bool("q", false, "suppress warnings")
	color      = flag.String("color", "auto", "colorize diagnostics: always, never, or auto")
)

func main() {
	os.Exit(doMain())
}

func doMain() int {
	log.SetPrefix("erg: ")
	log.SetFlags(0)
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		check(err)
		err = pprof.StartCPUProfile(f)
		check(err)
		defer func() {
			pprof.StopCPUProfile()
			err := f.Close()
			check(err)
		}()
	}
	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		check(err)
		defer func() {
			runtime.GC()
			err := pprof.Lookup("heap").WriteTo(f, 0)
			check(err)
			err = f.Close()
			check(err)
		}()
	}

	build.Register(config.REPL, repl.Loop{})

	args := flag.Args()
	var mode config.Mode
	switch {
	case len(args) == 0 && *execprog == "":
		mode = config.REPL
	case len(args) == 0:
		mode = config.Exec
	default:
		mode, args = config.Mode(args[0]), args[1:]
	}

	var input config.Input
	switch {
	case *execprog != "":
		input = config.String("cmdline", *execprog)
	case len(args) == 0 || args[0] == "-":
		input = config.Stdin()
	default:
		input = config.File(args[0])
	}

	cfg := config.Default(input)
	cfg.Mode = mode
	cfg.Output = *output
	cfg.Python = *python
	cfg.Verbose = *verbose
	cfg.Quiet = *quiet
	if *root != "" {
		cfg.Root = *root
	}
	switch *color {
	case "always":
		cfg.Color = true
	case "auto":
		cfg.Color = term.IsTerminal(int(os.Stderr.Fd()))
	case "never":
	default:
		log.Printf("invalid -color value %q", *color)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if mode == config.REPL {
		// The loop handles interrupts itself.
		stop()
		ctx = context.Background()
		fmt.Printf("Erg (target Python %s)\n", config.TargetVersion)
	}

	if mode == config.Compile && len(args) > 1 {
		if *output != "" {
			log.Print("-o cannot be used with several files")
			return 1
		}
		return build.CompileFiles(ctx, cfg, args, build.Std())
	}
	if len(args) > 1 {
		log.Printf("%s mode wants at most one file name", mode)
		return 1
	}
	return build.Dispatch(ctx, cfg, build.Std())
}

func check(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
