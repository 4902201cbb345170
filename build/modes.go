// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package build

import (
	"context"
	"fmt"
	"os"

	"go.erg.dev/config"
	"go.erg.dev/diag"
	"go.erg.dev/internal/compile"
	"go.erg.dev/syntax"
)

// readInput returns the source of cfg.Input, and the input turned into
// a string input so that its diagnostics can show the source.
func readInput(cfg config.Config, std Streams) (config.Input, bool) {
	src, err := cfg.Input.Read()
	if err != nil {
		fmt.Fprintf(std.Stderr, "erg: %v\n", err)
		return cfg.Input, false
	}
	return config.String(cfg.Input.Name, string(src)), true
}

// syntaxFailed reports err, a scanner or parser error, and returns the
// exit status for it.
func syntaxFailed(cfg config.Config, std Streams, in config.Input, err error) int {
	diags := diag.FromSyntax(err)
	diags.SetInput(in.Name)
	report(std.Stderr, cfg, diags, source(in))
	return 1
}

// lexer prints the tokens of the input, one per line.
type lexer struct{}

func (lexer) Run(ctx context.Context, cfg config.Config, std Streams) int {
	in, ok := readInput(cfg, std)
	if !ok {
		return 1
	}
	toks, err := syntax.Scan(in.Name, in.Src)
	for _, t := range toks {
		fmt.Fprintf(std.Stdout, "%d:%d\t%s\n", t.Pos.Line, t.Pos.Col, t)
	}
	if err != nil {
		return syntaxFailed(cfg, std, in, err)
	}
	return 0
}

// parser prints the syntax tree of the input.
type parser struct{}

func (parser) Run(ctx context.Context, cfg config.Config, std Streams) int {
	in, ok := readInput(cfg, std)
	if !ok {
		return 1
	}
	f, err := syntax.Parse(in.Name, in.Src, 0)
	if err != nil {
		return syntaxFailed(cfg, std, in, err)
	}
	fmt.Fprintln(std.Stdout, syntax.TreeString(f))
	return 0
}

// compileOne compiles the input of cfg and reports its diagnostics.
// It returns nil if compilation failed.
func compileOne(ctx context.Context, cfg config.Config, std Streams) *Artifact {
	c := NewCompiler(cfg, nil)
	defer c.Close()
	a, err := c.Compile(ctx, cfg.Input)
	if err != nil {
		fmt.Fprintf(std.Stderr, "erg: %v\n", err)
		return nil
	}
	c.Report(std.Stderr, a)
	if a.Failed() {
		return nil
	}
	return a
}

// compiler writes the artifact of the input to the output path.
type compiler struct{}

func (compiler) Run(ctx context.Context, cfg config.Config, std Streams) int {
	a := compileOne(ctx, cfg, std)
	if a == nil {
		return 1
	}
	if err := writeArtifact(cfg.OutputPath(), a.Program); err != nil {
		fmt.Fprintf(std.Stderr, "erg: %v\n", err)
		return 1
	}
	return 0
}

func writeArtifact(path string, p *compile.Program) error {
	data, err := p.Encode(config.TargetMagic)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// executor compiles the input and runs the program.
type executor struct{}

func (executor) Run(ctx context.Context, cfg config.Config, std Streams) int {
	a := compileOne(ctx, cfg, std)
	if a == nil {
		return 1
	}
	code, err := Exec(ctx, cfg.Python, a.Code(), std)
	if err != nil {
		fmt.Fprintf(std.Stderr, "erg: %v\n", err)
		return 1
	}
	return code
}

// reader prints a previously compiled artifact.
type reader struct{}

func (reader) Run(ctx context.Context, cfg config.Config, std Streams) int {
	data, err := os.ReadFile(cfg.Input.Name)
	if err != nil {
		fmt.Fprintf(std.Stderr, "erg: %v\n", err)
		return 1
	}
	p, err := compile.Decode(data, config.TargetMagic)
	if err != nil {
		fmt.Fprintf(std.Stderr, "erg: %s: %v\n", cfg.Input.Name, err)
		return 1
	}
	compile.Fprint(std.Stdout, p, config.TargetMagic, config.TargetVersion)
	return 0
}

// CompileFiles compiles each of the named files concurrently and writes
// its artifact next to it. It returns the exit status.
func CompileFiles(ctx context.Context, cfg config.Config, files []string, std Streams) int {
	ins := make([]config.Input, len(files))
	for i, name := range files {
		ins[i] = config.File(name)
	}
	c := NewCompiler(cfg, nil)
	defer c.Close()
	arts, err := c.CompileAll(ctx, ins)
	if err != nil {
		fmt.Fprintf(std.Stderr, "erg: %v\n", err)
		return 1
	}
	status := 0
	seen := make(map[*diag.Diagnostic]bool) // a shared import reports once
	for _, a := range arts {
		var fresh diag.List
		for _, d := range a.Diags {
			if !seen[d] {
				seen[d] = true
				fresh = append(fresh, d)
			}
		}
		report(std.Stderr, cfg, fresh, source(a.Input))
		if a.Failed() {
			status = 1
			continue
		}
		out := config.Config{Input: a.Input}
		if err := writeArtifact(out.OutputPath(), a.Program); err != nil {
			fmt.Fprintf(std.Stderr, "erg: %v\n", err)
			status = 1
		}
	}
	return status
}
