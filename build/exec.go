// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package build

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"go.erg.dev/transpile"
)

// Exec runs a transpiled program with the Python interpreter python
// and returns its exit status. The error result reports a failure to
// run the interpreter at all.
func Exec(ctx context.Context, python, code string, std Streams) (int, error) {
	f, err := os.CreateTemp("", "erg-*.py")
	if err != nil {
		return 0, err
	}
	defer os.Remove(f.Name())
	if _, err := io.WriteString(f, code); err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}

	cmd := exec.CommandContext(ctx, python, f.Name())
	cmd.Stdin, cmd.Stdout, cmd.Stderr = std.Stdin, std.Stdout, std.Stderr
	err = cmd.Run()
	var exit *exec.ExitError
	if errors.As(err, &exit) {
		return exit.ExitCode(), nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "running %s", python)
	}
	return 0, nil
}

//go:embed interp.py
var driver string

// An Interpreter is a Python process that runs successive chunks of
// transpiled code in one namespace, for an interactive session.
//
// Each chunk is sent on the standard input of the process, preceded by
// its length in bytes on a line of its own. The process reports the
// outcome of each chunk on file descriptor 3 as one line: "ok",
// "error" (the traceback is on its standard error), or "exit N".
type Interpreter struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	status *bufio.Reader
	pipe   *os.File
	exited bool
	code   int
}

// A RuntimeError reports that a chunk raised an exception.
type RuntimeError struct{}

func (*RuntimeError) Error() string { return "runtime error" }

// StartInterpreter starts python and loads the prelude into it.
// Output of the programs goes to stdout and stderr.
func StartInterpreter(ctx context.Context, python string, stdout, stderr io.Writer) (*Interpreter, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, python, "-u", "-c", driver)
	cmd.Stdout, cmd.Stderr = stdout, stderr
	cmd.ExtraFiles = []*os.File{w}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		r.Close()
		w.Close()
		return nil, errors.Wrapf(err, "starting %s", python)
	}
	w.Close()

	in := &Interpreter{cmd: cmd, stdin: stdin, status: bufio.NewReader(r), pipe: r}
	if err := in.Run(transpile.Prelude()); err != nil {
		in.Close()
		return nil, errors.Wrap(err, "loading prelude")
	}
	return in, nil
}

// Run runs one chunk of code. It returns a *RuntimeError if the chunk
// raised an exception. After a chunk calls exit, Exited reports true
// and Run fails.
func (in *Interpreter) Run(code string) error {
	if in.exited {
		return errors.New("interpreter has exited")
	}
	if _, err := fmt.Fprintf(in.stdin, "%d\n%s", len(code), code); err != nil {
		return errors.Wrap(err, "sending code to interpreter")
	}
	line, err := in.status.ReadString('\n')
	if err != nil {
		in.exited = true
		return errors.Wrap(err, "interpreter terminated")
	}
	switch line = strings.TrimSpace(line); {
	case line == "ok":
		return nil
	case line == "error":
		return &RuntimeError{}
	case strings.HasPrefix(line, "exit "):
		in.exited = true
		in.code, _ = strconv.Atoi(strings.TrimPrefix(line, "exit "))
		return nil
	}
	return errors.Errorf("unexpected interpreter status %q", line)
}

// Exited reports whether a chunk has called exit, and with what status.
func (in *Interpreter) Exited() (bool, int) { return in.exited, in.code }

// Close stops the interpreter and waits for it to exit.
func (in *Interpreter) Close() error {
	in.stdin.Close()
	err := in.cmd.Wait()
	in.pipe.Close()
	var exit *exec.ExitError
	if errors.As(err, &exit) {
		return nil
	}
	return err
}
