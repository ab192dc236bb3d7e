package toolcmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Runner executes build tools with shared logging and output handling.
type Runner struct {
	Verbose bool
	Dir     string
	Env     []string
	Logger  io.Writer
}

// Result contains captured stdout/stderr for a tool invocation.
type Result struct {
	Stdout []byte
	Stderr []byte
}

func (r Result) StdoutString(trim bool) string {
	output := string(r.Stdout)
	if trim {
		return strings.TrimSpace(output)
	}
	return output
}

func (r Result) StderrString(trim bool) string {
	output := string(r.Stderr)
	if trim {
		return strings.TrimSpace(output)
	}
	return output
}

func (r Runner) withDefaults() Runner {
	if r.Logger == nil {
		r.Logger = os.Stderr
	}
	return r
}

func (r Runner) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	if r.Dir != "" {
		cmd.Dir = r.Dir
	}
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	return cmd
}

func (r Runner) log(name string, args []string) {
	if !r.Verbose {
		return
	}
	r = r.withDefaults()
	fmt.Fprintf(r.Logger, "Running: %s %s\n", name, strings.Join(args, " "))
}

func (r Runner) prepare(ctx context.Context, name string, args []string, log bool) *exec.Cmd {
	r = r.withDefaults()
	if log {
		r.log(name, args)
	}
	return r.command(ctx, name, args...)
}

// Run executes a tool and captures stdout/stderr.
func (r Runner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	return r.run(ctx, name, args, false)
}

// RunLogged executes a tool, logs when verbose, and captures stdout/stderr.
func (r Runner) RunLogged(ctx context.Context, name string, args ...string) (Result, error) {
	return r.run(ctx, name, args, true)
}

// RunStreaming executes a tool with stdout/stderr streamed to the terminal.
func (r Runner) RunStreaming(ctx context.Context, name string, args ...string) error {
	return r.runWithWriters(ctx, name, args, false, os.Stdout, os.Stderr)
}

// RunStreamingLogged executes a tool with stdout/stderr streamed and logs when verbose.
func (r Runner) RunStreamingLogged(ctx context.Context, name string, args ...string) error {
	return r.runWithWriters(ctx, name, args, true, os.Stdout, os.Stderr)
}

// RunWithWriters executes a tool, optionally logs, and uses provided writers.
func (r Runner) RunWithWriters(ctx context.Context, log bool, stdout io.Writer, stderr io.Writer, name string, args ...string) error {
	return r.runWithWriters(ctx, name, args, log, stdout, stderr)
}

func (r Runner) run(ctx context.Context, name string, args []string, log bool) (Result, error) {
	cmd := r.prepare(ctx, name, args, log)
	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	return Result{Stdout: outBuf.Bytes(), Stderr: errBuf.Bytes()}, err
}

func (r Runner) runWithWriters(ctx context.Context, name string, args []string, log bool, stdout io.Writer, stderr io.Writer) error {
	cmd := r.prepare(ctx, name, args, log)
	if stdout != nil {
		cmd.Stdout = stdout
	}
	if stderr != nil {
		cmd.Stderr = stderr
	}

	return cmd.Run()
}

// Available reports whether a tool can be found on PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// ExitCode maps an error from Run to a process exit status. A nil error
// maps to 0, a tool that exited with a status maps to that status, and
// anything else (tool missing, context canceled) maps to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}
