// Package gotool invokes the Go toolchain and the companion developer
// tools that the build targets depend on. Binaries installed into the
// project tools directory take precedence over the ones found on PATH.
package gotool

import (
	"context"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/tillahoffmann/collectiontools/internal/toolcmd"
)

// Tools runs toolchain commands from the project root.
type Tools struct {
	Runner toolcmd.Runner
	Dir    string
}

// New returns a Tools that executes commands through runner and prefers
// binaries found in toolsDir.
func New(runner toolcmd.Runner, toolsDir string) *Tools {
	return &Tools{Runner: runner, Dir: toolsDir}
}

// lookup resolves a tool name to the locally installed binary when one
// exists, falling back to plain PATH resolution.
func (t *Tools) lookup(name string) string {
	if t.Dir == "" {
		return name
	}
	candidate := filepath.Join(t.Dir, name)
	if runtime.GOOS == "windows" {
		candidate += ".exe"
	}
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate
	}
	return name
}

// Has reports whether a tool is installed locally or available on PATH.
func (t *Tools) Has(name string) bool {
	if resolved := t.lookup(name); resolved != name {
		return true
	}
	return toolcmd.Available(name)
}

// Vet runs go vet over the whole module.
func (t *Tools) Vet(ctx context.Context) error {
	if err := t.Runner.RunStreamingLogged(ctx, "go", "vet", "./..."); err != nil {
		return eris.Wrap(err, "go vet reported problems")
	}
	return nil
}

// Build compiles every package in the module without keeping artifacts.
func (t *Tools) Build(ctx context.Context) error {
	if err := t.Runner.RunStreamingLogged(ctx, "go", "build", "./..."); err != nil {
		return eris.Wrap(err, "go build failed")
	}
	return nil
}

func goTestArgs(coverProfile string, extra []string) []string {
	args := []string{"test", "-coverprofile=" + coverProfile, "-covermode=atomic"}
	args = append(args, extra...)
	return append(args, "./...")
}

// Test runs the test suite with coverage collection, preferring gotestsum
// for readable output when it is installed and requested.
func (t *Tools) Test(ctx context.Context, coverProfile string, useGotestsum bool, extra ...string) error {
	goArgs := goTestArgs(coverProfile, extra)
	var err error
	if useGotestsum && t.Has("gotestsum") {
		args := append([]string{"--format", "testname", "--"}, goArgs[1:]...)
		err = t.Runner.RunStreamingLogged(ctx, t.lookup("gotestsum"), args...)
	} else {
		err = t.Runner.RunStreamingLogged(ctx, "go", goArgs...)
	}
	if err != nil {
		return eris.Wrap(err, "tests failed")
	}
	return nil
}

// TestExamples runs only the testable examples, which keeps the code
// snippets embedded in documentation honest.
func (t *Tools) TestExamples(ctx context.Context) error {
	if err := t.Runner.RunStreamingLogged(ctx, "go", "test", "-run", "^Example", "./..."); err != nil {
		return eris.Wrap(err, "documentation examples failed")
	}
	return nil
}

// FmtCheck reports files whose formatting differs from the canonical
// style. It prefers gofumpt and falls back to gofmt.
func (t *Tools) FmtCheck(ctx context.Context) ([]string, error) {
	name := "gofmt"
	if t.Has("gofumpt") {
		name = t.lookup("gofumpt")
	}
	result, err := t.Runner.RunLogged(ctx, name, "-l", ".")
	if err != nil {
		return nil, eris.Wrapf(err, "%s failed: %s", name, result.StderrString(true))
	}
	return splitLines(result.StdoutString(false)), nil
}

// FmtWrite rewrites files in place to the canonical formatting.
func (t *Tools) FmtWrite(ctx context.Context) error {
	name := "gofmt"
	if t.Has("gofumpt") {
		name = t.lookup("gofumpt")
	}
	if err := t.Runner.RunStreamingLogged(ctx, name, "-w", "."); err != nil {
		return eris.Wrapf(err, "%s failed", name)
	}
	return nil
}

// Lint runs golangci-lint when available.
func (t *Tools) Lint(ctx context.Context) error {
	if err := t.Runner.RunStreamingLogged(ctx, t.lookup("golangci-lint"), "run"); err != nil {
		return eris.Wrap(err, "golangci-lint reported problems")
	}
	return nil
}

// Gomarkdoc renders markdown API documentation for the given packages.
func (t *Tools) Gomarkdoc(ctx context.Context, output string, packages ...string) error {
	args := append([]string{"--output", output}, packages...)
	if err := t.Runner.RunStreamingLogged(ctx, t.lookup("gomarkdoc"), args...); err != nil {
		return eris.Wrap(err, "gomarkdoc failed")
	}
	return nil
}

// DocText captures the full go doc rendering of a package.
func (t *Tools) DocText(ctx context.Context, pkg string) (string, error) {
	result, err := t.Runner.RunLogged(ctx, "go", "doc", "-all", pkg)
	if err != nil {
		return "", eris.Wrapf(err, "go doc failed for %s: %s", pkg, result.StderrString(true))
	}
	return result.StdoutString(false), nil
}

// List resolves a package pattern to import paths.
func (t *Tools) List(ctx context.Context, pattern string) ([]string, error) {
	result, err := t.Runner.RunLogged(ctx, "go", "list", pattern)
	if err != nil {
		return nil, eris.Wrapf(err, "go list failed: %s", result.StderrString(true))
	}
	return splitLines(result.StdoutString(false)), nil
}

// ModulePath reports the import path of the current module.
func (t *Tools) ModulePath(ctx context.Context) (string, error) {
	result, err := t.Runner.RunLogged(ctx, "go", "list", "-m")
	if err != nil {
		return "", eris.Wrapf(err, "go list -m failed: %s", result.StderrString(true))
	}
	return result.StdoutString(true), nil
}

// ModVerify checks that the module cache matches go.sum.
func (t *Tools) ModVerify(ctx context.Context) error {
	if err := t.Runner.RunStreamingLogged(ctx, "go", "mod", "verify"); err != nil {
		return eris.Wrap(err, "go mod verify failed")
	}
	return nil
}

// parseToolImports extracts the blank imports that pin tool dependencies
// in a tools.go file.
func parseToolImports(toolsFile string) ([]string, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, toolsFile, nil, parser.ImportsOnly)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to parse %s", toolsFile)
	}

	deps := make([]string, 0, len(f.Imports))
	for _, imported := range f.Imports {
		deps = append(deps, strings.Trim(imported.Path.Value, `"`))
	}
	return deps, nil
}

// InstallTools installs every tool pinned in toolsFile into the tools
// directory so later targets can pick them up.
func (t *Tools) InstallTools(ctx context.Context, toolsFile string) error {
	deps, err := parseToolImports(toolsFile)
	if err != nil {
		return err
	}

	runner := t.Runner
	runner.Dir = filepath.Dir(toolsFile)
	if t.Dir != "" {
		runner.Env = append(append([]string{}, t.Runner.Env...), "GOBIN="+t.Dir)
	}
	for _, dep := range deps {
		if err := runner.RunStreamingLogged(ctx, "go", "install", dep); err != nil {
			return eris.Wrapf(err, "failed to install %s", dep)
		}
	}
	return nil
}

func splitLines(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
