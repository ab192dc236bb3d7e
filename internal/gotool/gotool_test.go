package gotool

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillahoffmann/collectiontools/internal/toolcmd"
)

func writeFakeTool(t *testing.T, dir, name string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	return path
}

func TestLookupPrefersToolsDir(t *testing.T) {
	dir := t.TempDir()
	path := writeFakeTool(t, dir, "gomarkdoc")

	tools := New(toolcmd.Runner{}, dir)
	assert.Equal(t, path, tools.lookup("gomarkdoc"))
}

func TestLookupFallsBackToName(t *testing.T) {
	tools := New(toolcmd.Runner{}, t.TempDir())
	assert.Equal(t, "golangci-lint", tools.lookup("golangci-lint"))

	tools = New(toolcmd.Runner{}, "")
	assert.Equal(t, "gofumpt", tools.lookup("gofumpt"))
}

func TestLookupIgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	name := "gotestsum"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, name), 0o755))

	tools := New(toolcmd.Runner{}, dir)
	assert.Equal(t, "gotestsum", tools.lookup("gotestsum"))
}

func TestHasFindsLocalTool(t *testing.T) {
	dir := t.TempDir()
	writeFakeTool(t, dir, "definitely-not-on-path")

	tools := New(toolcmd.Runner{}, dir)
	assert.True(t, tools.Has("definitely-not-on-path"))
	assert.False(t, tools.Has("definitely-not-on-path-either"))
}

func TestGoTestArgs(t *testing.T) {
	tests := []struct {
		name     string
		profile  string
		extra    []string
		expected []string
	}{
		{
			name:     "default",
			profile:  "cover.out",
			expected: []string{"test", "-coverprofile=cover.out", "-covermode=atomic", "./..."},
		},
		{
			name:     "extra args before package pattern",
			profile:  "cover.out",
			extra:    []string{"-race", "-count=1"},
			expected: []string{"test", "-coverprofile=cover.out", "-covermode=atomic", "-race", "-count=1", "./..."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, goTestArgs(tt.profile, tt.extra))
		})
	}
}

func TestParseToolImports(t *testing.T) {
	dir := t.TempDir()
	toolsFile := filepath.Join(dir, "tools.go")
	content := `//go:build tools

package main

import (
	_ "github.com/princjef/gomarkdoc/cmd/gomarkdoc"
	_ "gotest.tools/gotestsum"
)
`
	require.NoError(t, os.WriteFile(toolsFile, []byte(content), 0o644))

	deps, err := parseToolImports(toolsFile)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"github.com/princjef/gomarkdoc/cmd/gomarkdoc",
		"gotest.tools/gotestsum",
	}, deps)
}

func TestParseToolImportsMissingFile(t *testing.T) {
	_, err := parseToolImports(filepath.Join(t.TempDir(), "tools.go"))
	assert.Error(t, err)
}

func TestParseToolImportsInvalidSource(t *testing.T) {
	dir := t.TempDir()
	toolsFile := filepath.Join(dir, "tools.go")
	require.NoError(t, os.WriteFile(toolsFile, []byte("not go source"), 0o644))

	_, err := parseToolImports(toolsFile)
	assert.Error(t, err)
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, splitLines(""))
	assert.Nil(t, splitLines("\n\n"))
	assert.Equal(t, []string{"a", "b"}, splitLines("a\n\n  b  \n"))
}
