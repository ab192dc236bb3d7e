package toolcmd

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultStrings(t *testing.T) {
	result := Result{Stdout: []byte("  out \n"), Stderr: []byte(" err\n")}

	assert.Equal(t, "out", result.StdoutString(true))
	assert.Equal(t, "  out \n", result.StdoutString(false))
	assert.Equal(t, "err", result.StderrString(true))
	assert.Equal(t, " err\n", result.StderrString(false))
}

func TestRunMissingTool(t *testing.T) {
	r := Runner{}
	_, err := r.Run(context.Background(), "definitely-not-a-real-tool-xyz")
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))
}

func TestRunCapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test relies on sh")
	}
	if !Available("sh") {
		t.Skip("sh not available")
	}

	r := Runner{}
	result, err := r.Run(context.Background(), "sh", "-c", "echo captured; echo diagnostics >&2")
	require.NoError(t, err)
	assert.Equal(t, "captured", result.StdoutString(true))
	assert.Equal(t, "diagnostics", result.StderrString(true))
}

func TestRunPropagatesExitStatus(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test relies on sh")
	}
	if !Available("sh") {
		t.Skip("sh not available")
	}

	r := Runner{}
	_, err := r.Run(context.Background(), "sh", "-c", "exit 7")
	require.Error(t, err)
	assert.Equal(t, 7, ExitCode(err))
}

func TestRunLoggedWritesCommandLine(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test relies on sh")
	}
	if !Available("sh") {
		t.Skip("sh not available")
	}

	var log bytes.Buffer
	r := Runner{Verbose: true, Logger: &log}
	_, err := r.RunLogged(context.Background(), "sh", "-c", "true")
	require.NoError(t, err)
	assert.Contains(t, log.String(), "Running: sh -c true")
}

func TestRunWithWriters(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test relies on sh")
	}
	if !Available("sh") {
		t.Skip("sh not available")
	}

	var stdout, stderr bytes.Buffer
	r := Runner{}
	err := r.RunWithWriters(context.Background(), false, &stdout, &stderr, "sh", "-c", "echo one; echo two >&2")
	require.NoError(t, err)
	assert.Equal(t, "one\n", stdout.String())
	assert.Equal(t, "two\n", stderr.String())
}

func TestRunRespectsDirAndEnv(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test relies on sh")
	}
	if !Available("sh") {
		t.Skip("sh not available")
	}

	dir := t.TempDir()
	r := Runner{Dir: dir, Env: []string{"TOOLCMD_TEST_VALUE=hello"}}
	result, err := r.Run(context.Background(), "sh", "-c", "pwd; printf %s \"$TOOLCMD_TEST_VALUE\"")
	require.NoError(t, err)
	assert.Contains(t, result.StdoutString(false), "hello")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("plain failure")))
}

func TestAvailable(t *testing.T) {
	assert.False(t, Available("definitely-not-a-real-tool-xyz"))
}
