package target

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.starlark.net/starlark"
)

func testParserCtx(root string) *parserCtx {
	return &parserCtx{
		filepath:    filepath.Join(root, "targets.star"),
		projectRoot: root,
	}
}

func TestNormalizePath(t *testing.T) {
	root := t.TempDir()
	ctx := testParserCtx(root)

	tests := []struct {
		name     string
		paths    []string
		expected string
	}{
		{
			name:     "project relative",
			paths:    []string{"//pkg/sub"},
			expected: filepath.Join(root, "pkg", "sub"),
		},
		{
			name:     "file relative",
			paths:    []string{"pkg"},
			expected: filepath.Join(root, "pkg"),
		},
		{
			name:     "absolute",
			paths:    []string{filepath.Join(root, "abs")},
			expected: filepath.Join(root, "abs"),
		},
		{
			name:     "chained",
			paths:    []string{"pkg", "nested"},
			expected: filepath.Join(root, "pkg", "nested"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizePath(ctx, tt.paths...))
		})
	}
}

func TestSimplifyPath(t *testing.T) {
	root := t.TempDir()
	ctx := testParserCtx(root)

	assert.Equal(t, "//pkg/file.go", simplifyPath(ctx, filepath.Join(root, "pkg", "file.go")))
	assert.Equal(t, "/somewhere/else", simplifyPath(ctx, "/somewhere/else"))
}

func TestGetEnvVarsOverrides(t *testing.T) {
	ctx := testParserCtx(t.TempDir())
	ctx.envOverrides = map[string]string{"CTBUILD_HELPER_TEST": "custom"}

	env := getEnvVars(ctx)
	assert.Contains(t, env, "CTBUILD_HELPER_TEST=custom")
}

func TestInterfaceToStarlark(t *testing.T) {
	value, err := interfaceToStarlark(nil, "text")
	assert.NoError(t, err)
	assert.Equal(t, starlark.String("text"), value)

	value, err = interfaceToStarlark(nil, 3)
	assert.NoError(t, err)
	assert.Equal(t, starlark.MakeInt(3), value)

	value, err = interfaceToStarlark(nil, true)
	assert.NoError(t, err)
	assert.Equal(t, starlark.True, value)

	value, err = interfaceToStarlark(nil, []string{"a", "b"})
	assert.NoError(t, err)
	assert.Equal(t, starlark.Tuple{starlark.String("a"), starlark.String("b")}, value)

	value, err = interfaceToStarlark(nil, map[string]any{"k": "v"})
	assert.NoError(t, err)
	dict, ok := value.(*starlark.Dict)
	assert.True(t, ok)
	got, found, err := dict.Get(starlark.String("k"))
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, starlark.String("v"), got)

	value, err = interfaceToStarlark(nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, starlark.None, value)

	value, err = interfaceToStarlark(nil, []any{"a", nil})
	assert.NoError(t, err)
	assert.Equal(t, starlark.Tuple{starlark.String("a"), starlark.None}, value)

	_, err = interfaceToStarlark(nil, struct{}{})
	assert.Error(t, err)
}
