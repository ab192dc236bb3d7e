package docgen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ctbuild",
		Short: "Build tool for the collectiontools module",
	}
	root.AddCommand(&cobra.Command{
		Use:   "docs",
		Short: "Regenerate the documentation directory",
		RunE:  func(*cobra.Command, []string) error { return nil },
	})
	return root
}

func TestCleanRemovesStalePages(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	stale := filepath.Join(dir, "renamed_symbol.md")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	g := &Generator{Dir: dir}
	require.NoError(t, g.Clean())

	assert.NoFileExists(t, stale)
	assert.DirExists(t, dir)
}

func TestCleanCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")

	g := &Generator{Dir: dir}
	require.NoError(t, g.Clean())
	assert.DirExists(t, dir)
}

func TestPackageDefaultsToRoot(t *testing.T) {
	g := &Generator{}
	assert.Equal(t, ".", g.pkg())

	g.Package = "./internal/coverage"
	assert.Equal(t, "./internal/coverage", g.pkg())
}

func TestCLIReferenceGeneratesMarkdownAndManPages(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	g := &Generator{Dir: dir}
	require.NoError(t, g.Clean())

	require.NoError(t, g.CLIReference(testCommand()))

	assert.FileExists(t, filepath.Join(dir, "cli", "ctbuild.md"))
	assert.FileExists(t, filepath.Join(dir, "cli", "ctbuild_docs.md"))
	assert.FileExists(t, filepath.Join(dir, "man", "ctbuild.1"))
	assert.FileExists(t, filepath.Join(dir, "man", "ctbuild-docs.1"))

	content, err := os.ReadFile(filepath.Join(dir, "cli", "ctbuild_docs.md"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Regenerate the documentation directory")
}
