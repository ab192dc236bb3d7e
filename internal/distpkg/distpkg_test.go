package distpkg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModule = "github.com/tillahoffmann/collectiontools"

func writeProjectFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeProjectFile(t, root, "go.mod", "module "+testModule+"\n\ngo 1.24.0\n")
	writeProjectFile(t, root, "doc.go", "// Package collectiontools.\npackage collectiontools\n")
	writeProjectFile(t, root, "maps.go", "package collectiontools\n")
	writeProjectFile(t, root, "internal/buildcfg/config.go", "package buildcfg\n")
	writeProjectFile(t, root, ".git/HEAD", "ref: refs/heads/main\n")
	writeProjectFile(t, root, "docs/api.md", "generated\n")
	return root
}

func testBuilder(root string) *Builder {
	return &Builder{
		Root:    root,
		Dir:     filepath.Join(root, "dist"),
		Name:    "collectiontools",
		Version: "1.2.3",
		Module:  testModule,
		Exclude: []string{"dist", "docs"},
		Quiet:   true,
	}
}

func TestSourceFilesSkipsExcludedAndHidden(t *testing.T) {
	root := testProject(t)
	writeProjectFile(t, root, "dist/stale.tar.gz", "old")

	files, err := testBuilder(root).SourceFiles()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"doc.go",
		"go.mod",
		"internal/buildcfg/config.go",
		"maps.go",
	}, files)
}

func TestBuildWritesArchivesChecksumsAndManifest(t *testing.T) {
	root := testProject(t)
	builder := testBuilder(root)

	manifest, err := builder.Build()
	require.NoError(t, err)

	assert.Equal(t, "collectiontools", manifest.Name)
	assert.Equal(t, "1.2.3", manifest.Version)
	assert.Equal(t, testModule, manifest.Module)
	require.Len(t, manifest.Archives, 2)
	assert.Equal(t, "collectiontools-1.2.3.tar.gz", manifest.Archives[0].File)
	assert.Equal(t, "collectiontools-1.2.3.tar.xz", manifest.Archives[1].File)

	for _, archive := range manifest.Archives {
		assert.FileExists(t, filepath.Join(builder.Dir, archive.File))
		assert.Len(t, archive.Sha256, 64)
		assert.Positive(t, archive.Size)
	}
	assert.FileExists(t, filepath.Join(builder.Dir, ChecksumsName))
	assert.FileExists(t, filepath.Join(builder.Dir, ManifestName))

	loaded, err := ReadManifest(builder.Dir)
	require.NoError(t, err)
	assert.Equal(t, manifest, loaded)
}

func TestBuildHonorsFormatSelection(t *testing.T) {
	root := testProject(t)
	builder := testBuilder(root)
	builder.Formats = []string{"xz"}

	manifest, err := builder.Build()
	require.NoError(t, err)

	require.Len(t, manifest.Archives, 1)
	assert.Equal(t, "collectiontools-1.2.3.tar.xz", manifest.Archives[0].File)
	assert.NoFileExists(t, filepath.Join(builder.Dir, "collectiontools-1.2.3.tar.gz"))
}

func TestBuildRejectsUnknownFormat(t *testing.T) {
	root := testProject(t)
	builder := testBuilder(root)
	builder.Formats = []string{"zip"}

	_, err := builder.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `archive format "zip" is not supported`)
}

func TestBuildReplacesStaleDistDir(t *testing.T) {
	root := testProject(t)
	builder := testBuilder(root)
	writeProjectFile(t, root, "dist/leftover.txt", "stale")

	_, err := builder.Build()
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(builder.Dir, "leftover.txt"))
}

func TestBuildFailsOnEmptyProject(t *testing.T) {
	root := t.TempDir()
	builder := testBuilder(root)

	_, err := builder.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files to archive")
}

func TestScanArchiveListsEntriesUnderPrefix(t *testing.T) {
	root := testProject(t)
	builder := testBuilder(root)
	_, err := builder.Build()
	require.NoError(t, err)

	for _, filename := range []string{"collectiontools-1.2.3.tar.gz", "collectiontools-1.2.3.tar.xz"} {
		contents, err := scanArchive(filepath.Join(builder.Dir, filename), "collectiontools-1.2.3")
		require.NoError(t, err, filename)
		assert.Empty(t, contents.stray)
		assert.Contains(t, contents.files, "go.mod")
		assert.Contains(t, contents.files, "internal/buildcfg/config.go")
		assert.Contains(t, string(contents.goMod), "module "+testModule)
	}
}

func TestOpenArchiveRejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dist.zip")
	require.NoError(t, os.WriteFile(path, []byte("zip"), 0o644))
	handle, err := os.Open(path)
	require.NoError(t, err)
	defer handle.Close()

	_, err = openArchive(handle, "dist.zip")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestReadChecksumsRejectsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), ChecksumsName)
	require.NoError(t, os.WriteFile(path, []byte("deadbeef-without-file\n"), 0o644))

	_, err := readChecksums(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed checksum line")
}
