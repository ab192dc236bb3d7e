package distpkg

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rotisserie/eris"
	"github.com/ulikunitz/xz"
	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"
)

// ReadManifest loads the manifest from a distribution directory.
func ReadManifest(dir string) (Manifest, error) {
	path := filepath.Join(dir, ManifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, eris.Wrapf(err, "failed to read %s", path)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return Manifest{}, eris.Wrapf(err, "failed to parse %s", path)
	}
	return manifest, nil
}

func readChecksums(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read %s", path)
	}

	sums := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		digest, file, found := strings.Cut(line, "  ")
		if !found {
			return nil, eris.Errorf("malformed checksum line %q in %s", line, path)
		}
		sums[strings.TrimSpace(file)] = digest
	}
	return sums, nil
}

func openArchive(handle *os.File, name string) (io.Reader, error) {
	switch {
	case strings.HasSuffix(name, ".tar.gz"):
		return gzip.NewReader(handle)
	case strings.HasSuffix(name, ".tar.xz"):
		return xz.NewReader(handle)
	}
	return nil, eris.Errorf("archive format of %s is not supported", name)
}

type archiveContents struct {
	files []string
	goMod []byte
	stray []string
}

// scanArchive lists the entries of a source archive relative to the
// expected top level directory and captures the archived go.mod.
func scanArchive(path, prefix string) (archiveContents, error) {
	var contents archiveContents

	handle, err := os.Open(path)
	if err != nil {
		return contents, eris.Wrapf(err, "failed to open %s", path)
	}
	defer handle.Close()

	reader, err := openArchive(handle, filepath.Base(path))
	if err != nil {
		return contents, err
	}

	archive := tar.NewReader(reader)
	for {
		item, err := archive.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return contents, eris.Wrapf(err, "failed to read an entry of %s", path)
		}
		if item.FileInfo().IsDir() {
			continue
		}

		rel, ok := strings.CutPrefix(item.Name, prefix+"/")
		if !ok {
			contents.stray = append(contents.stray, item.Name)
			continue
		}
		contents.files = append(contents.files, rel)
		if rel == "go.mod" {
			data, err := io.ReadAll(archive)
			if err != nil {
				return contents, eris.Wrapf(err, "failed to read go.mod from %s", path)
			}
			contents.goMod = data
		}
	}
	return contents, nil
}

// Validate checks a built distribution directory and reports every
// finding at once: manifest consistency, checksum agreement, archive
// layout, required files, and the archived module path. The required
// list extends the always-required go.mod.
func Validate(dir, module string, required []string) error {
	manifest, err := ReadManifest(dir)
	if err != nil {
		return err
	}

	var findings []string
	report := func(format string, args ...interface{}) {
		findings = append(findings, fmt.Sprintf(format, args...))
	}

	if _, err := semver.NewVersion(manifest.Version); err != nil {
		report("version %q is not a semantic version", manifest.Version)
	}
	if module != "" && manifest.Module != module {
		report("manifest declares module %s, expected %s", manifest.Module, module)
	}
	if len(manifest.Archives) == 0 {
		report("manifest lists no archives")
	}

	sums, err := readChecksums(filepath.Join(dir, ChecksumsName))
	if err != nil {
		report("%s", err.Error())
	}

	requiredFiles := append([]string{"go.mod"}, required...)
	prefix := manifest.Name + "-" + manifest.Version

	for _, archive := range manifest.Archives {
		path := filepath.Join(dir, archive.File)
		digest, size, err := hashFile(path)
		if err != nil {
			report("archive %s is missing or unreadable", archive.File)
			continue
		}
		if digest != archive.Sha256 {
			report("checksum mismatch for %s", archive.File)
		}
		if size != archive.Size {
			report("size mismatch for %s: manifest says %d, found %d", archive.File, archive.Size, size)
		}
		if recorded, ok := sums[archive.File]; !ok {
			report("%s is missing from %s", archive.File, ChecksumsName)
		} else if recorded != digest {
			report("%s disagrees with %s", ChecksumsName, archive.File)
		}

		contents, err := scanArchive(path, prefix)
		if err != nil {
			report("%s", err.Error())
			continue
		}
		for _, stray := range contents.stray {
			report("entry %s of %s is outside %s/", stray, archive.File, prefix)
		}
		for _, want := range requiredFiles {
			if !slices.Contains(contents.files, want) {
				report("%s is missing from %s", want, archive.File)
			}
		}
		if len(contents.goMod) > 0 && module != "" {
			if archived := modfile.ModulePath(contents.goMod); archived != module {
				report("go.mod in %s declares module %s, expected %s", archive.File, archived, module)
			}
		}
	}

	if len(findings) > 0 {
		return eris.Errorf("dist validation failed:\n  - %s", strings.Join(findings, "\n  - "))
	}
	return nil
}
