// Package distpkg assembles distributable source archives together with
// their checksums and a manifest, and validates the result afterwards.
package distpkg

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"github.com/ulikunitz/xz"
	"gopkg.in/yaml.v3"
)

// ManifestName is the name of the manifest file written next to the
// archives.
const ManifestName = "manifest.yaml"

// ChecksumsName is the name of the checksum file written next to the
// archives.
const ChecksumsName = "SHA256SUMS"

// Archive describes a single generated archive file.
type Archive struct {
	File   string `yaml:"file"`
	Sha256 string `yaml:"sha256"`
	Size   int64  `yaml:"size"`
}

// Manifest describes a complete distribution.
type Manifest struct {
	Name     string    `yaml:"name"`
	Version  string    `yaml:"version"`
	Module   string    `yaml:"module"`
	Archives []Archive `yaml:"archives"`
}

// Builder creates a distribution below Dir from the sources below Root.
// Formats selects the compression formats, defaulting to gz and xz.
type Builder struct {
	Root    string
	Dir     string
	Name    string
	Version string
	Module  string
	Exclude []string
	Formats []string
	Quiet   bool
}

// prefix is the directory every archive entry lives under.
func (b *Builder) prefix() string {
	return b.Name + "-" + b.Version
}

func (b *Builder) excluded(rel string) bool {
	top := rel
	if idx := strings.IndexByte(rel, '/'); idx >= 0 {
		top = rel[:idx]
	}
	if strings.HasPrefix(top, ".") {
		return true
	}
	return slices.Contains(b.Exclude, top)
}

// SourceFiles lists the files that belong in the archives, as sorted
// slash-separated paths relative to the project root.
func (b *Builder) SourceFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(b.Root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(b.Root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if entry.IsDir() {
			if b.excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if b.excluded(rel) || !entry.Type().IsRegular() {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "failed to scan %s", b.Root)
	}
	slices.Sort(files)
	return files, nil
}

func (b *Builder) progressBar(total int64) *progressbar.ProgressBar {
	if b.Quiet || os.Getenv("CI") == "true" {
		return progressbar.NewOptions64(total, progressbar.OptionSetVisibility(false))
	}
	return progressbar.DefaultBytes(total, "     archive")
}

func (b *Builder) writeTar(w io.Writer, files []string, bar *progressbar.ProgressBar) error {
	archive := tar.NewWriter(w)
	for _, rel := range files {
		path := filepath.Join(b.Root, filepath.FromSlash(rel))
		info, err := os.Stat(path)
		if err != nil {
			return eris.Wrapf(err, "failed to stat %s", path)
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return eris.Wrapf(err, "failed to build archive header for %s", rel)
		}
		header.Name = b.prefix() + "/" + rel
		if err := archive.WriteHeader(header); err != nil {
			return eris.Wrapf(err, "failed to write archive header for %s", rel)
		}

		handle, err := os.Open(path)
		if err != nil {
			return eris.Wrapf(err, "failed to open %s", path)
		}
		_, err = io.Copy(io.MultiWriter(archive, bar), handle)
		handle.Close()
		if err != nil {
			return eris.Wrapf(err, "failed to archive %s", rel)
		}
	}
	if err := archive.Close(); err != nil {
		return eris.Wrap(err, "failed to finish archive")
	}
	return nil
}

func (b *Builder) writeTarGz(path string, files []string, bar *progressbar.ProgressBar) error {
	handle, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "failed to create %s", path)
	}
	defer handle.Close()

	compressor := gzip.NewWriter(handle)
	if err := b.writeTar(compressor, files, bar); err != nil {
		return err
	}
	if err := compressor.Close(); err != nil {
		return eris.Wrapf(err, "failed to finish %s", path)
	}
	return handle.Close()
}

func (b *Builder) writeTarXz(path string, files []string, bar *progressbar.ProgressBar) error {
	handle, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "failed to create %s", path)
	}
	defer handle.Close()

	compressor, err := xz.NewWriter(handle)
	if err != nil {
		return eris.Wrapf(err, "failed to prepare xz compression for %s", path)
	}
	if err := b.writeTar(compressor, files, bar); err != nil {
		return err
	}
	if err := compressor.Close(); err != nil {
		return eris.Wrapf(err, "failed to finish %s", path)
	}
	return handle.Close()
}

func hashFile(path string) (string, int64, error) {
	handle, err := os.Open(path)
	if err != nil {
		return "", 0, eris.Wrapf(err, "failed to open %s", path)
	}
	defer handle.Close()

	hash := sha256.New()
	size, err := io.Copy(hash, handle)
	if err != nil {
		return "", 0, eris.Wrapf(err, "failed to hash %s", path)
	}
	return hex.EncodeToString(hash.Sum(nil)), size, nil
}

func (b *Builder) describeArchive(filename string) (Archive, error) {
	digest, size, err := hashFile(filepath.Join(b.Dir, filename))
	if err != nil {
		return Archive{}, err
	}
	return Archive{File: filename, Sha256: digest, Size: size}, nil
}

func (b *Builder) writeChecksums(archives []Archive) error {
	var lines strings.Builder
	for _, archive := range archives {
		lines.WriteString(archive.Sha256 + "  " + archive.File + "\n")
	}
	path := filepath.Join(b.Dir, ChecksumsName)
	if err := os.WriteFile(path, []byte(lines.String()), 0o644); err != nil {
		return eris.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

func (b *Builder) writeManifest(manifest Manifest) error {
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return eris.Wrap(err, "failed to encode the manifest")
	}
	path := filepath.Join(b.Dir, ManifestName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

func (b *Builder) writerFor(format string) (string, func(string, []string, *progressbar.ProgressBar) error, error) {
	switch format {
	case "gz":
		return ".tar.gz", b.writeTarGz, nil
	case "xz":
		return ".tar.xz", b.writeTarXz, nil
	}
	return "", nil, eris.Errorf("archive format %q is not supported", format)
}

// Build writes one archive per configured format, the checksum file, and
// the manifest into a fresh distribution directory and returns the
// manifest.
func (b *Builder) Build() (Manifest, error) {
	formats := b.Formats
	if len(formats) == 0 {
		formats = []string{"gz", "xz"}
	}

	if err := os.RemoveAll(b.Dir); err != nil {
		return Manifest{}, eris.Wrapf(err, "failed to remove %s", b.Dir)
	}
	if err := os.MkdirAll(b.Dir, 0o755); err != nil {
		return Manifest{}, eris.Wrapf(err, "failed to create %s", b.Dir)
	}

	files, err := b.SourceFiles()
	if err != nil {
		return Manifest{}, err
	}
	if len(files) == 0 {
		return Manifest{}, eris.Errorf("no files to archive below %s", b.Root)
	}

	var total int64
	for _, rel := range files {
		info, err := os.Stat(filepath.Join(b.Root, filepath.FromSlash(rel)))
		if err != nil {
			return Manifest{}, eris.Wrapf(err, "failed to stat %s", rel)
		}
		total += info.Size()
	}

	// Every archive streams the same file set, so the bar covers the
	// bytes once per format.
	bar := b.progressBar(int64(len(formats)) * total)
	defer bar.Finish()

	archives := make([]Archive, 0, len(formats))
	for _, format := range formats {
		suffix, write, err := b.writerFor(format)
		if err != nil {
			return Manifest{}, err
		}
		filename := b.prefix() + suffix
		if err := write(filepath.Join(b.Dir, filename), files, bar); err != nil {
			return Manifest{}, err
		}
		archive, err := b.describeArchive(filename)
		if err != nil {
			return Manifest{}, err
		}
		archives = append(archives, archive)
	}

	if err := b.writeChecksums(archives); err != nil {
		return Manifest{}, err
	}
	manifest := Manifest{Name: b.Name, Version: b.Version, Module: b.Module, Archives: archives}
	if err := b.writeManifest(manifest); err != nil {
		return Manifest{}, err
	}
	return manifest, nil
}
