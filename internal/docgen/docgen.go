// Package docgen rebuilds the generated documentation directory:
// a markdown API reference, a plain text go doc dump, and the CLI
// reference rendered straight from the command tree.
package docgen

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/tillahoffmann/collectiontools/internal/gotool"
)

// Generator writes documentation artifacts below Dir.
type Generator struct {
	Tools *gotool.Tools
	Dir   string

	// Package is the import path or pattern the API reference covers,
	// defaulting to the package at the project root.
	Package string
}

func (g *Generator) pkg() string {
	if g.Package == "" {
		return "."
	}
	return g.Package
}

// Clean removes previously generated documentation so pages for renamed
// or deleted symbols never survive a rebuild.
func (g *Generator) Clean() error {
	if err := os.RemoveAll(g.Dir); err != nil {
		return eris.Wrapf(err, "failed to remove %s", g.Dir)
	}
	if err := os.MkdirAll(g.Dir, 0o755); err != nil {
		return eris.Wrapf(err, "failed to create %s", g.Dir)
	}
	return nil
}

// PackageReference renders the markdown API reference for the library.
func (g *Generator) PackageReference(ctx context.Context) error {
	return g.Tools.Gomarkdoc(ctx, filepath.Join(g.Dir, "api.md"), g.pkg())
}

// PlainReference captures the go doc rendering of the library.
func (g *Generator) PlainReference(ctx context.Context) error {
	text, err := g.Tools.DocText(ctx, g.pkg())
	if err != nil {
		return err
	}
	path := filepath.Join(g.Dir, "reference.txt")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return eris.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// CLIReference generates markdown pages and man pages for the command
// tree. Both renderers run in process, so this works without any tools
// installed.
func (g *Generator) CLIReference(root *cobra.Command) error {
	markdownDir := filepath.Join(g.Dir, "cli")
	if err := os.MkdirAll(markdownDir, 0o755); err != nil {
		return eris.Wrapf(err, "failed to create %s", markdownDir)
	}
	if err := doc.GenMarkdownTree(root, markdownDir); err != nil {
		return eris.Wrap(err, "failed to generate the markdown CLI reference")
	}

	manDir := filepath.Join(g.Dir, "man")
	if err := os.MkdirAll(manDir, 0o755); err != nil {
		return eris.Wrapf(err, "failed to create %s", manDir)
	}
	header := &doc.GenManHeader{
		Title:   "CTBUILD",
		Section: "1",
		Source:  "ctbuild",
		Manual:  "ctbuild manual",
	}
	if err := doc.GenManTree(root, header, manDir); err != nil {
		return eris.Wrap(err, "failed to generate man pages")
	}
	return nil
}

// Generate rebuilds every documentation artifact from scratch.
func (g *Generator) Generate(ctx context.Context, root *cobra.Command) error {
	if err := g.Clean(); err != nil {
		return err
	}
	if err := g.PackageReference(ctx); err != nil {
		return err
	}
	if err := g.PlainReference(ctx); err != nil {
		return err
	}
	return g.CLIReference(root)
}
