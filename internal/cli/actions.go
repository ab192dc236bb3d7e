package cli

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/tillahoffmann/collectiontools/internal/coverage"
	"github.com/tillahoffmann/collectiontools/internal/distpkg"
	"github.com/tillahoffmann/collectiontools/internal/docgen"
	"github.com/tillahoffmann/collectiontools/internal/git"
	"github.com/tillahoffmann/collectiontools/internal/release"
)

// distRequiredFiles must be present in every distribution archive in
// addition to go.mod.
var distRequiredFiles = []string{"README.md"}

func (a *appEnv) runDocs(ctx context.Context) error {
	gen := &docgen.Generator{Tools: a.tools, Dir: a.path(a.cfg.Docs.Dir), Package: a.cfg.Package}
	return gen.Generate(ctx, rootCmd)
}

func (a *appEnv) runDoctests(ctx context.Context) error {
	return a.tools.TestExamples(ctx)
}

func (a *appEnv) runLint(ctx context.Context) error {
	files, err := a.tools.FmtCheck(ctx)
	if err != nil {
		return err
	}
	if len(files) > 0 {
		for _, file := range files {
			fmt.Fprintln(errWriter(), file)
		}
		return eris.Errorf("%d files need formatting, run `ctbuild fmt` to fix them", len(files))
	}

	if !a.cfg.Lint.UseGolangci {
		return nil
	}
	if !a.tools.Has("golangci-lint") {
		a.logger.Warn().Msg("golangci-lint is not installed, skipping (run `ctbuild deps` to install it)")
		return nil
	}
	return a.tools.Lint(ctx)
}

func (a *appEnv) runFmt(ctx context.Context) error {
	return a.tools.FmtWrite(ctx)
}

func (a *appEnv) runTypecheck(ctx context.Context) error {
	return a.tools.Vet(ctx)
}

func (a *appEnv) runTests(ctx context.Context) error {
	profile := a.path(coverProfileName)
	if err := a.tools.Test(ctx, profile, a.cfg.Tests.UseGotestsum, a.cfg.Tests.Args...); err != nil {
		return err
	}

	summary, err := coverage.Gate(profile, a.cfg.Tests.CoverageThreshold)
	if err != nil {
		a.reportLeastCovered(profile)
		return err
	}

	a.logger.Info().Msgf("Coverage: %s", summary)
	return nil
}

// reportLeastCovered prints the files furthest below full coverage so a
// failed gate points at where to add tests.
func (a *appEnv) reportLeastCovered(profile string) {
	files, err := coverage.Files(profile)
	if err != nil {
		return
	}

	shown := 0
	for _, file := range files {
		if file.Percent() >= 100 || shown == 5 {
			break
		}
		fmt.Fprintf(errWriter(), "  %5.1f%%  %s\n", file.Percent(), file.Name)
		shown++
	}
}

func (a *appEnv) runDist(ctx context.Context) error {
	if err := a.tools.Build(ctx); err != nil {
		return err
	}

	module, err := a.tools.ModulePath(ctx)
	if err != nil {
		return err
	}

	version, err := a.distVersion(ctx)
	if err != nil {
		return err
	}

	builder := &distpkg.Builder{
		Root:    a.root,
		Dir:     a.path(a.cfg.Dist.Dir),
		Name:    path.Base(module),
		Version: version,
		Module:  module,
		Exclude: []string{a.cfg.Dist.Dir, a.cfg.Docs.Dir, coverProfileName, coverReportName},
		Formats: a.cfg.Dist.Formats,
	}

	manifest, err := builder.Build()
	if err != nil {
		return err
	}
	if err := distpkg.Validate(builder.Dir, module, distRequiredFiles); err != nil {
		return err
	}

	a.logger.Info().Msgf("Built %d archives for %s %s", len(manifest.Archives), manifest.Name, manifest.Version)
	return nil
}

// distVersion derives the archive version from the latest git tag. A
// missing repository, a repository without tags, or a tag that is not a
// semantic version all produce a development version.
func (a *appEnv) distVersion(ctx context.Context) (string, error) {
	const devVersion = "0.0.0-dev"

	gitClient := git.NewClient(git.Options{Verbose: verbose, Dir: a.root})
	if !gitClient.IsGitRepository(ctx) {
		return devVersion, nil
	}

	dirty, err := gitClient.IsDirty(ctx)
	if err != nil {
		return "", err
	}
	if dirty {
		a.logger.Warn().Msg("Working tree is dirty, the archives will not match a committed state")
	}

	tag, err := gitClient.GetLatestTag(ctx)
	if err != nil {
		return "", err
	}
	if tag == "" {
		return devVersion, nil
	}

	parsed, err := release.ParseTag(tag)
	if err != nil {
		a.logger.Warn().Msgf("Latest tag %s is not a semantic version, using %s", tag, devVersion)
		return devVersion, nil
	}
	return parsed.String(), nil
}

func (a *appEnv) runDeps(ctx context.Context) error {
	if err := a.tools.InstallTools(ctx, filepath.Join(a.root, "tools.go")); err != nil {
		return err
	}
	return a.tools.ModVerify(ctx)
}

func (a *appEnv) runClean(context.Context) error {
	for _, p := range []string{
		a.path(a.cfg.Docs.Dir),
		a.path(a.cfg.Dist.Dir),
		a.path(coverProfileName),
		a.path(coverReportName),
	} {
		if err := os.RemoveAll(p); err != nil {
			return eris.Wrapf(err, "failed to remove %s", p)
		}
		a.logger.Debug().Msgf("Removed %s", p)
	}
	return nil
}
