package target

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

type (
	runtimeCtxKey struct{}
	runtimeCtx    struct {
		runTargets  map[string]bool
		projectRoot string
	}
)

func getRuntimeCtx(ctx context.Context) *runtimeCtx {
	return ctx.Value(runtimeCtxKey{}).(*runtimeCtx)
}

func getTargetEnv(t *Target) expand.Environ {
	envVars := os.Environ()

	for name, value := range t.Env {
		envVars = append(envVars, fmt.Sprintf("%s=%s", name, value))
	}

	return expand.ListEnviron(envVars...)
}

func resolvePatternLists(ctx context.Context, base string, patterns []string) ([]string, error) {
	result := []string{}
	cfg := expand.Config{
		ReadDir2: shellReadDir,
		GlobStar: true,
	}

	parser := syntax.NewParser()
	parserCtx := &parserCtx{
		filepath:    "invalid",
		projectRoot: getRuntimeCtx(ctx).projectRoot,
	}

	for _, item := range patterns {
		item = normalizePath(parserCtx, base, item)
		item = filepath.ToSlash(item)

		words := make([]*syntax.Word, 0)
		parser.Words(strings.NewReader(item), func(w *syntax.Word) bool {
			words = append(words, w)
			return true
		})

		matches, err := expand.Fields(&cfg, words...)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to resolve pattern %s", item)
		}

		for _, match := range matches {
			// If a pattern didn't match anything, it's returned as a result. Skip those results.
			if !strings.Contains(match, "*") {
				result = append(result, match)
			}
		}
	}
	return result, nil
}

// Run executes the named target and its dependencies.
func Run(ctx context.Context, projectRoot, name string, targets List, dryRun, force bool) error {
	rctx := runtimeCtx{
		projectRoot: projectRoot,
		runTargets:  make(map[string]bool),
	}

	ctx = context.WithValue(ctx, runtimeCtxKey{}, &rctx)
	tgt, found := targets[name]
	if !found {
		return eris.Errorf("target %s not found", name)
	}

	return runTargetInternal(ctx, tgt, targets, dryRun, force, true)
}

func runTargetInternal(ctx context.Context, tgt *Target, targets List, dryRun, force, canSkip bool) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	rctx := getRuntimeCtx(ctx)
	status, ok := rctx.runTargets[tgt.Name]
	if ok {
		if status {
			// this target has already been run
			log(ctx).Debug().Msgf("target %s already run", tgt.Name)
			return nil
		}

		return eris.Errorf("target %s was called recursively", tgt.Name)
	}

	rctx.runTargets[tgt.Name] = false

	for _, dep := range tgt.Deps {
		if !rctx.runTargets[dep] {
			depTarget, ok := targets[dep]
			if !ok {
				return eris.Errorf("target %s not found", dep)
			}

			err := runTargetInternal(ctx, depTarget, targets, dryRun, false, true)
			if err != nil {
				return eris.Wrapf(err, "target %s failed due to its dependency %s", tgt.Name, dep)
			}
		}
	}

	if canSkip && !force {
		skipList, err := resolvePatternLists(ctx, tgt.Base, tgt.SkipIfExists)
		if err != nil {
			return eris.Wrapf(err, "failed to resolve skipIfExists list")
		}

		found := 0
		for _, item := range skipList {
			_, err := os.Stat(item)
			if err == nil {
				found++
			} else if !eris.Is(err, os.ErrNotExist) {
				return eris.Wrapf(err, "failed to check %s", item)
			}
		}

		if found > 0 && found == len(skipList) {
			log(ctx).Info().
				Str("target", tgt.Name).
				Msg("skipped because all skip files exist")

			rctx.runTargets[tgt.Name] = true
			return nil
		}
	}

	if !force {
		var newestInput time.Time
		inputList, err := resolvePatternLists(ctx, tgt.Base, tgt.Inputs)
		if err != nil {
			return eris.Wrap(err, "failed to resolve inputs")
		}

		outputList, err := resolvePatternLists(ctx, tgt.Base, tgt.Outputs)
		if err != nil {
			return eris.Wrap(err, "failed to resolve output list")
		}

		for _, item := range inputList {
			info, err := os.Stat(item)
			if err != nil {
				return eris.Wrapf(err, "failed to check input %s", item)
			}

			if info.ModTime().Sub(newestInput) > 0 {
				newestInput = info.ModTime()
			}
		}

		if !newestInput.IsZero() {
			var newestOutput time.Time
			oldestOutput := time.Now()

			for _, item := range outputList {
				info, err := os.Stat(item)
				if err != nil && !eris.Is(err, os.ErrNotExist) {
					return eris.Wrapf(err, "failed to check output %s", item)
				}

				if err == nil {
					mt := info.ModTime()
					if mt.Sub(newestOutput) > 0 {
						newestOutput = mt
					}

					if oldestOutput.Sub(mt) > 0 {
						oldestOutput = mt
					}
				}
			}

			if newestOutput.Sub(oldestOutput) > 10*time.Minute {
				log(ctx).Warn().
					Str("target", tgt.Name).
					Msgf("oldest output is %f minutes older than the newest output", newestOutput.Sub(oldestOutput).Minutes())
			}

			if newestOutput.Sub(newestInput) > 0 {
				log(ctx).Info().
					Str("target", tgt.Name).
					Msgf("nothing to do (output is %f seconds newer)", newestOutput.Sub(newestInput).Seconds())

				rctx.runTargets[tgt.Name] = true
				return nil
			}
		}
	}

	// With the skip and input/output checks done, we can finally start executing
	if tgt.Action != nil {
		log(ctx).Info().
			Str("target", tgt.Name).
			Bool("command", true).
			Msg(actionLabel(tgt))

		if !dryRun {
			if err := tgt.Action(ctx); err != nil {
				return err
			}
		}
	}

	if len(tgt.Cmds) > 0 {
		if err := runTargetCmds(ctx, tgt, targets, dryRun, force); err != nil {
			return err
		}
	}

	if tgt.Name != "" {
		rctx.runTargets[tgt.Name] = true
	}
	return nil
}

func actionLabel(tgt *Target) string {
	if tgt.Desc != "" {
		return tgt.Desc
	}
	return "run " + tgt.Name
}

func runTargetCmds(ctx context.Context, tgt *Target, targets List, dryRun, force bool) error {
	runner, err := interp.New(
		interp.Dir(tgt.Base),
		interp.Env(getTargetEnv(tgt)),
		interp.StdIO(nil, os.Stdout, os.Stderr),
		interp.Params("-e"),
	)
	if err != nil {
		return eris.Wrap(err, "failed to initialize runner")
	}

	parser := syntax.NewParser()
	printer := syntax.NewPrinter(
		syntax.Minify(true),
	)
	strBuffer := strings.Builder{}

	for _, item := range tgt.Cmds {
		stmts, err := item.ToShellStmts(parser)
		if err != nil {
			return eris.Wrap(err, "failed to parse shell script")
		}
		if stmts != nil {
			for _, stm := range stmts {
				strBuffer.Reset()
				printer.Print(&strBuffer, stm)
				log(ctx).Info().
					Str("target", tgt.Name).
					Bool("command", true).
					Msg(strBuffer.String())

				if !dryRun {
					err = runner.Run(ctx, stm)
					if err != nil {
						return err
					}

					if runner.Exited() {
						return nil
					}
				}
			}
		} else {
			subTarget, err := item.ToTarget()
			if err != nil {
				return eris.Wrap(err, "failed to retrieve target ref")
			}

			if subTarget != nil {
				err = runTargetInternal(ctx, subTarget, targets, dryRun, force, true)
				if err != nil {
					return err
				}
			} else {
				return eris.Errorf("unexpected target command %+v", item)
			}
		}

		if err = ctx.Err(); err != nil {
			return err
		}
	}

	return nil
}
