package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tillahoffmann/collectiontools/internal/git"
	"github.com/tillahoffmann/collectiontools/internal/llm"
	"github.com/tillahoffmann/collectiontools/internal/release"
	"github.com/tillahoffmann/collectiontools/internal/ui"
)

var (
	tagAutoYes bool

	// isStdinTerminal is a function to check if stdin is a terminal.
	// It can be overridden in tests.
	isStdinTerminal = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	tagCmd = &cobra.Command{
		Use:   "tag",
		Short: "Suggest and create a semantic version tag based on commits since the last release",
		Long: `Analyze commits since the latest git tag, recommend the next semantic
version, and optionally create the tag when confirmed.

Examples:
  ctbuild tag        # Analyze commits and interactively create a tag
  ctbuild tag --yes  # Auto-confirm tag creation with the suggested version`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTagCommand(cmd.Context())
		},
	}
)

func init() {
	tagCmd.Flags().BoolVarP(
		&tagAutoYes,
		"yes",
		"y",
		false,
		"Automatically confirm tag creation with the suggested version",
	)
	rootCmd.AddCommand(tagCmd)
}

func runTagCommand(ctx context.Context) error {
	app, err := newAppEnv()
	if err != nil {
		return err
	}

	gitClient := git.NewClient(git.Options{Verbose: verbose, Dir: app.root})
	llmClient := llm.NewClient(llm.Options{
		APIKey:  app.cfg.LLM.APIKey,
		APIBase: app.cfg.LLM.APIBase,
	})

	lastTag, commits, err := collectTagContext(ctx, gitClient)
	if err != nil {
		return err
	}
	if len(commits) == 0 {
		printNoCommitsSinceLastTag(lastTag)
		return nil
	}

	baseVersion, displayTag, err := resolveBaseVersion(lastTag)
	if err != nil {
		return err
	}

	printCommitSummary(displayTag, commits)

	finalVersion, finalReason, source := pickTagSuggestion(ctx, app, baseVersion, commits, llmClient)
	tagName := release.TagName(finalVersion)
	fmt.Fprintf(outWriter(), "Suggested version (%s): %s\n", source, tagName)
	if strings.TrimSpace(finalReason) != "" {
		fmt.Fprintf(outWriter(), "Reason: %s\n", finalReason)
	}
	fmt.Fprintln(outWriter())

	if msg, skip := shouldSkipTagCreation(lastTag, finalVersion, baseVersion); skip {
		fmt.Fprintln(outWriter(), msg)
		return nil
	}

	confirmed, err := confirmTagCreation(tagName)
	if err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}

	if !confirmed {
		fmt.Fprintln(outWriter(), "Tag creation cancelled.")
		return nil
	}

	tagMessage := "Release " + tagName
	if strings.TrimSpace(finalReason) != "" {
		tagMessage = fmt.Sprintf("%s: %s", tagMessage, finalReason)
	}

	if err := gitClient.CreateAnnotatedTag(ctx, tagName, tagMessage); err != nil {
		return err
	}

	fmt.Fprintf(outWriter(), "Tag %s created successfully.\n", tagName)
	fmt.Fprintf(outWriter(), "Hint: run `git push origin %s` to share the tag.\n", tagName)
	return nil
}

func collectTagContext(ctx context.Context, gitClient *git.Client) (string, []git.CommitInfo, error) {
	if err := gitClient.CheckGitRepository(ctx); err != nil {
		return "", nil, fmt.Errorf("tagging failed: %w", err)
	}

	lastTag, err := gitClient.GetLatestTag(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to determine latest tag: %w", err)
	}

	commits, err := gitClient.GetCommitsSinceTag(ctx, lastTag)
	if err != nil {
		return "", nil, fmt.Errorf("failed to collect commits: %w", err)
	}

	return lastTag, commits, nil
}

func printNoCommitsSinceLastTag(lastTag string) {
	if lastTag == "" {
		fmt.Fprintln(outWriter(), "No commits found in the repository; nothing to tag yet.")
		return
	}
	fmt.Fprintf(outWriter(), "No new commits since %s; no tag created.\n", lastTag)
}

func resolveBaseVersion(lastTag string) (*semver.Version, string, error) {
	baseVersion, err := release.ParseTag(lastTag)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse base version %s: %w", lastTag, err)
	}

	displayTag := lastTag
	if lastTag == "" {
		displayTag = "initial commit"
	}
	return baseVersion, displayTag, nil
}

func printCommitSummary(displayTag string, commits []git.CommitInfo) {
	fmt.Fprintf(outWriter(), "Commits since %s (%d total):\n", displayTag, len(commits))
	for _, commit := range commits {
		fmt.Fprintf(outWriter(), "  - %s\n", commit.Message)
	}
	fmt.Fprintln(outWriter())
}

func pickTagSuggestion(
	ctx context.Context, app *appEnv, baseVersion *semver.Version, commits []git.CommitInfo, llmClient *llm.Client,
) (*semver.Version, string, string) {
	suggestion := release.Suggest(baseVersion, commits)
	finalVersion := suggestion.Next
	finalReason := suggestion.Reason
	source := "rule engine"

	if !llmClient.Configured() {
		return finalVersion, finalReason, source
	}

	llmVersion, llmReason, ok := selectVersionSuggestion(ctx, app, baseVersion, suggestion.Next, commits, llmClient)
	if !ok {
		return finalVersion, finalReason, source
	}

	finalVersion = llmVersion
	if strings.TrimSpace(llmReason) != "" {
		finalReason = llmReason
	}
	return finalVersion, finalReason, "LLM"
}

func selectVersionSuggestion(
	ctx context.Context,
	app *appEnv,
	baseVersion *semver.Version,
	ruleVersion *semver.Version,
	commits []git.CommitInfo,
	llmClient *llm.Client,
) (*semver.Version, string, bool) {
	spin := ui.NewSpinner("Asking the LLM for a version suggestion...")
	spin.Start()
	llmVersionStr, llmReason, err := llmClient.SuggestVersion(
		ctx, baseVersion.String(), release.Summaries(commits), app.cfg.LLM.Model,
	)
	spin.Stop()
	if err != nil {
		fmt.Fprintf(errWriter(), "Warning: LLM version suggestion failed: %v\n", err)
		return nil, "", false
	}

	llmVersion, parseErr := release.ParseTag(llmVersionStr)
	switch {
	case parseErr != nil:
		fmt.Fprintf(errWriter(), "Warning: Invalid LLM version suggestion %q: %v\n", llmVersionStr, parseErr)
		return nil, "", false
	case llmVersion.LessThan(ruleVersion):
		fmt.Fprintf(
			errWriter(),
			"Warning: LLM suggested %s which is lower than rule-based %s; keeping the rule result.\n",
			llmVersion.String(),
			ruleVersion.String(),
		)
		return nil, "", false
	default:
		return llmVersion, llmReason, true
	}
}

func shouldSkipTagCreation(lastTag string, finalVersion, baseVersion *semver.Version) (string, bool) {
	if !finalVersion.Equal(baseVersion) {
		return "", false
	}
	if lastTag != "" {
		return "No version bump recommended. No tag created.", true
	}
	return fmt.Sprintf("Suggested version matches base version %s; skipping tag creation.", baseVersion.String()), true
}

func confirmTagCreation(tag string) (bool, error) {
	if tagAutoYes {
		fmt.Fprintln(errWriter(), "Auto-confirming tag creation (-y flag is set)")
		return true, nil
	}

	if !isStdinTerminal() {
		return false, errors.New("stdin is not a terminal, use --yes to skip interactive confirmation")
	}

	fmt.Fprintf(errWriter(), "Create tag %s? [y/N]: ", tag)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}

	answer := strings.TrimSpace(strings.ToLower(input))
	return answer == "y" || answer == "yes", nil
}
