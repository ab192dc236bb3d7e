// Package release derives the next semantic version from the commits
// made since the last release tag.
package release

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/tillahoffmann/collectiontools/internal/git"
)

// BumpType names the version component a set of commits justifies
// bumping.
type BumpType string

const (
	BumpNone  BumpType = "none"
	BumpPatch BumpType = "patch"
	BumpMinor BumpType = "minor"
	BumpMajor BumpType = "major"
)

// Stats groups the commit subjects by how they affect the version.
type Stats struct {
	Breaking []string
	Features []string
	Patches  []string
	Others   []string
}

// Suggestion is the outcome of the rule engine.
type Suggestion struct {
	Base   *semver.Version
	Next   *semver.Version
	Bump   BumpType
	Reason string
	Stats  Stats
}

// ParseTag parses a version tag, tolerating a leading v. An empty tag
// parses as 0.0.0 so a repository without releases starts from scratch.
func ParseTag(tag string) (*semver.Version, error) {
	trimmed := strings.TrimSpace(tag)
	if trimmed == "" {
		return semver.MustParse("0.0.0"), nil
	}

	parsed, err := semver.NewVersion(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid semantic version %q: %w", tag, err)
	}
	return parsed, nil
}

// TagName renders a version as a git tag.
func TagName(v *semver.Version) string {
	return "v" + v.String()
}

var commitTypePattern = regexp.MustCompile(`^(?P<type>[a-z]+)(?:\([^)]+\))?(?P<breaking>!)?:`)

// Suggest applies conventional commit rules to the commits since base
// and recommends the next version.
func Suggest(base *semver.Version, commits []git.CommitInfo) Suggestion {
	stats := Stats{}

	if len(commits) == 0 {
		return Suggestion{
			Base:   base,
			Next:   base,
			Bump:   BumpNone,
			Reason: "No commits found since last release",
			Stats:  stats,
		}
	}

	for _, commit := range commits {
		message := strings.TrimSpace(commit.Message)
		if message == "" {
			continue
		}

		commitType, breaking := parseCommitType(message)
		if commitType == "" {
			commitType = inferCommitType(message)
		}

		if !breaking && containsBreakingChange(message, commit.Body) {
			breaking = true
		}

		switch {
		case breaking:
			stats.Breaking = append(stats.Breaking, message)
		case commitType == "feat":
			stats.Features = append(stats.Features, message)
		case isPatchType(commitType):
			stats.Patches = append(stats.Patches, message)
		default:
			stats.Others = append(stats.Others, message)
		}
	}

	suggestion := Suggestion{
		Base:   base,
		Next:   base,
		Bump:   BumpNone,
		Stats:  stats,
		Reason: "Only documentation, style, test, or chore changes detected",
	}

	switch {
	case len(stats.Breaking) > 0:
		next := base.IncMajor()
		suggestion.Bump = BumpMajor
		suggestion.Next = &next
		suggestion.Reason = fmt.Sprintf(
			"Detected %d breaking change commit(s) since %s, e.g. %s",
			len(stats.Breaking),
			TagName(base),
			describeMessages(stats.Breaking),
		)
	case len(stats.Features) > 0:
		next := base.IncMinor()
		suggestion.Bump = BumpMinor
		suggestion.Next = &next
		suggestion.Reason = fmt.Sprintf(
			"Detected %d feature commit(s) since %s, e.g. %s",
			len(stats.Features),
			TagName(base),
			describeMessages(stats.Features),
		)
	case len(stats.Patches) > 0:
		next := base.IncPatch()
		suggestion.Bump = BumpPatch
		suggestion.Next = &next
		suggestion.Reason = fmt.Sprintf(
			"Detected %d fix/refactor commit(s) since %s, e.g. %s",
			len(stats.Patches),
			TagName(base),
			describeMessages(stats.Patches),
		)
	default:
		if len(stats.Others) == 0 {
			suggestion.Reason = "No commits found since last release"
		}
	}

	return suggestion
}

func parseCommitType(message string) (string, bool) {
	matches := commitTypePattern.FindStringSubmatch(message)
	if len(matches) == 0 {
		return "", false
	}

	commitType := strings.ToLower(matches[1])
	breaking := matches[2] == "!"
	return commitType, breaking
}

func inferCommitType(message string) string {
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "break"):
		return "feat"
	case strings.Contains(lower, "feat"), strings.Contains(lower, "feature"), strings.Contains(lower, "add"):
		return "feat"
	case strings.Contains(lower, "fix"), strings.Contains(lower, "bug"), strings.Contains(lower, "patch"):
		return "fix"
	case strings.Contains(lower, "refactor"):
		return "refactor"
	case strings.Contains(lower, "perf"), strings.Contains(lower, "optimiz"):
		return "perf"
	case strings.Contains(lower, "test"):
		return "test"
	case strings.Contains(lower, "doc"):
		return "docs"
	case strings.Contains(lower, "build"), strings.Contains(lower, "ci"):
		return "build"
	default:
		return "chore"
	}
}

func isPatchType(commitType string) bool {
	switch commitType {
	case "fix", "perf", "refactor", "build", "ci", "revert", "hotfix":
		return true
	default:
		return false
	}
}

func containsBreakingChange(message, body string) bool {
	lowerMessage := strings.ToLower(message)
	lowerBody := strings.ToLower(body)
	return strings.Contains(lowerMessage, "breaking change") || strings.Contains(lowerBody, "breaking change")
}

func describeMessages(messages []string) string {
	if len(messages) == 0 {
		return ""
	}

	maxExamples := 2
	examples := messages
	if len(messages) > maxExamples {
		examples = messages[:maxExamples]
	}

	quoted := make([]string, 0, len(examples))
	for _, msg := range examples {
		trimmed := strings.TrimSpace(msg)
		if trimmed == "" {
			continue
		}
		quoted = append(quoted, fmt.Sprintf("%q", trimmed))
	}

	if len(quoted) == 0 {
		return "recent commits"
	}

	if len(messages) > maxExamples {
		return fmt.Sprintf("%s, and %d more", strings.Join(quoted, ", "), len(messages)-maxExamples)
	}

	return strings.Join(quoted, ", ")
}

// Summaries flattens commits into one line summaries for the LLM
// prompt, flagging likely breaking changes.
func Summaries(commits []git.CommitInfo) []string {
	summaries := make([]string, 0, len(commits))
	for _, commit := range commits {
		summary := strings.TrimSpace(commit.Message)
		lowerSummary := strings.ToLower(summary)
		lowerBody := strings.ToLower(commit.Body)

		if strings.Contains(lowerSummary, "breaking change") ||
			strings.Contains(lowerBody, "breaking change") ||
			strings.Contains(summary, "!:") {
			summary += " (breaking change?)"
		}

		summaries = append(summaries, summary)
	}
	return summaries
}
