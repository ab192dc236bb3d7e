package release

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillahoffmann/collectiontools/internal/git"
)

func TestParseTag(t *testing.T) {
	v, err := ParseTag("v1.2.3")
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), v.Major())
	assert.Equal(t, uint64(2), v.Minor())
	assert.Equal(t, uint64(3), v.Patch())

	v2, err := ParseTag("")
	assert.NoError(t, err)
	assert.True(t, v2.Equal(semver.MustParse("0.0.0")))
}

func TestParseTagInvalid(t *testing.T) {
	_, err := ParseTag("invalid")
	assert.Error(t, err)
}

func TestTagName(t *testing.T) {
	assert.Equal(t, "v1.2.3", TagName(semver.MustParse("v1.2.3")))
	assert.Equal(t, "v0.1.0", TagName(semver.MustParse("0.1.0")))
}

func TestSuggestMajor(t *testing.T) {
	base := semver.MustParse("v1.2.3")
	commits := []git.CommitInfo{
		{Message: "feat!: new API"},
		{Message: "fix: adjust tests"},
	}

	suggestion := Suggest(base, commits)

	assert.Equal(t, BumpMajor, suggestion.Bump)
	assert.Equal(t, "v2.0.0", TagName(suggestion.Next))
	assert.Contains(t, suggestion.Reason, "breaking change")
}

func TestSuggestBreakingInBody(t *testing.T) {
	base := semver.MustParse("v0.1.4")
	commits := []git.CommitInfo{
		{Message: "chore: update deps", Body: "BREAKING CHANGE: new config"},
	}

	suggestion := Suggest(base, commits)

	assert.Equal(t, BumpMajor, suggestion.Bump)
	assert.Equal(t, "v1.0.0", TagName(suggestion.Next))
}

func TestSuggestMinor(t *testing.T) {
	base := semver.MustParse("v0.1.4")
	commits := []git.CommitInfo{
		{Message: "feat: add CLI"},
		{Message: "docs: update readme"},
	}

	suggestion := Suggest(base, commits)

	assert.Equal(t, BumpMinor, suggestion.Bump)
	assert.Equal(t, "v0.2.0", TagName(suggestion.Next))
	assert.Contains(t, suggestion.Reason, "feature")
}

func TestSuggestPatch(t *testing.T) {
	base := semver.MustParse("v0.1.4")
	commits := []git.CommitInfo{
		{Message: "fix: resolve bug"},
		{Message: "chore: update"},
	}

	suggestion := Suggest(base, commits)

	assert.Equal(t, BumpPatch, suggestion.Bump)
	assert.Equal(t, "v0.1.5", TagName(suggestion.Next))
}

func TestSuggestNoChange(t *testing.T) {
	base := semver.MustParse("v0.1.4")
	commits := []git.CommitInfo{
		{Message: "docs: update readme"},
		{Message: "chore: tidy"},
	}

	suggestion := Suggest(base, commits)

	assert.Equal(t, BumpNone, suggestion.Bump)
	assert.True(t, suggestion.Next.Equal(base))
	assert.Contains(t, suggestion.Reason, "documentation")
}

func TestSuggestNoCommits(t *testing.T) {
	base := semver.MustParse("v0.1.4")

	suggestion := Suggest(base, nil)

	assert.Equal(t, BumpNone, suggestion.Bump)
	assert.True(t, suggestion.Next.Equal(base))
	assert.Contains(t, suggestion.Reason, "No commits")
}

func TestSuggestInfersTypesFromPlainMessages(t *testing.T) {
	base := semver.MustParse("v0.3.0")
	commits := []git.CommitInfo{
		{Message: "Add product iterator"},
		{Message: "typo"},
	}

	suggestion := Suggest(base, commits)

	assert.Equal(t, BumpMinor, suggestion.Bump)
	assert.Equal(t, "v0.4.0", TagName(suggestion.Next))
	assert.Len(t, suggestion.Stats.Features, 1)
	assert.Len(t, suggestion.Stats.Others, 1)
}

func TestSummariesFlagsBreakingChanges(t *testing.T) {
	commits := []git.CommitInfo{
		{Message: "feat!: drop the legacy API"},
		{Message: "chore: bump deps", Body: "BREAKING CHANGE: config moved"},
		{Message: "fix: typo"},
	}

	summaries := Summaries(commits)

	require.Len(t, summaries, 3)
	assert.Equal(t, "feat!: drop the legacy API (breaking change?)", summaries[0])
	assert.Equal(t, "chore: bump deps (breaking change?)", summaries[1])
	assert.Equal(t, "fix: typo", summaries[2])
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt("v1.0.0", []string{"feat: add Union", "fix: Rows edge case"})
	require.NoError(t, err)

	assert.Contains(t, prompt, "currently at version v1.0.0")
	assert.Contains(t, prompt, "- feat: add Union")
	assert.Contains(t, prompt, "- fix: Rows edge case")
	assert.Contains(t, prompt, "VERSION:")
	assert.Contains(t, prompt, "REASON:")
}
