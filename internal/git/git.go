// Package git wraps the small set of git operations the tag target
// needs: finding the latest tag, listing commits since it, and creating
// an annotated tag.
package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/tillahoffmann/collectiontools/internal/toolcmd"
)

// CommitInfo describes one commit since the base tag.
type CommitInfo struct {
	Hash    string
	Author  string
	Date    string
	Message string
	Body    string
}

// Options configure a Client.
type Options struct {
	Verbose bool
	Dir     string
}

// Client runs git commands in a fixed working directory.
type Client struct {
	runner toolcmd.Runner
}

// NewClient creates a git client.
func NewClient(opts Options) *Client {
	return &Client{runner: toolcmd.Runner{Verbose: opts.Verbose, Dir: opts.Dir}}
}

// recordSeparator splits commit records in git log output. Commit bodies
// can contain newlines, so a purely line based format is not enough.
const recordSeparator = "\x1e"

// IsGitRepository reports whether the working directory is inside a git
// repository.
func (c *Client) IsGitRepository(ctx context.Context) bool {
	_, err := c.runner.Run(ctx, "git", "rev-parse", "--git-dir")
	return err == nil
}

// CheckGitRepository returns a descriptive error when the working
// directory is not inside a git repository.
func (c *Client) CheckGitRepository(ctx context.Context) error {
	if !c.IsGitRepository(ctx) {
		return fmt.Errorf("not a git repository (or any of the parent directories)")
	}
	return nil
}

// GetLatestTag returns the most recent reachable tag, or an empty string
// for a repository without tags.
func (c *Client) GetLatestTag(ctx context.Context) (string, error) {
	result, err := c.runner.RunLogged(ctx, "git", "describe", "--tags", "--abbrev=0")
	if err != nil {
		return "", nil
	}
	return result.StdoutString(true), nil
}

// GetCommitsSinceTag lists the commits made after the given tag, newest
// first. An empty tag lists the full history.
func (c *Client) GetCommitsSinceTag(ctx context.Context, tag string) ([]CommitInfo, error) {
	format := "%h|%an|%as|%s|%b" + recordSeparator
	args := []string{"log", "--pretty=format:" + format}
	if tag != "" {
		args = append(args, tag+"..HEAD")
	} else {
		args = append(args, "HEAD")
	}

	result, err := c.runner.RunLogged(ctx, "git", args...)
	if err != nil {
		if tag == "" {
			// A repository without commits has no history to list.
			return nil, nil
		}
		return nil, fmt.Errorf("git log failed: %s", result.StderrString(true))
	}

	return parseCommitOutput(result.StdoutString(false))
}

// parseCommitOutput turns git log records into CommitInfo values.
// Records that do not carry at least hash, author, date, and message are
// skipped.
func parseCommitOutput(output string) ([]CommitInfo, error) {
	var commits []CommitInfo
	for _, record := range strings.Split(output, recordSeparator) {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}

		parts := strings.SplitN(record, "|", 5)
		if len(parts) < 4 {
			continue
		}

		commit := CommitInfo{
			Hash:    strings.TrimSpace(parts[0]),
			Author:  strings.TrimSpace(parts[1]),
			Date:    strings.TrimSpace(parts[2]),
			Message: strings.TrimSpace(parts[3]),
		}
		if len(parts) == 5 {
			commit.Body = strings.TrimSpace(parts[4])
		}
		if commit.Hash == "" {
			continue
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

// CreateAnnotatedTag creates an annotated tag at HEAD.
func (c *Client) CreateAnnotatedTag(ctx context.Context, tag, message string) error {
	result, err := c.runner.RunLogged(ctx, "git", "tag", "-a", tag, "-m", message)
	if err != nil {
		return fmt.Errorf("failed to create tag %s: %s", tag, result.StderrString(true))
	}
	return nil
}

// IsDirty reports whether the working tree has uncommitted changes.
func (c *Client) IsDirty(ctx context.Context) (bool, error) {
	result, err := c.runner.Run(ctx, "git", "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("git status failed: %s", result.StderrString(true))
	}
	return result.StdoutString(true) != "", nil
}
