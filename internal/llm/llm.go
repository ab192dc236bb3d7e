// Package llm asks an OpenAI compatible endpoint to sanity check the
// rule based version suggestion. It is only consulted when an API key
// is configured.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tillahoffmann/collectiontools/internal/release"
)

const defaultTimeout = 30 * time.Second

// ErrNoAPIKey is returned when no API key is configured.
var ErrNoAPIKey = errors.New("API key not set, configure it first: ctbuild config set llm.api_key YOUR_API_KEY")

// Options configure a Client.
type Options struct {
	APIKey  string
	APIBase string
	Timeout time.Duration
}

// Client talks to the chat completion endpoint.
type Client struct {
	opts Options
}

// NewClient creates an LLM client.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Client{opts: opts}
}

// Configured reports whether the client has an API key to work with.
func (c *Client) Configured() bool {
	return c.opts.APIKey != ""
}

// SuggestVersion asks the model for the next version given the base
// version and one line commit summaries. It returns the suggested
// version string and a short reason.
func (c *Client) SuggestVersion(ctx context.Context, baseVersion string, commitSummaries []string, model string) (string, string, error) {
	if !c.Configured() {
		return "", "", ErrNoAPIKey
	}

	prompt, err := release.BuildPrompt(baseVersion, commitSummaries)
	if err != nil {
		return "", "", err
	}

	clientConfig := openai.DefaultConfig(c.opts.APIKey)
	if c.opts.APIBase != "" {
		clientConfig.BaseURL = c.opts.APIBase
	}
	client := openai.NewClientWithConfig(clientConfig)

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: "You are a release manager who recommends semantic versions from conventional commit histories.",
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		},
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to call LLM: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", "", errors.New("LLM returned an empty response")
	}

	return parseVersionReply(resp.Choices[0].Message.Content)
}

// parseVersionReply extracts the VERSION and REASON lines from the
// model output.
func parseVersionReply(content string) (string, string, error) {
	var version, reason string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if value, ok := strings.CutPrefix(line, "VERSION:"); ok {
			version = strings.TrimSpace(value)
			continue
		}
		if value, ok := strings.CutPrefix(line, "REASON:"); ok {
			reason = strings.TrimSpace(value)
		}
	}

	if version == "" {
		return "", "", fmt.Errorf("could not find a version in the LLM reply: %q", strings.TrimSpace(content))
	}
	return version, reason, nil
}
