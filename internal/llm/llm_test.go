package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOpenAI serves canned chat completion replies so tests never reach
// a real endpoint.
func fakeOpenAI(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Options{APIKey: "test-key", APIBase: server.URL + "/v1"})
}

func completionReply(t *testing.T, content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[1].Content, "v1.0.0")
		assert.Contains(t, req.Messages[1].Content, "feat: add Union")

		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}
}

func TestSuggestVersionSuccess(t *testing.T) {
	client := fakeOpenAI(t, completionReply(t, "VERSION: v1.1.0\nREASON: New features were added."))

	version, reason, err := client.SuggestVersion(
		context.Background(), "v1.0.0", []string{"feat: add Union"}, "gpt-4o-mini",
	)

	require.NoError(t, err)
	assert.Equal(t, "v1.1.0", version)
	assert.Equal(t, "New features were added.", reason)
}

func TestSuggestVersionMissingAPIKey(t *testing.T) {
	client := NewClient(Options{})
	assert.False(t, client.Configured())

	_, _, err := client.SuggestVersion(context.Background(), "v1.0.0", nil, "gpt-4o-mini")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestSuggestVersionMalformedReply(t *testing.T) {
	client := fakeOpenAI(t, completionReply(t, "I would bump the minor version."))

	_, _, err := client.SuggestVersion(
		context.Background(), "v1.0.0", []string{"feat: add Union"}, "gpt-4o-mini",
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not find a version")
}

func TestSuggestVersionEmptyChoices(t *testing.T) {
	client := fakeOpenAI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(openai.ChatCompletionResponse{}))
	})

	_, _, err := client.SuggestVersion(
		context.Background(), "v1.0.0", []string{"feat: add Union"}, "gpt-4o-mini",
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestSuggestVersionServerError(t *testing.T) {
	client := fakeOpenAI(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"message": "boom"}}`, http.StatusInternalServerError)
	})

	_, _, err := client.SuggestVersion(
		context.Background(), "v1.0.0", []string{"feat: add Union"}, "gpt-4o-mini",
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to call LLM")
}

func TestParseVersionReply(t *testing.T) {
	tests := []struct {
		name    string
		content string
		version string
		reason  string
		wantErr bool
	}{
		{
			name:    "version and reason",
			content: "VERSION: v2.0.0\nREASON: Breaking API change.",
			version: "v2.0.0",
			reason:  "Breaking API change.",
		},
		{
			name:    "version only",
			content: "VERSION: v0.2.0",
			version: "v0.2.0",
		},
		{
			name:    "surrounding prose",
			content: "Sure!\n  VERSION: v1.0.1  \n  REASON: Only fixes.  \nGood luck!",
			version: "v1.0.1",
			reason:  "Only fixes.",
		},
		{
			name:    "no version line",
			content: "bump minor",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, reason, err := parseVersionReply(tt.content)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.version, version)
			assert.Equal(t, tt.reason, reason)
		})
	}
}
