package release

import (
	"bytes"
	"fmt"
	"text/template"
)

var versionPromptTemplate = template.Must(template.New("version").Parse(
	`The project is currently at version {{.BaseVersion}}. These commits were made since that release:
{{range .Commits}}
- {{.}}
{{- end}}

Recommend the next semantic version. Breaking changes bump the major
version, new features bump the minor version, and fixes bump the patch
version. Reply with exactly two lines:
VERSION: <the next version, for example v1.2.3>
REASON: <one sentence explaining the choice>`))

type promptData struct {
	BaseVersion string
	Commits     []string
}

// BuildPrompt renders the version suggestion prompt for the LLM.
func BuildPrompt(baseVersion string, commits []string) (string, error) {
	var buf bytes.Buffer
	err := versionPromptTemplate.Execute(&buf, promptData{BaseVersion: baseVersion, Commits: commits})
	if err != nil {
		return "", fmt.Errorf("failed to render the version prompt: %w", err)
	}
	return buf.String(), nil
}
