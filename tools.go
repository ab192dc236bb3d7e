//go:build tools

package tools

// Tool dependencies for the build pipeline.
// This file exists to ensure go mod tidy keeps these dependencies, and
// the deps target installs the commands listed here at their pinned
// versions.
import (
	_ "github.com/princjef/gomarkdoc/cmd/gomarkdoc"
	_ "gotest.tools/gotestsum"
	_ "mvdan.cc/gofumpt"
)
