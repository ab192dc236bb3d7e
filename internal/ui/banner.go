package ui

import (
	"github.com/mitchellh/colorstring"
)

// PrintTarget announces a top-level target.
func PrintTarget(name string) {
	colorstring.Printf("[blue][bold]==>[default] %s\n", name)
}

// PrintStep announces a step within the current target.
func PrintStep(msg string) {
	colorstring.Printf("[green][bold]  ->[reset] %s\n", msg)
}

// PrintFailure reports a failed step within the current target.
func PrintFailure(msg string) {
	colorstring.Printf("[red][bold]  ->[reset] %s\n", msg)
}
