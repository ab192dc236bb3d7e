package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	listHidden bool

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List the available targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListCommand(cmd)
		},
	}
)

func init() {
	listCmd.Flags().BoolVar(&listHidden, "all", false, "Include hidden targets")
	rootCmd.AddCommand(listCmd)
}

func runListCommand(cmd *cobra.Command) error {
	app, err := newAppEnv()
	if err != nil {
		return err
	}

	targets, err := app.loadTargets(cmd.Context(), nil)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(targets))
	column := 0
	for name, t := range targets {
		if t.Hidden && !listHidden {
			continue
		}
		names = append(names, name)
		if len(name) > column {
			column = len(name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(outWriter(), "  %-*s  %s\n", column, name, wrapDescription(targets[name].Desc, column+4))
	}
	return nil
}

// wrapDescription wraps a description to the terminal width, indenting
// continuation lines below the description column. Without a terminal
// the description passes through unchanged.
func wrapDescription(desc string, indent int) string {
	cols, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || cols <= indent+20 {
		return desc
	}

	limit := cols - indent
	var lines []string
	var line string
	for _, word := range strings.Fields(desc) {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) > limit:
			lines = append(lines, line)
			line = word
		default:
			line += " " + word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"+strings.Repeat(" ", indent))
}
